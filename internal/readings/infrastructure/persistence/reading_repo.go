// Package persistence implements the readings repositories on the shared
// database abstraction.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/readings/domain"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database"
)

const readingColumns = `id, user_id, spread_id, question, card_ids, reversed,
	interpretation, is_favorite, reading_date, created_at, updated_at`

// SQLReadingRepository implements domain.ReadingRepository for both
// PostgreSQL and SQLite. Card ids and reversal flags persist as JSON arrays
// in a text column, keeping the equal-length ordered pair in one place.
type SQLReadingRepository struct {
	conn   database.Connection
	driver database.Driver
}

// NewSQLReadingRepository creates a reading repository for the connection.
func NewSQLReadingRepository(conn database.Connection) *SQLReadingRepository {
	return &SQLReadingRepository{conn: conn, driver: conn.Driver()}
}

func (r *SQLReadingRepository) placeholder(n int) string {
	if r.driver == database.DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (r *SQLReadingRepository) boolArg(b bool) any {
	if r.driver == database.DriverPostgres {
		return b
	}
	if b {
		return int64(1)
	}
	return int64(0)
}

// Save upserts the reading and its journal entries.
func (r *SQLReadingRepository) Save(ctx context.Context, reading *domain.Reading) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	cardIDs, err := json.Marshal(reading.CardIDs())
	if err != nil {
		return err
	}
	reversed, err := json.Marshal(reading.Reversed())
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO readings (%s) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		ON CONFLICT (id) DO UPDATE SET
			question = EXCLUDED.question,
			interpretation = EXCLUDED.interpretation,
			is_favorite = EXCLUDED.is_favorite,
			updated_at = EXCLUDED.updated_at`,
		readingColumns,
		r.placeholder(1), r.placeholder(2), r.placeholder(3), r.placeholder(4),
		r.placeholder(5), r.placeholder(6), r.placeholder(7), r.placeholder(8),
		r.placeholder(9), r.placeholder(10), r.placeholder(11))

	_, err = exec.Exec(ctx, query,
		reading.ID().String(),
		reading.UserID().String(),
		reading.SpreadID(),
		nullable(reading.Question()),
		string(cardIDs),
		string(reversed),
		nullable(reading.Interpretation()),
		r.boolArg(reading.IsFavorite()),
		reading.ReadingDate(),
		reading.CreatedAt().UTC().Format(database.TimeFormat),
		reading.UpdatedAt().UTC().Format(database.TimeFormat),
	)
	if err != nil {
		return err
	}

	return r.saveJournal(ctx, exec, reading)
}

func (r *SQLReadingRepository) saveJournal(ctx context.Context, exec database.Executor, reading *domain.Reading) error {
	query := fmt.Sprintf(`
		INSERT INTO journal_entries (id, reading_id, notes, reflection, created_at, updated_at)
		VALUES (%s, %s, %s, %s, %s, %s)
		ON CONFLICT (id) DO UPDATE SET
			notes = EXCLUDED.notes,
			reflection = EXCLUDED.reflection,
			updated_at = EXCLUDED.updated_at`,
		r.placeholder(1), r.placeholder(2), r.placeholder(3),
		r.placeholder(4), r.placeholder(5), r.placeholder(6))

	for _, entry := range reading.Journal() {
		_, err := exec.Exec(ctx, query,
			entry.ID().String(),
			entry.ReadingID().String(),
			entry.Notes(),
			nullable(entry.Reflection()),
			entry.CreatedAt().UTC().Format(database.TimeFormat),
			entry.UpdatedAt().UTC().Format(database.TimeFormat),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByID loads a reading with its journal entries.
func (r *SQLReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Reading, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := fmt.Sprintf(`SELECT %s FROM readings WHERE id = %s`, readingColumns, r.placeholder(1))

	reading, err := r.scanReading(exec.QueryRow(ctx, query, id.String()))
	if err != nil {
		return nil, err
	}
	if err := r.loadJournal(ctx, exec, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

// ListByUser returns the user's readings, newest first. Journal entries are
// loaded on FindByID, not here.
func (r *SQLReadingRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Reading, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := fmt.Sprintf(`
		SELECT %s FROM readings
		WHERE user_id = %s
		ORDER BY created_at DESC
		LIMIT %s OFFSET %s`,
		readingColumns, r.placeholder(1), r.placeholder(2), r.placeholder(3))

	rows, err := exec.Query(ctx, query, userID.String(), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*domain.Reading
	for rows.Next() {
		reading, err := r.scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}

// FindDailyByUserDate returns the user's reading for the spread and calendar
// date, or ErrReadingNotFound.
func (r *SQLReadingRepository) FindDailyByUserDate(ctx context.Context, userID uuid.UUID, spreadID, readingDate string) (*domain.Reading, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := fmt.Sprintf(`
		SELECT %s FROM readings
		WHERE user_id = %s AND spread_id = %s AND reading_date = %s
		LIMIT 1`,
		readingColumns, r.placeholder(1), r.placeholder(2), r.placeholder(3))

	return r.scanReading(exec.QueryRow(ctx, query, userID.String(), spreadID, readingDate))
}

func (r *SQLReadingRepository) loadJournal(ctx context.Context, exec database.Executor, reading *domain.Reading) error {
	query := fmt.Sprintf(`
		SELECT id, reading_id, notes, reflection, created_at, updated_at
		FROM journal_entries
		WHERE reading_id = %s
		ORDER BY created_at`,
		r.placeholder(1))

	rows, err := exec.Query(ctx, query, reading.ID().String())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idStr        string
			readingIDStr string
			notes        string
			reflection   sql.NullString
			createdAtStr string
			updatedAtStr string
		)
		if err := rows.Scan(&idStr, &readingIDStr, &notes, &reflection, &createdAtStr, &updatedAtStr); err != nil {
			return err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return fmt.Errorf("parse journal id: %w", err)
		}
		readingID, err := uuid.Parse(readingIDStr)
		if err != nil {
			return fmt.Errorf("parse journal reading id: %w", err)
		}
		createdAt, err := parseTime(createdAtStr)
		if err != nil {
			return err
		}
		updatedAt, err := parseTime(updatedAtStr)
		if err != nil {
			return err
		}
		reading.AddRehydratedJournal(domain.RehydrateJournalEntry(
			id, readingID, notes, reflection.String, createdAt, updatedAt,
		))
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *SQLReadingRepository) scanReading(row scanner) (*domain.Reading, error) {
	var (
		idStr          string
		userIDStr      string
		spreadID       string
		question       sql.NullString
		cardIDsJSON    string
		reversedJSON   string
		interpretation sql.NullString
		favorite       bool
		readingDate    string
		createdAtStr   string
		updatedAtStr   string
	)
	err := row.Scan(
		&idStr, &userIDStr, &spreadID, &question, &cardIDsJSON, &reversedJSON,
		&interpretation, &favorite, &readingDate, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrReadingNotFound
		}
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse reading id: %w", err)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("parse reading user id: %w", err)
	}

	var cardIDs []int
	if err := json.Unmarshal([]byte(cardIDsJSON), &cardIDs); err != nil {
		return nil, fmt.Errorf("decode card ids: %w", err)
	}
	var reversed []bool
	if err := json.Unmarshal([]byte(reversedJSON), &reversed); err != nil {
		return nil, fmt.Errorf("decode reversal flags: %w", err)
	}

	createdAt, err := parseTime(createdAtStr)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(updatedAtStr)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateReading(
		id, userID, spreadID, question.String, cardIDs, reversed,
		interpretation.String, favorite, readingDate, createdAt, updatedAt,
	), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
