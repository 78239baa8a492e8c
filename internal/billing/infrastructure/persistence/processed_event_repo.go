package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/Gzeu/tarot-reading-app/internal/billing/domain"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database"
)

// SQLProcessedEventRepository implements domain.ProcessedEventRepository.
// Insert relies on the primary key so a duplicate event id fails with a
// unique violation inside the caller's transaction.
type SQLProcessedEventRepository struct {
	conn   database.Connection
	driver database.Driver
}

// NewSQLProcessedEventRepository creates a processed-event repository.
func NewSQLProcessedEventRepository(conn database.Connection) *SQLProcessedEventRepository {
	return &SQLProcessedEventRepository{conn: conn, driver: conn.Driver()}
}

func (r *SQLProcessedEventRepository) placeholder(n int) string {
	if r.driver == database.DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Insert records the event id. Returns a unique-violation error when the id
// was already recorded; callers detect it with database.IsUniqueViolation.
func (r *SQLProcessedEventRepository) Insert(ctx context.Context, event domain.ProcessedEvent) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := fmt.Sprintf(`
		INSERT INTO processed_events (event_id, event_type, processed_at)
		VALUES (%s, %s, %s)`,
		r.placeholder(1), r.placeholder(2), r.placeholder(3))

	_, err := exec.Exec(ctx, query,
		event.EventID,
		event.EventType,
		event.ProcessedAt.UTC().Format(database.TimeFormat),
	)
	return err
}

// Exists reports whether the event id was already processed.
func (r *SQLProcessedEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := fmt.Sprintf(`SELECT COUNT(1) FROM processed_events WHERE event_id = %s`, r.placeholder(1))

	var count int
	if err := exec.QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteOlderThan prunes records older than the given number of days.
func (r *SQLProcessedEventRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(database.TimeFormat)
	query := fmt.Sprintf(`DELETE FROM processed_events WHERE processed_at < %s`, r.placeholder(1))

	result, err := exec.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
