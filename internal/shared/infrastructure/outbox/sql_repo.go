package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database"
)

// SQLRepository implements Repository on the shared database abstraction.
// Placeholder style is selected per driver so the same scan logic serves
// both PostgreSQL and SQLite.
type SQLRepository struct {
	conn   database.Connection
	driver database.Driver
}

// NewSQLRepository creates an outbox repository for the given connection.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn, driver: conn.Driver()}
}

func (r *SQLRepository) placeholder(n int) string {
	if r.driver == database.DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (r *SQLRepository) insertQuery() string {
	return fmt.Sprintf(`
		INSERT INTO outbox (
			event_id, aggregate_id, event_type, routing_key, payload, created_at
		) VALUES (%s, %s, %s, %s, %s, %s)`,
		r.placeholder(1), r.placeholder(2), r.placeholder(3),
		r.placeholder(4), r.placeholder(5), r.placeholder(6))
}

// Save stores a new outbox message.
func (r *SQLRepository) Save(ctx context.Context, msg *Message) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	if r.driver == database.DriverPostgres {
		return exec.QueryRow(ctx, r.insertQuery()+" RETURNING id",
			msg.EventID.String(), msg.AggregateID.String(), msg.EventType,
			msg.RoutingKey, string(msg.Payload), msg.CreatedAt.UTC().Format(database.TimeFormat),
		).Scan(&msg.ID)
	}

	result, err := exec.Exec(ctx, r.insertQuery(),
		msg.EventID.String(), msg.AggregateID.String(), msg.EventType,
		msg.RoutingKey, string(msg.Payload), msg.CreatedAt.UTC().Format(database.TimeFormat),
	)
	if err != nil {
		return err
	}
	// modernc sqlite reports the rowid through LastInsertId, which the
	// shared Result interface doesn't surface. Rowids are only needed by
	// the processor's polling query, so leave msg.ID unset here.
	_, err = result.RowsAffected()
	return err
}

// SaveBatch stores multiple outbox messages within the caller's transaction,
// or a new one when none is present.
func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	if database.TxFromContext(ctx) != nil {
		for _, msg := range msgs {
			if err := r.Save(ctx, msg); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return err
	}
	txCtx := database.WithTx(ctx, tx, false)
	for _, msg := range msgs {
		if err := r.Save(txCtx, msg); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}
	return tx.Commit(ctx)
}

// GetUnpublished retrieves unpublished messages ordered by creation time.
func (r *SQLRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	query := fmt.Sprintf(`
		SELECT id, event_id, aggregate_id, event_type, routing_key, payload,
		       created_at, published_at, next_retry_at, retry_count, last_error
		FROM outbox
		WHERE published_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= %s)
		ORDER BY created_at
		LIMIT %s`, r.placeholder(1), r.placeholder(2))

	now := time.Now().UTC().Format(database.TimeFormat)
	rows, err := r.conn.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// MarkPublished marks a message as successfully published.
func (r *SQLRepository) MarkPublished(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`UPDATE outbox SET published_at = %s WHERE id = %s`,
		r.placeholder(1), r.placeholder(2))
	_, err := r.conn.Exec(ctx, query, time.Now().UTC().Format(database.TimeFormat), id)
	return err
}

// MarkFailed records a publish failure with error message.
func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	query := fmt.Sprintf(`
		UPDATE outbox
		SET retry_count = retry_count + 1,
		    last_error = %s,
		    next_retry_at = %s
		WHERE id = %s`, r.placeholder(1), r.placeholder(2), r.placeholder(3))
	_, err := r.conn.Exec(ctx, query, errMsg, nextRetryAt.UTC().Format(database.TimeFormat), id)
	return err
}

// DeleteOld removes published messages older than the retention period.
func (r *SQLRepository) DeleteOld(ctx context.Context, olderThan time.Time) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM outbox
		WHERE published_at IS NOT NULL
		  AND published_at < %s`, r.placeholder(1))
	result, err := r.conn.Exec(ctx, query, olderThan.UTC().Format(database.TimeFormat))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanMessages(rows database.Rows) ([]*Message, error) {
	var messages []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func scanMessage(rows database.Rows) (*Message, error) {
	var (
		msg         Message
		eventID     string
		aggregateID string
		payload     string
		createdAt   string
		publishedAt *string
		nextRetryAt *string
	)

	err := rows.Scan(
		&msg.ID, &eventID, &aggregateID, &msg.EventType, &msg.RoutingKey,
		&payload, &createdAt, &publishedAt, &nextRetryAt,
		&msg.RetryCount, &msg.LastError,
	)
	if err != nil {
		return nil, err
	}

	if msg.EventID, err = parseUUID(eventID); err != nil {
		return nil, fmt.Errorf("invalid event_id: %w", err)
	}
	if msg.AggregateID, err = parseUUID(aggregateID); err != nil {
		return nil, fmt.Errorf("invalid aggregate_id: %w", err)
	}
	msg.Payload = []byte(payload)

	if msg.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	if msg.PublishedAt, err = parseTimePtr(publishedAt); err != nil {
		return nil, fmt.Errorf("invalid published_at: %w", err)
	}
	if msg.NextRetryAt, err = parseTimePtr(nextRetryAt); err != nil {
		return nil, fmt.Errorf("invalid next_retry_at: %w", err)
	}

	return &msg, nil
}
