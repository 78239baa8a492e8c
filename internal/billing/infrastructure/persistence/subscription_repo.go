// Package persistence implements the billing repositories on the shared
// database abstraction.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/billing/domain"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database"
)

const subscriptionColumns = `id, user_id, status, product_id, price_id,
	current_period_end, cancel_at_period_end, created_at, updated_at`

// SQLSubscriptionRepository implements domain.SubscriptionRepository for
// both PostgreSQL and SQLite.
type SQLSubscriptionRepository struct {
	conn   database.Connection
	driver database.Driver
}

// NewSQLSubscriptionRepository creates a subscription repository.
func NewSQLSubscriptionRepository(conn database.Connection) *SQLSubscriptionRepository {
	return &SQLSubscriptionRepository{conn: conn, driver: conn.Driver()}
}

func (r *SQLSubscriptionRepository) placeholder(n int) string {
	if r.driver == database.DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (r *SQLSubscriptionRepository) boolArg(b bool) any {
	if r.driver == database.DriverPostgres {
		return b
	}
	if b {
		return int64(1)
	}
	return int64(0)
}

// Upsert writes the subscription row keyed by the processor's id.
func (r *SQLSubscriptionRepository) Upsert(ctx context.Context, subscription *domain.Subscription) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := fmt.Sprintf(`
		INSERT INTO subscriptions (%s) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			product_id = EXCLUDED.product_id,
			price_id = EXCLUDED.price_id,
			current_period_end = EXCLUDED.current_period_end,
			cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			updated_at = EXCLUDED.updated_at`,
		subscriptionColumns,
		r.placeholder(1), r.placeholder(2), r.placeholder(3),
		r.placeholder(4), r.placeholder(5), r.placeholder(6),
		r.placeholder(7), r.placeholder(8), r.placeholder(9))

	_, err := exec.Exec(ctx, query,
		subscription.ID,
		subscription.UserID.String(),
		string(subscription.Status),
		nullable(subscription.ProductID),
		nullable(subscription.PriceID),
		nullableTime(subscription.CurrentPeriodEnd),
		r.boolArg(subscription.CancelAtPeriodEnd),
		subscription.CreatedAt.UTC().Format(database.TimeFormat),
		subscription.UpdatedAt.UTC().Format(database.TimeFormat),
	)
	return err
}

// FindByID loads a subscription by the processor's id.
func (r *SQLSubscriptionRepository) FindByID(ctx context.Context, id string) (*domain.Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscriptions WHERE id = %s`,
		subscriptionColumns, r.placeholder(1))
	return r.findOne(ctx, query, id)
}

// FindByUserID loads the user's most recently updated subscription.
func (r *SQLSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM subscriptions
		WHERE user_id = %s
		ORDER BY updated_at DESC
		LIMIT 1`,
		subscriptionColumns, r.placeholder(1))
	return r.findOne(ctx, query, userID.String())
}

func (r *SQLSubscriptionRepository) findOne(ctx context.Context, query string, arg any) (*domain.Subscription, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, query, arg)

	var (
		id                string
		userIDStr         string
		status            string
		productID         sql.NullString
		priceID           sql.NullString
		currentPeriodEnd  sql.NullString
		cancelAtPeriodEnd bool
		createdAtStr      string
		updatedAtStr      string
	)
	err := row.Scan(
		&id, &userIDStr, &status, &productID, &priceID,
		&currentPeriodEnd, &cancelAtPeriodEnd, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, err
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("parse subscription user id: %w", err)
	}
	createdAt, err := parseTime(createdAtStr)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(updatedAtStr)
	if err != nil {
		return nil, err
	}

	subscription := &domain.Subscription{
		ID:                id,
		UserID:            userID,
		Status:            domain.SubscriptionStatus(status),
		ProductID:         productID.String,
		PriceID:           priceID.String,
		CancelAtPeriodEnd: cancelAtPeriodEnd,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}
	if currentPeriodEnd.Valid && currentPeriodEnd.String != "" {
		end, err := parseTime(currentPeriodEnd.String)
		if err != nil {
			return nil, err
		}
		subscription.CurrentPeriodEnd = &end
	}
	return subscription, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(database.TimeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
