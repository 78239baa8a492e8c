// Package persistence implements the identity repositories on the shared
// database abstraction.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	billing "github.com/Gzeu/tarot-reading-app/internal/billing/domain"
	"github.com/Gzeu/tarot-reading-app/internal/identity/domain"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database"
)

const userColumns = `id, email, display_name, stripe_customer_id,
	subscription_status, subscription_id, plan_product_id, current_period_end,
	quota_period, quota_used, reading_streak, last_reading_date,
	created_at, updated_at`

// SQLUserRepository implements domain.UserRepository for both PostgreSQL
// and SQLite.
type SQLUserRepository struct {
	conn   database.Connection
	driver database.Driver
}

// NewSQLUserRepository creates a user repository for the given connection.
func NewSQLUserRepository(conn database.Connection) *SQLUserRepository {
	return &SQLUserRepository{conn: conn, driver: conn.Driver()}
}

func (r *SQLUserRepository) placeholder(n int) string {
	if r.driver == database.DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Save upserts the user row.
func (r *SQLUserRepository) Save(ctx context.Context, user *domain.User) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := fmt.Sprintf(`
		INSERT INTO users (%s) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			subscription_status = EXCLUDED.subscription_status,
			subscription_id = EXCLUDED.subscription_id,
			plan_product_id = EXCLUDED.plan_product_id,
			current_period_end = EXCLUDED.current_period_end,
			quota_period = EXCLUDED.quota_period,
			quota_used = EXCLUDED.quota_used,
			reading_streak = EXCLUDED.reading_streak,
			last_reading_date = EXCLUDED.last_reading_date,
			updated_at = EXCLUDED.updated_at`,
		userColumns,
		r.placeholder(1), r.placeholder(2), r.placeholder(3), r.placeholder(4),
		r.placeholder(5), r.placeholder(6), r.placeholder(7), r.placeholder(8),
		r.placeholder(9), r.placeholder(10), r.placeholder(11), r.placeholder(12),
		r.placeholder(13), r.placeholder(14))

	entitlement := user.Entitlement()
	_, err := exec.Exec(ctx, query,
		user.ID().String(),
		user.Email(),
		nullable(user.DisplayName()),
		nullable(user.StripeCustomerID()),
		string(entitlement.Status),
		nullable(entitlement.SubscriptionID),
		nullable(entitlement.PlanProductID),
		nullableTime(entitlement.CurrentPeriodEnd),
		user.QuotaPeriod(),
		user.QuotaUsed(),
		user.ReadingStreak(),
		nullable(user.LastReadingDate()),
		user.CreatedAt().UTC().Format(database.TimeFormat),
		user.UpdatedAt().UTC().Format(database.TimeFormat),
	)
	return err
}

// FindByID loads a user by id.
func (r *SQLUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = %s`, userColumns, r.placeholder(1))
	return r.findOne(ctx, query, id.String())
}

// FindByIDForUpdate loads a user under a row lock on PostgreSQL. SQLite
// serializes writers already, so the plain select suffices there.
func (r *SQLUserRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = %s`, userColumns, r.placeholder(1))
	if r.driver == database.DriverPostgres {
		query += " FOR UPDATE"
	}
	return r.findOne(ctx, query, id.String())
}

// FindByEmail loads a user by normalized email.
func (r *SQLUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = %s`, userColumns, r.placeholder(1))
	return r.findOne(ctx, query, email)
}

// FindByStripeCustomerID loads a user by the processor customer reference.
func (r *SQLUserRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE stripe_customer_id = %s`, userColumns, r.placeholder(1))
	return r.findOne(ctx, query, customerID)
}

func (r *SQLUserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, query, arg)

	var (
		idStr            string
		email            string
		displayName      sql.NullString
		stripeCustomerID sql.NullString
		status           string
		subscriptionID   sql.NullString
		planProductID    sql.NullString
		currentPeriodEnd sql.NullString
		quotaPeriod      string
		quotaUsed        int
		readingStreak    int
		lastReadingDate  sql.NullString
		createdAtStr     string
		updatedAtStr     string
	)
	err := row.Scan(
		&idStr, &email, &displayName, &stripeCustomerID,
		&status, &subscriptionID, &planProductID, &currentPeriodEnd,
		&quotaPeriod, &quotaUsed, &readingStreak, &lastReadingDate,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	createdAt, err := parseTime(createdAtStr)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(updatedAtStr)
	if err != nil {
		return nil, err
	}

	entitlement := domain.EntitlementState{
		Status:         billing.SubscriptionStatus(status),
		SubscriptionID: subscriptionID.String,
		PlanProductID:  planProductID.String,
	}
	if currentPeriodEnd.Valid && currentPeriodEnd.String != "" {
		end, err := parseTime(currentPeriodEnd.String)
		if err != nil {
			return nil, err
		}
		entitlement.CurrentPeriodEnd = &end
	}

	return domain.RehydrateUser(
		id, email, displayName.String, stripeCustomerID.String,
		entitlement, quotaPeriod, quotaUsed, readingStreak,
		lastReadingDate.String, createdAt, updatedAt,
	), nil
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
