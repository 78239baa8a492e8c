package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/billing/domain"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database"
)

// SQLPaymentRepository implements domain.PaymentRepository for both
// PostgreSQL and SQLite.
type SQLPaymentRepository struct {
	conn   database.Connection
	driver database.Driver
}

// NewSQLPaymentRepository creates a payment repository.
func NewSQLPaymentRepository(conn database.Connection) *SQLPaymentRepository {
	return &SQLPaymentRepository{conn: conn, driver: conn.Driver()}
}

func (r *SQLPaymentRepository) placeholder(n int) string {
	if r.driver == database.DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Save stores a payment record. The provider reference is unique, so a
// replayed payment event conflicts instead of duplicating the record.
func (r *SQLPaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := fmt.Sprintf(`
		INSERT INTO payments (id, user_id, product_id, amount_cents, currency, status, provider_ref, created_at)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s)
		ON CONFLICT (provider_ref) DO NOTHING`,
		r.placeholder(1), r.placeholder(2), r.placeholder(3), r.placeholder(4),
		r.placeholder(5), r.placeholder(6), r.placeholder(7), r.placeholder(8))

	_, err := exec.Exec(ctx, query,
		payment.ID.String(),
		payment.UserID.String(),
		nullable(payment.ProductID),
		payment.AmountCents,
		payment.Currency,
		string(payment.Status),
		payment.ProviderRef,
		payment.CreatedAt.UTC().Format(database.TimeFormat),
	)
	return err
}

// ListByUser returns the user's payments, newest first.
func (r *SQLPaymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Payment, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := fmt.Sprintf(`
		SELECT id, user_id, product_id, amount_cents, currency, status, provider_ref, created_at
		FROM payments
		WHERE user_id = %s
		ORDER BY created_at DESC`,
		r.placeholder(1))

	rows, err := exec.Query(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var (
			idStr        string
			userIDStr    string
			productID    sql.NullString
			amountCents  int64
			currency     string
			status       string
			providerRef  string
			createdAtStr string
		)
		if err := rows.Scan(&idStr, &userIDStr, &productID, &amountCents,
			&currency, &status, &providerRef, &createdAtStr); err != nil {
			return nil, err
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse payment id: %w", err)
		}
		uid, err := uuid.Parse(userIDStr)
		if err != nil {
			return nil, fmt.Errorf("parse payment user id: %w", err)
		}
		createdAt, err := parseTime(createdAtStr)
		if err != nil {
			return nil, err
		}

		payments = append(payments, &domain.Payment{
			ID:          id,
			UserID:      uid,
			ProductID:   productID.String,
			AmountCents: amountCents,
			Currency:    currency,
			Status:      domain.PaymentStatus(status),
			ProviderRef: providerRef,
			CreatedAt:   createdAt,
		})
	}
	return payments, rows.Err()
}
