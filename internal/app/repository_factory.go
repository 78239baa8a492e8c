package app

import (
	billingPersistence "github.com/Gzeu/tarot-reading-app/internal/billing/infrastructure/persistence"
	identityPersistence "github.com/Gzeu/tarot-reading-app/internal/identity/infrastructure/persistence"
	readingsPersistence "github.com/Gzeu/tarot-reading-app/internal/readings/infrastructure/persistence"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/outbox"
)

// RepositoryFactory creates repositories over a database connection. The
// repositories themselves are driver-agnostic; the factory exists so wiring
// code has one place to ask for them.
type RepositoryFactory struct {
	conn database.Connection
}

// NewRepositoryFactory creates a factory for the given connection.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// UserRepository returns the user repository.
func (f *RepositoryFactory) UserRepository() *identityPersistence.SQLUserRepository {
	return identityPersistence.NewSQLUserRepository(f.conn)
}

// ReadingRepository returns the reading repository.
func (f *RepositoryFactory) ReadingRepository() *readingsPersistence.SQLReadingRepository {
	return readingsPersistence.NewSQLReadingRepository(f.conn)
}

// SubscriptionRepository returns the subscription repository.
func (f *RepositoryFactory) SubscriptionRepository() *billingPersistence.SQLSubscriptionRepository {
	return billingPersistence.NewSQLSubscriptionRepository(f.conn)
}

// ProcessedEventRepository returns the webhook idempotency repository.
func (f *RepositoryFactory) ProcessedEventRepository() *billingPersistence.SQLProcessedEventRepository {
	return billingPersistence.NewSQLProcessedEventRepository(f.conn)
}

// PaymentRepository returns the payment repository.
func (f *RepositoryFactory) PaymentRepository() *billingPersistence.SQLPaymentRepository {
	return billingPersistence.NewSQLPaymentRepository(f.conn)
}

// OutboxRepository returns the transactional outbox repository.
func (f *RepositoryFactory) OutboxRepository() *outbox.SQLRepository {
	return outbox.NewSQLRepository(f.conn)
}

// Driver returns the detected database driver.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.conn.Driver()
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}
