// Package app wires configuration, infrastructure and handlers into a
// running application. Both binaries build a Container and pick the pieces
// they need.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	billingCommands "github.com/Gzeu/tarot-reading-app/internal/billing/application/commands"
	billingQueries "github.com/Gzeu/tarot-reading-app/internal/billing/application/queries"
	billingDomain "github.com/Gzeu/tarot-reading-app/internal/billing/domain"
	"github.com/Gzeu/tarot-reading-app/internal/billing/infrastructure/stripe"
	identityCommands "github.com/Gzeu/tarot-reading-app/internal/identity/application/commands"
	identityDomain "github.com/Gzeu/tarot-reading-app/internal/identity/domain"
	readingCommands "github.com/Gzeu/tarot-reading-app/internal/readings/application/commands"
	readingQueries "github.com/Gzeu/tarot-reading-app/internal/readings/application/queries"
	readingsDomain "github.com/Gzeu/tarot-reading-app/internal/readings/domain"
	sharedApplication "github.com/Gzeu/tarot-reading-app/internal/shared/application"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/cache"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/eventbus"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/outbox"
	"github.com/Gzeu/tarot-reading-app/migrations"
	"github.com/Gzeu/tarot-reading-app/pkg/config"
	"github.com/Gzeu/tarot-reading-app/pkg/observability"

	// Driver factories register themselves on import.
	_ "github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database/postgres"
	_ "github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database/sqlite"
)

// LocalUserEmail identifies the default user created in local mode.
const LocalUserEmail = "local@tarot.local"

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Repositories
	UserRepo           identityDomain.UserRepository
	ReadingRepo        readingsDomain.ReadingRepository
	SubscriptionRepo   billingDomain.SubscriptionRepository
	ProcessedEventRepo billingDomain.ProcessedEventRepository
	PaymentRepo        billingDomain.PaymentRepository
	OutboxRepo         outbox.Repository

	// Infrastructure
	UnitOfWork     sharedApplication.UnitOfWork
	EventPublisher eventbus.Publisher
	OutboxWorker   *outbox.Processor
	Cache          cache.Cache
	StripeClient   *stripe.Client
	StripeVerifier *stripe.SignatureVerifier

	// Identity
	RegisterUserHandler *identityCommands.RegisterUserHandler

	// Readings
	GenerateReadingHandler *readingCommands.GenerateReadingHandler
	SetFavoriteHandler     *readingCommands.SetFavoriteHandler
	AttachJournalHandler   *readingCommands.AttachJournalHandler
	GetReadingHandler      *readingQueries.GetReadingHandler
	ListReadingsHandler    *readingQueries.ListReadingsHandler

	// Billing
	ProcessWebhookHandler *billingCommands.ProcessWebhookHandler
	CreateCheckoutHandler *billingCommands.CreateCheckoutHandler
	GetEntitlementHandler *billingQueries.GetEntitlementHandler
	ListPaymentsHandler   *billingQueries.ListPaymentsHandler
}

// NewContainer creates a fully wired container from configuration.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger := observability.NewLogger(observability.LogConfig{
		Level:       observability.LogLevel(cfg.LogLevel),
		Format:      logFormat(cfg),
		ServiceName: "tarot",
	})

	conn, err := database.NewConnection(ctx, database.Config{
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := migrations.Run(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		DBConn:   conn,
		DBDriver: conn.Driver(),
	}

	if err := c.initInfrastructure(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	c.initHandlers()

	logger.Info("container initialized",
		"driver", c.DBDriver,
		"outbox_enabled", cfg.OutboxEnabled,
	)
	return c, nil
}

// initInfrastructure wires repositories, the event publisher and the cache.
// Optional backends degrade to local fallbacks rather than failing startup.
func (c *Container) initInfrastructure(ctx context.Context) error {
	factory := NewRepositoryFactory(c.DBConn)
	c.UserRepo = factory.UserRepository()
	c.ReadingRepo = factory.ReadingRepository()
	c.SubscriptionRepo = factory.SubscriptionRepository()
	c.ProcessedEventRepo = factory.ProcessedEventRepository()
	c.PaymentRepo = factory.PaymentRepository()
	c.OutboxRepo = factory.OutboxRepository()

	c.UnitOfWork = database.NewUnitOfWork(c.DBConn)

	if c.Config.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		c.EventPublisher = publisher
	} else {
		c.Logger.Info("no RABBITMQ_URL configured, events are logged only")
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
	}

	c.OutboxWorker = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval: c.Config.OutboxPollInterval,
		BatchSize:    c.Config.OutboxBatchSize,
		MaxRetries:   c.Config.OutboxMaxRetries,
	}, c.Logger, observability.NoopMetrics{})

	if c.Config.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, c.Config.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		c.Cache = redisCache
	} else {
		c.Cache = cache.NewMemoryCache()
	}

	if c.Config.StripeAPIKey != "" {
		c.StripeClient = stripe.NewClient(c.Config.StripeAPIBaseURL, c.Config.StripeAPIKey, c.Logger)
	}
	if c.Config.StripeWebhookSecret != "" {
		c.StripeVerifier = stripe.NewSignatureVerifier(c.Config.StripeWebhookSecret).
			WithTolerance(c.Config.WebhookClockTolerance)
	}

	return nil
}

// initHandlers wires the command and query handlers.
func (c *Container) initHandlers() {
	loc := c.referenceLocation()

	c.RegisterUserHandler = identityCommands.NewRegisterUserHandler(
		c.UserRepo, c.OutboxRepo, c.UnitOfWork, c.Logger)

	c.GenerateReadingHandler = readingCommands.NewGenerateReadingHandler(
		c.UserRepo, c.ReadingRepo, c.OutboxRepo, c.UnitOfWork, c.Logger).
		WithLocation(loc).
		WithDailyCache(c.Cache)
	c.SetFavoriteHandler = readingCommands.NewSetFavoriteHandler(c.ReadingRepo, c.UnitOfWork)
	c.AttachJournalHandler = readingCommands.NewAttachJournalHandler(
		c.ReadingRepo, c.OutboxRepo, c.UnitOfWork)
	c.GetReadingHandler = readingQueries.NewGetReadingHandler(c.ReadingRepo)
	c.ListReadingsHandler = readingQueries.NewListReadingsHandler(c.ReadingRepo)

	if c.StripeVerifier != nil {
		c.ProcessWebhookHandler = billingCommands.NewProcessWebhookHandler(
			c.StripeVerifier, c.UserRepo, c.SubscriptionRepo, c.ProcessedEventRepo,
			c.PaymentRepo, c.OutboxRepo, c.UnitOfWork, c.Logger)
	}
	if c.StripeClient != nil {
		c.CreateCheckoutHandler = billingCommands.NewCreateCheckoutHandler(c.UserRepo, c.StripeClient)
	}
	c.GetEntitlementHandler = billingQueries.NewGetEntitlementHandler(c.UserRepo).WithLocation(loc)
	c.ListPaymentsHandler = billingQueries.NewListPaymentsHandler(c.PaymentRepo)
}

// StartOutbox starts the outbox processor when enabled.
func (c *Container) StartOutbox(ctx context.Context) error {
	if !c.Config.OutboxEnabled {
		c.Logger.Info("outbox processor disabled")
		return nil
	}
	return c.OutboxWorker.Start(ctx)
}

// Close releases resources in reverse initialization order.
func (c *Container) Close() error {
	if c.OutboxWorker != nil && c.OutboxWorker.IsRunning() {
		c.OutboxWorker.Stop()
	}

	var firstErr error
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if closer, ok := c.EventPublisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// referenceLocation loads the configured timezone for calendar computations.
// Falls back to UTC on a bad name rather than refusing to start.
func (c *Container) referenceLocation() *time.Location {
	if c.Config.ReferenceTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Config.ReferenceTimezone)
	if err != nil {
		c.Logger.Warn("invalid REFERENCE_TIMEZONE, using UTC",
			"timezone", c.Config.ReferenceTimezone, "error", err)
		return time.UTC
	}
	return loc
}

func logFormat(cfg *config.Config) observability.LogFormat {
	if cfg.AppEnv == "production" {
		return observability.LogFormatJSON
	}
	return observability.LogFormatText
}

// NewLocalContainer creates a zero-config container backed by a SQLite
// database, with a default local user. Used by the CLI so it works without
// PostgreSQL, Redis or RabbitMQ.
func NewLocalContainer(ctx context.Context) (*Container, *identityDomain.User, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	// Local mode never talks to external backends.
	cfg.DatabaseURL = ""
	cfg.RedisURL = ""
	cfg.RabbitMQURL = ""
	cfg.OutboxEnabled = false
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = database.DefaultSQLitePath()
	}

	c, err := NewContainer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	user, err := c.ensureLocalUser(ctx)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return c, user, nil
}

// ensureLocalUser returns the default local user, creating it on first run.
func (c *Container) ensureLocalUser(ctx context.Context) (*identityDomain.User, error) {
	user, err := c.UserRepo.FindByEmail(ctx, LocalUserEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, identityDomain.ErrUserNotFound) {
		return nil, err
	}

	result, err := c.RegisterUserHandler.Handle(ctx, identityCommands.RegisterUserCommand{
		Email:       LocalUserEmail,
		DisplayName: "Local Seeker",
	})
	if err != nil {
		return nil, fmt.Errorf("create local user: %w", err)
	}
	return c.UserRepo.FindByID(ctx, result.UserID)
}
