// Command tarotd runs the HTTP API server with the outbox processor.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gzeu/tarot-reading-app/adapter/api"
	"github.com/Gzeu/tarot-reading-app/internal/app"
	"github.com/Gzeu/tarot-reading-app/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("startup: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer container.Close()

	logger := container.Logger

	if cfg.AuthSecret == "" {
		logger.Error("AUTH_SECRET is required to serve the API")
		os.Exit(1)
	}

	if err := container.StartOutbox(ctx); err != nil {
		logger.Error("failed to start outbox processor", "error", err)
		os.Exit(1)
	}

	auth := api.NewAuthenticator(cfg.AuthSecret, cfg.AuthTokenTTL)

	var webhook *api.WebhookHandler
	if container.ProcessWebhookHandler != nil {
		webhook = api.NewWebhookHandler(container.ProcessWebhookHandler, logger)
	} else {
		logger.Warn("STRIPE_WEBHOOK_SECRET not set, webhook endpoint disabled")
	}

	serverCfg := api.DefaultServerConfig()
	serverCfg.Addr = cfg.APIAddr

	server := api.NewServer(serverCfg, api.ServerDeps{
		Auth:     auth,
		Conn:     container.DBConn,
		Identity: api.NewIdentityHandler(container.RegisterUserHandler, auth, logger),
		Readings: api.NewReadingsHandler(
			container.GenerateReadingHandler,
			container.SetFavoriteHandler,
			container.AttachJournalHandler,
			container.GetReadingHandler,
			container.ListReadingsHandler,
			logger,
		),
		Catalog: api.NewCatalogHandler(logger),
		Billing: api.NewBillingHandler(
			container.CreateCheckoutHandler,
			container.GetEntitlementHandler,
			container.ListPaymentsHandler,
			logger,
		),
		Webhook: webhook,
		Logger:  logger,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
