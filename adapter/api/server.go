// Package api exposes the reading and billing operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	billingCommands "github.com/Gzeu/tarot-reading-app/internal/billing/application/commands"
	billingDomain "github.com/Gzeu/tarot-reading-app/internal/billing/domain"
	deckDomain "github.com/Gzeu/tarot-reading-app/internal/deck/domain"
	identityDomain "github.com/Gzeu/tarot-reading-app/internal/identity/domain"
	readingCommands "github.com/Gzeu/tarot-reading-app/internal/readings/application/commands"
	readingsDomain "github.com/Gzeu/tarot-reading-app/internal/readings/domain"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database"
	"github.com/Gzeu/tarot-reading-app/pkg/observability"
)

// Server is the HTTP API server.
type Server struct {
	mux    *http.ServeMux
	root   http.Handler
	server *http.Server
	logger *slog.Logger
	health *observability.HealthRegistry

	auth     *Authenticator
	conn     database.Connection
	identity *IdentityHandler
	readings *ReadingsHandler
	catalog  *CatalogHandler
	billing  *BillingHandler
	webhook  *WebhookHandler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// ServerDeps holds the collaborators the server routes to.
type ServerDeps struct {
	Auth     *Authenticator
	Conn     database.Connection
	Identity *IdentityHandler
	Readings *ReadingsHandler
	Catalog  *CatalogHandler
	Billing  *BillingHandler
	Webhook  *WebhookHandler
	Logger   *slog.Logger
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   deps.Logger,
		health:   observability.NewHealthRegistry(),
		auth:     deps.Auth,
		conn:     deps.Conn,
		identity: deps.Identity,
		readings: deps.Readings,
		catalog:  deps.Catalog,
		billing:  deps.Billing,
		webhook:  deps.Webhook,
	}
	if deps.Conn != nil {
		s.health.Register("database", observability.PingCheck(deps.Conn.Ping))
	}
	s.registerRoutes()
	s.root = requestLogger(deps.Logger, s.mux)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.root,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// registerRoutes sets up the API routes. Health, registration and the
// webhook are unauthenticated; everything else requires a Bearer token.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	if s.identity != nil {
		s.mux.HandleFunc("POST /api/v1/auth/register", s.identity.Register)
	}
	if s.webhook != nil {
		s.mux.HandleFunc("POST /webhooks/stripe", s.webhook.HandleStripe)
	}

	s.authed("GET /api/v1/cards", s.catalog.ListCards)
	s.authed("GET /api/v1/cards/{cardID}", s.catalog.GetCard)
	s.authed("GET /api/v1/spreads", s.catalog.ListSpreads)

	s.authed("POST /api/v1/readings", s.readings.Generate)
	s.authed("GET /api/v1/readings", s.readings.List)
	s.authed("GET /api/v1/readings/{readingID}", s.readings.Get)
	s.authed("PUT /api/v1/readings/{readingID}/favorite", s.readings.SetFavorite)
	s.authed("POST /api/v1/readings/{readingID}/journal", s.readings.AttachJournal)

	if s.billing != nil {
		s.authed("POST /api/v1/billing/checkout", s.billing.CreateCheckout)
		s.authed("GET /api/v1/billing/products", s.billing.ListProducts)
		s.authed("GET /api/v1/billing/entitlement", s.billing.GetEntitlement)
		s.authed("GET /api/v1/billing/payments", s.billing.ListPayments)
	}
}

func (s *Server) authed(pattern string, handler http.HandlerFunc) {
	s.mux.Handle(pattern, s.auth.Middleware(handler))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	results := s.health.Check(r.Context())

	status := "healthy"
	code := http.StatusOK
	if !s.health.Healthy(r.Context()) {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":     status,
		"components": results,
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.root
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// errorResponse is the JSON shape of every error.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Upgrade string `json:"upgrade,omitempty"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeDomainError translates a domain error into an HTTP response.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, billingDomain.ErrQuotaExceeded):
		writeJSON(w, http.StatusPaymentRequired, errorResponse{
			Code:    "quota_exceeded",
			Message: "Free monthly reading quota exhausted",
			Upgrade: "/api/v1/billing/products",
		})
	case errors.Is(err, readingsDomain.ErrReadingNotFound),
		errors.Is(err, readingCommands.ErrNotOwner),
		errors.Is(err, identityDomain.ErrUserNotFound),
		errors.Is(err, deckDomain.ErrCardNotFound),
		errors.Is(err, deckDomain.ErrSpreadNotFound),
		errors.Is(err, billingDomain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, readingsDomain.ErrEmptyJournal),
		errors.Is(err, readingsDomain.ErrInvalidSpread),
		errors.Is(err, identityDomain.ErrInvalidEmail),
		errors.Is(err, billingCommands.ErrMissingRedirectURL),
		errors.Is(err, billingCommands.ErrMalformedEvent):
		writeError(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, identityDomain.ErrEmailTaken):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, billingDomain.ErrSignatureInvalid):
		writeError(w, http.StatusBadRequest, "signature_invalid", "Webhook signature verification failed")
	case errors.Is(err, billingDomain.ErrUpstreamUnavailable):
		writeError(w, http.StatusBadGateway, "upstream_unavailable", "Payment processor unavailable")
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
