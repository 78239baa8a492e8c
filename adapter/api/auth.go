package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/pkg/observability"
)

type contextKey struct{ name string }

var userIDKey = contextKey{"userID"}

// Authenticator issues and verifies Bearer tokens. Tokens are HS256 JWTs
// whose subject is the user ID.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	clock  func() time.Time
}

// NewAuthenticator creates an Authenticator with the given signing secret.
func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  time.Now,
	}
}

// WithClock overrides wall-clock time for tests.
func (a *Authenticator) WithClock(clock func() time.Time) *Authenticator {
	a.clock = clock
	return a
}

// IssueToken mints a token for the given user.
func (a *Authenticator) IssueToken(userID uuid.UUID) (string, error) {
	now := a.clock()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	})
	return token.SignedString(a.secret)
}

// VerifyToken parses a token and returns the user ID it carries.
func (a *Authenticator) VerifyToken(raw string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.clock), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, jwt.ErrTokenInvalidSubject
	}
	return uuid.Parse(claims.Subject)
}

// Middleware rejects requests without a valid Bearer token and stores the
// authenticated user ID in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "Missing bearer token")
			return
		}

		userID, err := a.VerifyToken(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "Invalid bearer token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = observability.WithUserID(ctx, userID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user ID.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}
