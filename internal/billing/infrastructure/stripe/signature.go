// Package stripe talks to the payment processor: checkout session creation
// and webhook signature verification.
package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Gzeu/tarot-reading-app/internal/billing/domain"
)

// DefaultTolerance bounds how old a signed timestamp may be before the
// event is rejected as a possible replay.
const DefaultTolerance = 5 * time.Minute

// SignatureVerifier checks webhook signatures of the form
// "t=<unix>,v1=<hex>" where v1 is HMAC-SHA256 over "<t>.<raw payload>"
// keyed with the endpoint's shared secret.
type SignatureVerifier struct {
	secret    []byte
	tolerance time.Duration
	clock     func() time.Time
}

// NewSignatureVerifier creates a verifier for the given endpoint secret.
func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{
		secret:    []byte(secret),
		tolerance: DefaultTolerance,
		clock:     time.Now,
	}
}

// WithTolerance overrides the replay tolerance window.
func (v *SignatureVerifier) WithTolerance(d time.Duration) *SignatureVerifier {
	v.tolerance = d
	return v
}

// WithClock overrides wall-clock time for tests.
func (v *SignatureVerifier) WithClock(clock func() time.Time) *SignatureVerifier {
	v.clock = clock
	return v
}

// Verify validates the signature header against the raw request body. Any
// failure maps to domain.ErrSignatureInvalid; callers must not mutate state
// after a verification failure.
func (v *SignatureVerifier) Verify(payload []byte, header string) error {
	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	ts := time.Unix(timestamp, 0)
	now := v.clock()
	if now.Sub(ts) > v.tolerance || ts.Sub(now) > v.tolerance {
		return fmt.Errorf("timestamp outside tolerance: %w", domain.ErrSignatureInvalid)
	}

	expected := ComputeSignature(v.secret, timestamp, payload)
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return fmt.Errorf("no matching signature: %w", domain.ErrSignatureInvalid)
}

// ComputeSignature returns the hex HMAC-SHA256 of "<timestamp>.<payload>".
// Exported for test fixtures and the webhook replay tooling.
func ComputeSignature(secret []byte, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader builds a complete header for the given payload, as the
// processor would send it. Used by tests and the local webhook simulator.
func SignatureHeader(secret string, timestamp int64, payload []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, ComputeSignature([]byte(secret), timestamp, payload))
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, fmt.Errorf("missing signature header: %w", domain.ErrSignatureInvalid)
	}

	var (
		timestamp  int64 = -1
		signatures []string
	)
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("malformed timestamp: %w", domain.ErrSignatureInvalid)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, value)
		}
	}

	if timestamp < 0 {
		return 0, nil, fmt.Errorf("missing timestamp: %w", domain.ErrSignatureInvalid)
	}
	if len(signatures) == 0 {
		return 0, nil, fmt.Errorf("missing v1 signature: %w", domain.ErrSignatureInvalid)
	}
	return timestamp, signatures, nil
}
