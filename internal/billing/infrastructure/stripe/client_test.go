package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gzeu/tarot-reading-app/internal/billing/domain"
)

func TestClient_CreateCheckoutSession(t *testing.T) {
	userID := uuid.New()

	t.Run("creates a subscription session", func(t *testing.T) {
		var gotForm map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
			assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
			require.NoError(t, r.ParseForm())

			gotForm = map[string]string{}
			for key := range r.PostForm {
				gotForm[key] = r.PostForm.Get(key)
			}

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"cs_test_42","url":"https://checkout.example.com/pay/cs_test_42"}`))
		}))
		defer server.Close()

		product, err := domain.GetProduct("prod_pro_plan")
		require.NoError(t, err)

		client := NewClient(server.URL, "sk_test_123", nil)
		session, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{
			UserID:     userID,
			Product:    product,
			CustomerID: "cus_9",
			SuccessURL: "https://app.example.com/success",
			CancelURL:  "https://app.example.com/cancel",
		})

		require.NoError(t, err)
		assert.Equal(t, "cs_test_42", session.ID)
		assert.Equal(t, "https://checkout.example.com/pay/cs_test_42", session.URL)

		assert.Equal(t, "subscription", gotForm["mode"])
		assert.Equal(t, product.PriceID, gotForm["line_items[0][price]"])
		assert.Equal(t, "1", gotForm["line_items[0][quantity]"])
		assert.Equal(t, userID.String(), gotForm["metadata[user_id]"])
		assert.Equal(t, "prod_pro_plan", gotForm["metadata[product_id]"])
		assert.Equal(t, "cus_9", gotForm["customer"])
	})

	t.Run("one-time products use payment mode", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "payment", r.PostForm.Get("mode"))
			assert.Empty(t, r.PostForm.Get("customer"))
			_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.example.com/pay/cs_test_1"}`))
		}))
		defer server.Close()

		product, err := domain.GetProduct("prod_celtic_cross")
		require.NoError(t, err)

		client := NewClient(server.URL, "sk_test_123", nil)
		_, err = client.CreateCheckoutSession(context.Background(), CheckoutParams{
			UserID:     userID,
			Product:    product,
			SuccessURL: "https://app.example.com/success",
			CancelURL:  "https://app.example.com/cancel",
		})
		require.NoError(t, err)
	})

	t.Run("maps upstream errors to ErrUpstreamUnavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"internal"}}`, http.StatusInternalServerError)
		}))
		defer server.Close()

		product, err := domain.GetProduct("prod_pro_plan")
		require.NoError(t, err)

		client := NewClient(server.URL, "sk_test_123", nil)
		_, err = client.CreateCheckoutSession(context.Background(), CheckoutParams{
			UserID:  userID,
			Product: product,
		})
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	})

	t.Run("opens the breaker after consecutive failures", func(t *testing.T) {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			http.Error(w, "down", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		product, err := domain.GetProduct("prod_starter_plan")
		require.NoError(t, err)

		client := NewClient(server.URL, "sk_test_123", nil)
		for i := 0; i < 8; i++ {
			_, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{
				UserID:  userID,
				Product: product,
			})
			assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		}

		// After the breaker trips the upstream stops seeing traffic.
		assert.Less(t, hits, 8)
	})

	t.Run("rejects a session without a url", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"cs_test_2"}`))
		}))
		defer server.Close()

		product, err := domain.GetProduct("prod_pro_plan")
		require.NoError(t, err)

		client := NewClient(server.URL, "sk_test_123", nil)
		_, err = client.CreateCheckoutSession(context.Background(), CheckoutParams{
			UserID:  userID,
			Product: product,
		})
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	})
}
