package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/internal/usecase"
	"github.com/techmart/backend/pkg/e"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

func newTestServer(t *testing.T, capture func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 3600})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		units := body["purchase_units"].([]any)
		amount := units[0].(map[string]any)["amount"].(map[string]any)
		assert.Equal(t, "108.33", amount["value"])
		assert.Equal(t, "USD", amount["currency_code"])

		json.NewEncoder(w).Encode(map[string]any{"id": "PP-42", "status": "CREATED"})
	})
	if capture != nil {
		mux.HandleFunc("/v2/checkout/orders/PP-42/capture", capture)
	}
	return httptest.NewServer(mux)
}

func newTestClient(baseURL string) *Client {
	return NewClient(&cfg.PayPalCfg{
		BaseURL:  baseURL,
		ClientID: "client-id",
		Secret:   "client-secret",
		Currency: "USD",
		Timeout:  5 * time.Second,
	}, nopLogger{})
}

func TestCreateOrderAndCapture(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "PP-42",
			"status": "COMPLETED",
			"payer":  map[string]any{"email_address": "buyer@example.com"},
			"purchase_units": []any{map[string]any{
				"payments": map[string]any{
					"captures": []any{map[string]any{"id": "CAP-7", "status": "COMPLETED"}},
				},
			}},
		})
	})
	defer srv.Close()

	client := newTestClient(srv.URL)

	res, err := client.CreateOrder(context.Background(), &usecase.CreatePaymentReq{
		OrderID:    "ord-1",
		TotalCents: 108_33,
		Currency:   "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, "PP-42", res.ProviderOrderID)

	captured, err := client.Capture(context.Background(), "PP-42")
	require.NoError(t, err)
	assert.Equal(t, "CAP-7", captured.CaptureID)
	assert.Equal(t, "COMPLETED", captured.Status)
	assert.Equal(t, "buyer@example.com", captured.PayerEmail)
}

func TestCaptureDeclined(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"name": "UNPROCESSABLE_ENTITY"})
	})
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, err := client.Capture(context.Background(), "PP-42")
	assert.ErrorIs(t, err, e.ErrPaymentProvider)
}

func TestTokenIsCached(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 3600})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "PP-1", "status": "CREATED"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(srv.URL)

	for i := 0; i < 3; i++ {
		_, err := client.CreateOrder(context.Background(), &usecase.CreatePaymentReq{
			OrderID: "ord-1", TotalCents: 10_00, Currency: "USD",
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 1, tokenCalls)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", formatAmount(0))
	assert.Equal(t, "0.07", formatAmount(7))
	assert.Equal(t, "1.00", formatAmount(100))
	assert.Equal(t, "108.33", formatAmount(10_833))
}
