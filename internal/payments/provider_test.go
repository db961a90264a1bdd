package payments_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/config"
	"github.com/fitkart/storefront-api/internal/payments"
	"github.com/fitkart/storefront-api/pkg/errors"
)

func TestProvider_TestModeWithoutCredentials(t *testing.T) {
	provider := payments.NewProvider(config.PaymentConfig{}, zap.NewNop())

	session, err := provider.CreateSession(context.Background(), "FK-20260825-QX7R2M", 1549)

	require.NoError(t, err)
	assert.Equal(t, "test_FK-20260825-QX7R2M", session.SessionID)
	assert.Equal(t, float64(1549), session.Amount)
	assert.Equal(t, "INR", session.Currency)
	assert.Empty(t, session.KeyID)
}

func TestProvider_CreatesOrderInPaise(t *testing.T) {
	var gotBody map[string]interface{}
	var gotAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, gotAuth = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"id": "order_razor123"})
	}))
	defer server.Close()

	provider := payments.NewProvider(config.PaymentConfig{
		BaseURL:   server.URL,
		KeyID:     "rzp_test_key",
		KeySecret: "secret",
	}, zap.NewNop())

	session, err := provider.CreateSession(context.Background(), "FK-20260825-QX7R2M", 1549.50)

	require.NoError(t, err)
	assert.Equal(t, "order_razor123", session.SessionID)
	assert.Equal(t, "rzp_test_key", session.KeyID)
	assert.True(t, gotAuth)
	assert.Equal(t, float64(154950), gotBody["amount"])
	assert.Equal(t, "INR", gotBody["currency"])
	assert.Equal(t, "FK-20260825-QX7R2M", gotBody["receipt"])
}

func TestProvider_NonSuccessStatusIsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"description":"bad key"}}`))
	}))
	defer server.Close()

	provider := payments.NewProvider(config.PaymentConfig{
		BaseURL:   server.URL,
		KeyID:     "rzp_test_key",
		KeySecret: "wrong",
	}, zap.NewNop())

	_, err := provider.CreateSession(context.Background(), "FK-20260825-QX7R2M", 100)

	var providerErr *errors.ErrPaymentProvider
	require.ErrorAs(t, err, &providerErr)
}
