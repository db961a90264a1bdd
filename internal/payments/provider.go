package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/config"
	"github.com/fitkart/storefront-api/pkg/errors"
)

// Session is the handle the checkout flow hands back to the client so it can
// complete payment with the provider.
type Session struct {
	SessionID string  `json:"sessionId"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	KeyID     string  `json:"keyId,omitempty"`
}

// Provider creates payment sessions for orders. The amount/line-item contract
// is the only part of the payment flow owned here; redirects and webhooks are
// the payment processor's business.
type Provider interface {
	CreateSession(ctx context.Context, orderNumber string, amount float64) (*Session, error)
}

type razorpayProvider struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewProvider creates a Razorpay-backed payment provider. Without credentials
// it runs in test mode and fabricates session handles locally.
func NewProvider(cfg config.PaymentConfig, logger *zap.Logger) Provider {
	return &razorpayProvider{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

type createOrderResponse struct {
	ID string `json:"id"`
}

func (p *razorpayProvider) CreateSession(ctx context.Context, orderNumber string, amount float64) (*Session, error) {
	if p.keyID == "" || p.keySecret == "" {
		// Test mode: no provider round trip, but the same contract shape.
		return &Session{
			SessionID: "test_" + orderNumber,
			Amount:    amount,
			Currency:  "INR",
		}, nil
	}

	// Razorpay wants the amount in paise.
	reqBody := map[string]interface{}{
		"amount":   int64(amount * 100),
		"currency": "INR",
		"receipt":  orderNumber,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/orders", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(p.keyID, p.keySecret)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &errors.ErrPaymentProvider{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.ErrPaymentProvider{Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.Error("Payment provider rejected session",
			zap.Int("status", resp.StatusCode),
			zap.String("orderNumber", orderNumber),
		)
		return nil, &errors.ErrPaymentProvider{
			Cause: fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var orderResp createOrderResponse
	if err := json.Unmarshal(body, &orderResp); err != nil {
		return nil, &errors.ErrPaymentProvider{Cause: err}
	}

	return &Session{
		SessionID: orderResp.ID,
		Amount:    amount,
		Currency:  "INR",
		KeyID:     p.keyID,
	}, nil
}
