package shiprocket

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/config"
	"github.com/fitkart/storefront-api/pkg/errors"
)

// Gateway fronts the carrier API with per-call mock fallback. Every operation
// first tries the real backend; missing credentials, timeouts, non-2xx
// responses and malformed payloads all degrade to deterministic mock data with
// the same shape. Callers never see a carrier failure as an error.
type Gateway struct {
	client         *Client
	pickupPincode  string
	pickupLocation string
	timeout        time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

// NewGateway creates a carrier gateway around a Shiprocket client
func NewGateway(cfg config.ShiprocketConfig, logger *zap.Logger) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		client:         NewClient(cfg, logger),
		pickupPincode:  cfg.PickupPincode,
		pickupLocation: cfg.PickupLocation,
		timeout:        timeout,
		logger:         logger,
		now:            time.Now,
	}
}

func (g *Gateway) fallback(op string, err error) {
	carrierErr := &errors.ErrCarrierUnavailable{Operation: op, Cause: err}
	g.logger.Warn("Carrier call failed, serving mock data",
		zap.String("operation", op),
		zap.Error(carrierErr),
	)
}

// Quote fetches courier quotes for a destination, falling back to mock quotes
func (g *Gateway) Quote(ctx context.Context, deliveryPin string, weightKg float64, cod bool, declaredValue float64) *QuoteSet {
	if g.client.HasCredentials() {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		quotes, err := g.client.Serviceability(callCtx, g.pickupPincode, deliveryPin, weightKg, cod, declaredValue)
		if err == nil {
			return &QuoteSet{Origin: OriginCarrier, Quotes: quotes}
		}
		g.fallback("serviceability", err)
	}
	return &QuoteSet{
		Origin: OriginMock,
		Quotes: MockQuotes(deliveryPin, weightKg, cod, declaredValue),
	}
}

// CreateShipment registers a shipment with the carrier, falling back to a
// mock shipment result
func (g *Gateway) CreateShipment(ctx context.Context, req ShipmentRequest) *ShipmentResult {
	if g.client.HasCredentials() {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		result, err := g.client.CreateShipment(callCtx, req, g.pickupLocation)
		if err == nil {
			return result
		}
		g.fallback("create_shipment", err)
	}
	return MockShipment(req.OrderNumber, g.now())
}

// Track fetches live tracking for an AWB, falling back to mock tracking.
// Mock-prefixed AWBs skip the carrier entirely since the backend never
// issued them.
func (g *Gateway) Track(ctx context.Context, awb string) *TrackingInfo {
	if g.client.HasCredentials() && !isMockAWB(awb) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		info, err := g.client.Track(callCtx, awb)
		if err == nil {
			return info
		}
		g.fallback("track", err)
	}
	return MockTracking(awb, g.now())
}

// HasCredentials reports whether the underlying client can reach the real
// backend at all
func (g *Gateway) HasCredentials() bool {
	return g.client.HasCredentials()
}

func isMockAWB(awb string) bool {
	return len(awb) >= len(mockAWBPrefix) && awb[:len(mockAWBPrefix)] == mockAWBPrefix
}
