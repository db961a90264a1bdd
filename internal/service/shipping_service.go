package service

import (
	"github.com/fitkart/storefront-api/internal/config"
	"github.com/fitkart/storefront-api/internal/shiprocket"
)

// ShippingCalculator computes the customer-facing shipping charge from live
// carrier quotes and a free-shipping subtotal threshold. Above the threshold
// the cheapest quote is covered, so the customer pays only the premium of the
// courier they actually selected.
type ShippingCalculator struct {
	freeThreshold float64
	flatFee       float64
}

// NewShippingCalculator creates a calculator from shipping config
func NewShippingCalculator(cfg config.ShippingConfig) *ShippingCalculator {
	return &ShippingCalculator{
		freeThreshold: cfg.FreeThreshold,
		flatFee:       cfg.FlatFee,
	}
}

// Select resolves the quote the customer picked, defaulting to the cheapest.
// Returns nil when no quotes are available.
func (c *ShippingCalculator) Select(quotes *shiprocket.QuoteSet, courierID *int) *shiprocket.Quote {
	if quotes == nil || len(quotes.Quotes) == 0 {
		return nil
	}
	if courierID != nil {
		for i := range quotes.Quotes {
			if quotes.Quotes[i].CourierID == *courierID {
				return &quotes.Quotes[i]
			}
		}
	}
	return quotes.Cheapest()
}

// Compute returns the chargeable shipping amount. With no quotes at all the
// flat fallback fee applies so checkout is never blocked by carrier
// unavailability.
func (c *ShippingCalculator) Compute(subtotal float64, quotes *shiprocket.QuoteSet, selected *shiprocket.Quote) float64 {
	if selected == nil {
		return c.flatFee
	}
	if subtotal >= c.freeThreshold {
		cheapest := quotes.Cheapest()
		charge := selected.Total - cheapest.Total
		if charge < 0 {
			charge = 0
		}
		return charge
	}
	return selected.Total
}

// FreeThreshold exposes the configured free-shipping subtotal threshold
func (c *ShippingCalculator) FreeThreshold() float64 {
	return c.freeThreshold
}
