package errors

import (
	"fmt"
	"strings"
)

// ErrNotFound indicates a resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// ItemIssue describes why one cart item failed validation
type ItemIssue struct {
	ProductID string `json:"productId"`
	Name      string `json:"name,omitempty"`
	Reason    string `json:"reason"`
}

// ErrValidation indicates malformed or rejected input. For checkout it carries
// the full list of invalid cart items so the client can fix the cart in one pass.
type ErrValidation struct {
	Message string
	Items   []ItemIssue
}

func (e *ErrValidation) Error() string {
	if len(e.Items) == 0 {
		return e.Message
	}
	reasons := make([]string, len(e.Items))
	for i, it := range e.Items {
		reasons[i] = fmt.Sprintf("%s: %s", it.ProductID, it.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(reasons, "; "))
}

// ErrUnauthorized indicates missing or invalid credentials
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}

// ErrForbidden indicates the caller lacks the role or ownership required
type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	return e.Message
}

// ErrInvalidStateTransition indicates an order operation not permitted from the
// order's current status
type ErrInvalidStateTransition struct {
	From   string
	To     string
	Reason string
}

func (e *ErrInvalidStateTransition) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// ErrInsufficientStock indicates a stock delta check failed. Carries the product
// and quantities so callers can report exactly what is missing.
type ErrInsufficientStock struct {
	ProductID string
	Name      string
	Required  int
	Available int
}

func (e *ErrInsufficientStock) Error() string {
	name := e.Name
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for %s: need %d, have %d", name, e.Required, e.Available)
}

// ErrRateLimited indicates the client exceeded its request budget
type ErrRateLimited struct {
	RetryAfterSeconds int
}

func (e *ErrRateLimited) Error() string {
	return "too many requests"
}

// Offer rejection reason codes, used for user messaging
const (
	OfferReasonNotFound         = "not_found"
	OfferReasonInactive         = "inactive"
	OfferReasonScheduled        = "not_yet_active"
	OfferReasonExpired          = "expired"
	OfferReasonExhausted        = "exhausted"
	OfferReasonMinimumNotMet    = "minimum_not_met"
	OfferReasonNotApplicable    = "not_applicable"
	OfferReasonNewCustomersOnly = "new_customers_only"
)

// ErrOfferRejected indicates a coupon code cannot be applied to the cart.
// Reason is one of the OfferReason* codes; Message is the human explanation.
type ErrOfferRejected struct {
	Code    string
	Reason  string
	Message string
}

func (e *ErrOfferRejected) Error() string {
	return e.Message
}

// ErrCarrierUnavailable indicates the carrier backend could not serve a call.
// It never leaves the carrier gateway: every operation recovers by synthesizing
// mock data. It exists so the gateway can log why it fell back.
type ErrCarrierUnavailable struct {
	Operation string
	Cause     error
}

func (e *ErrCarrierUnavailable) Error() string {
	return fmt.Sprintf("carrier %s failed: %v", e.Operation, e.Cause)
}

func (e *ErrCarrierUnavailable) Unwrap() error {
	return e.Cause
}

// ErrPaymentProvider is an opaque pass-through from the payment boundary
type ErrPaymentProvider struct {
	Cause error
}

func (e *ErrPaymentProvider) Error() string {
	return fmt.Sprintf("payment provider error: %v", e.Cause)
}

func (e *ErrPaymentProvider) Unwrap() error {
	return e.Cause
}
