// Package payments talks to the hosted checkout provider.
package payments

import (
	"context"
	"errors"
	"fmt"
)

// Session states reported by the provider
const (
	StatusOpen     = "open"
	StatusComplete = "complete"
	StatusExpired  = "expired"

	PaymentPaid   = "paid"
	PaymentUnpaid = "unpaid"
)

// ErrSessionNotFound is returned when the provider does not know a session id
var ErrSessionNotFound = errors.New("checkout session not found")

// CheckoutParams describes one hosted checkout. Amount is in major units.
type CheckoutParams struct {
	Amount      float64
	Currency    string
	ProductName string
	Description string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// Session is the provider's view of a checkout session
type Session struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
	Metadata      map[string]string
}

// Gateway creates and inspects hosted checkout sessions
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*Session, error)
	RetrieveSession(ctx context.Context, id string) (*Session, error)
}

// Error is a failure reported by the provider itself
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("payment provider error (%d): %s", e.StatusCode, e.Message)
}

// AsError extracts a provider error from err
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// MinorUnits converts a major-unit amount to the provider's integer minor units
func MinorUnits(amount float64) int64 {
	if amount < 0 {
		return 0
	}
	return int64(amount*100 + 0.5)
}
