package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aaeducates/backend/internal/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// StripeGateway calls the Stripe Checkout Sessions API through stripe-go
type StripeGateway struct {
	sessions session.Client
	log      zerolog.Logger
}

// NewStripeGateway creates a Stripe gateway. An empty baseURL selects the public API.
func NewStripeGateway(secretKey, baseURL string, timeout time.Duration) *StripeGateway {
	if baseURL == "" {
		baseURL = stripe.APIURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	log := logger.Component("stripe")

	// Checkout creation is not retried; a failed verify is retried by the client.
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(strings.TrimRight(baseURL, "/")),
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     stripeLogger{log: log},
	})

	return &StripeGateway{
		sessions: session.Client{B: backend, Key: secretKey},
		log:      log,
	}
}

// CreateCheckoutSession creates a one-line-item payment session
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*Session, error) {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(params.ProductName),
	}
	if params.Description != "" {
		product.Description = stripe.String(params.Description)
	}

	sp := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(strings.ToLower(params.Currency)),
				UnitAmount:  stripe.Int64(MinorUnits(params.Amount)),
				ProductData: product,
			},
		}},
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	sp.Context = ctx
	for k, v := range params.Metadata {
		sp.AddMetadata(k, v)
	}

	out, err := g.sessions.New(sp)
	if err != nil {
		return nil, g.translate(err, "create")
	}
	g.log.Info().Str("sessionID", out.ID).Msg("Checkout session created")
	return fromStripe(out), nil
}

// RetrieveSession fetches the current state of a session
func (g *StripeGateway) RetrieveSession(ctx context.Context, id string) (*Session, error) {
	sp := &stripe.CheckoutSessionParams{}
	sp.Context = ctx

	out, err := g.sessions.Get(id, sp)
	if err != nil {
		return nil, g.translate(err, "retrieve")
	}
	return fromStripe(out), nil
}

// translate maps stripe-go errors onto the gateway's error values
func (g *StripeGateway) translate(err error, op string) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return fmt.Errorf("provider request failed: %w", err)
	}
	if se.HTTPStatusCode == http.StatusNotFound || se.Code == stripe.ErrorCodeResourceMissing {
		return ErrSessionNotFound
	}

	msg := se.Msg
	if msg == "" {
		msg = http.StatusText(se.HTTPStatusCode)
	}
	g.log.Warn().
		Int("status", se.HTTPStatusCode).
		Str("op", op).
		Str("code", string(se.Code)).
		Str("error", msg).
		Msg("Provider rejected request")
	return &Error{StatusCode: se.HTTPStatusCode, Message: msg}
}

func fromStripe(s *stripe.CheckoutSession) *Session {
	return &Session{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
	}
}

// stripeLogger routes stripe-go's own logging into zerolog
type stripeLogger struct {
	log zerolog.Logger
}

func (l stripeLogger) Debugf(format string, v ...interface{}) { l.log.Debug().Msgf(format, v...) }
func (l stripeLogger) Infof(format string, v ...interface{})  { l.log.Debug().Msgf(format, v...) }
func (l stripeLogger) Warnf(format string, v ...interface{})  { l.log.Warn().Msgf(format, v...) }
func (l stripeLogger) Errorf(format string, v ...interface{}) { l.log.Error().Msgf(format, v...) }
