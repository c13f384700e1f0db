package payments

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// SandboxGateway is an in-process gateway for local runs and tests.
// Sessions stay open and unpaid until MarkPaid or Expire is called.
type SandboxGateway struct {
	mu       sync.Mutex
	baseURL  string
	sessions map[string]*Session
	failNext string
}

// NewSandboxGateway creates a sandbox gateway whose checkout URLs live under baseURL
func NewSandboxGateway(baseURL string) *SandboxGateway {
	return &SandboxGateway{
		baseURL:  strings.TrimRight(baseURL, "/"),
		sessions: make(map[string]*Session),
	}
}

// CreateCheckoutSession records a new open session
func (g *SandboxGateway) CreateCheckoutSession(_ context.Context, params CheckoutParams) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if msg := g.failNext; msg != "" {
		g.failNext = ""
		return nil, &Error{StatusCode: 400, Message: msg}
	}

	id := "cs_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	metadata := make(map[string]string, len(params.Metadata))
	for k, v := range params.Metadata {
		metadata[k] = v
	}
	s := &Session{
		ID:            id,
		URL:           g.baseURL + "/checkout/" + id,
		Status:        StatusOpen,
		PaymentStatus: PaymentUnpaid,
		Metadata:      metadata,
	}
	g.sessions[id] = s
	copied := *s
	return &copied, nil
}

// RetrieveSession returns a copy of a recorded session
func (g *SandboxGateway) RetrieveSession(_ context.Context, id string) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

// MarkPaid completes a session as paid
func (g *SandboxGateway) MarkPaid(id string) bool {
	return g.set(id, StatusComplete, PaymentPaid)
}

// Expire closes a session without payment
func (g *SandboxGateway) Expire(id string) bool {
	return g.set(id, StatusExpired, PaymentUnpaid)
}

// FailNext makes the next checkout creation fail with msg
func (g *SandboxGateway) FailNext(msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failNext = msg
}

func (g *SandboxGateway) set(id, status, paymentStatus string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.sessions[id]
	if !ok {
		return false
	}
	s.Status = status
	s.PaymentStatus = paymentStatus
	return true
}
