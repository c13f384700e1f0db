package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), MinorUnits(19.99))
	assert.Equal(t, int64(1000), MinorUnits(10))
	assert.Equal(t, int64(0), MinorUnits(-3))
}

func TestSandboxGatewayLifecycle(t *testing.T) {
	ctx := context.Background()
	g := NewSandboxGateway("http://localhost:3000/sandbox-checkout/")

	meta := map[string]string{"workbook_id": "4"}
	s, err := g.CreateCheckoutSession(ctx, CheckoutParams{Amount: 12.5, Currency: "GBP", Metadata: meta})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s.ID, "cs_test_"))
	assert.Equal(t, "http://localhost:3000/sandbox-checkout/checkout/"+s.ID, s.URL)
	assert.Equal(t, StatusOpen, s.Status)
	assert.Equal(t, PaymentUnpaid, s.PaymentStatus)

	// The caller's metadata map is copied
	meta["workbook_id"] = "9"
	got, err := g.RetrieveSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "4", got.Metadata["workbook_id"])

	require.True(t, g.MarkPaid(s.ID))
	got, err = g.RetrieveSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Equal(t, PaymentPaid, got.PaymentStatus)

	require.True(t, g.Expire(s.ID))
	assert.False(t, g.MarkPaid("cs_unknown"))

	_, err = g.RetrieveSession(ctx, "cs_unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	g.FailNext("Amount too small")
	_, err = g.CreateCheckoutSession(ctx, CheckoutParams{Amount: 0.1})
	pe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Amount too small", pe.Message)

	_, err = g.CreateCheckoutSession(ctx, CheckoutParams{Amount: 1})
	assert.NoError(t, err)
}

func TestStripeGatewayCreateAndRetrieve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer sk_test_123" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid API Key provided"}}`))
			return
		}

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions":
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "payment", r.PostForm.Get("mode"))
			assert.Equal(t, "card", r.PostForm.Get("payment_method_types[0]"))
			assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
			assert.Equal(t, "gbp", r.PostForm.Get("line_items[0][price_data][currency]"))
			assert.Equal(t, "1999", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
			assert.Equal(t, "Algebra", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
			assert.Equal(t, "4", r.PostForm.Get("metadata[workbook_id]"))
			w.Write([]byte(`{"id":"cs_1","url":"https://checkout.test/cs_1","status":"open","payment_status":"unpaid","metadata":{"workbook_id":"4"}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/checkout/sessions/cs_1":
			w.Write([]byte(`{"id":"cs_1","status":"complete","payment_status":"paid"}`))
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such checkout.session"}}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid request"}}`))
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	g := NewStripeGateway("sk_test_123", srv.URL+"/", 5*time.Second)

	s, err := g.CreateCheckoutSession(ctx, CheckoutParams{
		Amount:      19.99,
		Currency:    "GBP",
		ProductName: "Algebra",
		SuccessURL:  "http://localhost:3000/success",
		CancelURL:   "http://localhost:3000/cancel",
		Metadata:    map[string]string{"workbook_id": "4"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", s.ID)
	assert.Equal(t, "https://checkout.test/cs_1", s.URL)
	assert.Equal(t, "4", s.Metadata["workbook_id"])

	s, err = g.RetrieveSession(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, s.Status)
	assert.Equal(t, PaymentPaid, s.PaymentStatus)

	_, err = g.RetrieveSession(ctx, "cs_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	wrongKey := NewStripeGateway("sk_test_other", srv.URL, 5*time.Second)
	_, err = wrongKey.RetrieveSession(ctx, "cs_1")
	pe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	assert.Equal(t, "Invalid API Key provided", pe.Message)
}

func TestStripeGatewayProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/checkout/sessions":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Amount must be at least 30 pence","code":"amount_too_small"}}`))
		case "/v1/checkout/sessions/cs_1":
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"error":{"type":"api_error"}}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`upstream down`))
		}
	}))
	defer srv.Close()

	g := NewStripeGateway("sk_test_123", srv.URL, time.Second)

	_, err := g.CreateCheckoutSession(context.Background(), CheckoutParams{Amount: 0.1, Currency: "GBP"})
	pe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
	assert.Equal(t, "Amount must be at least 30 pence", pe.Message)

	_, err = g.RetrieveSession(context.Background(), "cs_1")
	pe, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, pe.StatusCode)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), pe.Message)

	// a body that is not a provider error is a transport failure
	_, err = g.RetrieveSession(context.Background(), "cs_2")
	require.Error(t, err)
	_, ok = AsError(err)
	assert.False(t, ok)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}
