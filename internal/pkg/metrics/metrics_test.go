package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/skills/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", m.Handler())

	for _, path := range []string{"/skills/1", "/skills/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/skills/:id", "GET", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("unmatched", "GET", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/skills/:id",status="204"} 2`)
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.IncrementUsersRegistered()
	m.IncrementCheckouts("WORKBOOK")
	m.IncrementCheckouts("WORKBOOK")
	m.IncrementWorkbookPurchases()
	m.IncrementAccessDenied("skills", "create")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UsersRegistered))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CheckoutsCreated.WithLabelValues("WORKBOOK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WorkbooksPurchase))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessDenied.WithLabelValues("skills", "create")))

	// A nil collector is a no-op
	var none *Metrics
	assert.NotPanics(t, func() {
		none.IncrementUsersRegistered()
		none.IncrementAccessDenied("skills", "create")
	})
}
