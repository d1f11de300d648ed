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

func TestRecordDecision(t *testing.T) {
	before := testutil.ToFloat64(travelRequestDecisions.WithLabelValues("approved"))
	RecordDecision("approved")
	RecordDecision("approved")
	assert.Equal(t, before+2, testutil.ToFloat64(travelRequestDecisions.WithLabelValues("approved")))
}

func TestInstrumentUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Instrument())
	r.GET("/api/travel-requests/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/travel-requests/:id", "204"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/travel-requests/abc", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/travel-requests/:id", "204")))
	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}
