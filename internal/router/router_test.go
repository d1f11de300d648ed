package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"travelapproval/internal/config"
	"travelapproval/internal/handler"
	"travelapproval/internal/middleware"
	"travelapproval/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: []byte("router-secret"), CORSOrigins: []string{"http://localhost:5173"}}
	auth := middleware.NewAuth(cfg)

	// Services are never reached: every request below stops at a guard or an ops route.
	handlers := &Handlers{
		User:          handler.NewUserHandler(nil, auth, middleware.NewMemoryRateLimiter(10)),
		TravelRequest: handler.NewTravelRequestHandler(nil, auth),
		Approval:      handler.NewApprovalHandler(nil, auth),
		Notification:  handler.NewNotificationHandler(nil, auth),
		Audit:         handler.NewAuditHandler(nil, auth),
		Project:       handler.NewProjectHandler(nil, auth),
		TAccount:      handler.NewTAccountHandler(nil, auth),
		Report:        handler.NewReportHandler(nil, auth),
	}
	return New(cfg, auth, websocket.NewHub(), handlers)
}

func TestOpsRoutes(t *testing.T) {
	r := newTestEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestEngine()

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/me"},
		{http.MethodPost, "/api/travel-requests"},
		{http.MethodGet, "/api/approvals"},
		{http.MethodGet, "/api/notifications"},
		{http.MethodGet, "/api/audit-logs"},
		{http.MethodGet, "/api/admin/projects"},
		{http.MethodGet, "/api/admin/taccounts"},
		{http.MethodGet, "/api/reports/export"},
		{http.MethodGet, "/ws"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestEngine()

	req := httptest.NewRequest(http.MethodOptions, "/api/travel-requests", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
