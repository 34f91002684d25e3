package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/infrastructure/auth"
	"github.com/ledgerbook/backend/internal/infrastructure/config"
	"github.com/ledgerbook/backend/internal/interfaces/http/handler"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The handlers below have no services behind them; every request in these
// tests is settled by middleware or binding before a service is reached.
func newAPI(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "router-test-secret-at-least-32-chars",
		RefreshSecret:          "router-test-refresh-secret-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "ledgerbook-test",
	})

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	RegisterAPI(engine, Handlers{
		System:      handler.NewSystemHandler("ledgerbook", "test", nil),
		Auth:        handler.NewAuthHandler(nil),
		User:        handler.NewUserHandler(nil),
		ActivityLog: handler.NewActivityLogHandler(nil),
		Customer:    handler.NewCustomerHandler(nil, nil),
		Project:     handler.NewProjectHandler(nil),
		Invoice:     handler.NewInvoiceHandler(nil),
		Payment:     handler.NewPaymentHandler(nil),
		Partner:     handler.NewPartnerHandler(nil),
		Expense:     handler.NewExpenseHandler(nil),
		Category:    handler.NewCategoryHandler(nil),
		Transaction: handler.NewTransactionHandler(nil),
		Report:      handler.NewReportHandler(nil),
		File:        handler.NewFileHandler(nil),
	}, APIConfig{
		Authenticate: middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{JWTService: jwtService}),
		MaxBodySize:  1 << 10,
	})
	return engine, jwtService
}

func bearer(t *testing.T, svc *auth.JWTService, role string) string {
	t.Helper()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Email: "owner@example.com", Role: role})
	require.NoError(t, err)
	return middleware.BearerPrefix + pair.AccessToken
}

func send(engine http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRegisterAPI_Routes(t *testing.T) {
	engine, _ := newAPI(t)

	registered := map[string]bool{}
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	want := []string{
		"GET /health",
		"POST /api/v1/auth/login", "POST /api/v1/auth/refresh", "POST /api/v1/auth/logout",
		"GET /api/v1/auth/me", "PUT /api/v1/auth/password",
		"GET /api/v1/customers", "POST /api/v1/customers", "GET /api/v1/customers/summaries",
		"GET /api/v1/customers/:id", "PUT /api/v1/customers/:id", "DELETE /api/v1/customers/:id",
		"GET /api/v1/customers/:id/summary", "POST /api/v1/customers/:id/activate", "POST /api/v1/customers/:id/deactivate",
		"GET /api/v1/projects", "POST /api/v1/projects", "GET /api/v1/projects/:id", "PUT /api/v1/projects/:id",
		"PUT /api/v1/projects/:id/status", "DELETE /api/v1/projects/:id",
		"GET /api/v1/invoices", "POST /api/v1/invoices", "GET /api/v1/invoices/:id", "PUT /api/v1/invoices/:id", "DELETE /api/v1/invoices/:id",
		"GET /api/v1/payments", "POST /api/v1/payments", "GET /api/v1/payments/:id", "PUT /api/v1/payments/:id", "DELETE /api/v1/payments/:id",
		"GET /api/v1/partners", "POST /api/v1/partners", "GET /api/v1/partners/summaries", "GET /api/v1/partners/:id",
		"PUT /api/v1/partners/:id", "DELETE /api/v1/partners/:id", "GET /api/v1/partners/:id/summary",
		"GET /api/v1/partner-expenses", "POST /api/v1/partner-expenses", "GET /api/v1/partner-expenses/:id",
		"PUT /api/v1/partner-expenses/:id", "DELETE /api/v1/partner-expenses/:id", "POST /api/v1/partner-expenses/:id/reimburse",
		"GET /api/v1/categories", "POST /api/v1/categories", "GET /api/v1/categories/:id", "PUT /api/v1/categories/:id", "DELETE /api/v1/categories/:id",
		"GET /api/v1/transactions", "POST /api/v1/transactions", "GET /api/v1/transactions/:id", "PUT /api/v1/transactions/:id", "DELETE /api/v1/transactions/:id",
		"GET /api/v1/reports/profit", "GET /api/v1/reports/monthly", "GET /api/v1/reports/categories", "GET /api/v1/reports/dashboard",
		"GET /api/v1/files", "POST /api/v1/files", "GET /api/v1/files/:id", "DELETE /api/v1/files/:id",
		"GET /api/v1/files/:id/url", "GET /api/v1/files/:id/content",
		"GET /api/v1/activity-logs",
		"GET /api/v1/users", "POST /api/v1/users", "GET /api/v1/users/:id", "PUT /api/v1/users/:id", "DELETE /api/v1/users/:id",
		"PUT /api/v1/users/:id/role", "POST /api/v1/users/:id/activate", "POST /api/v1/users/:id/deactivate",
		"POST /api/v1/users/:id/reset-password",
		"GET /api/v1/system/info",
	}
	for _, route := range want {
		assert.True(t, registered[route], "missing route %s", route)
	}
	assert.Len(t, registered, len(want))
}

func TestRegisterAPI_Access(t *testing.T) {
	engine, jwtService := newAPI(t)
	userToken := bearer(t, jwtService, "user")
	adminToken := bearer(t, jwtService, "admin")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{"health is public", http.MethodGet, "/health", "", "", http.StatusOK},
		{"login is public", http.MethodPost, "/api/v1/auth/login", "", "{", http.StatusBadRequest},
		{"refresh is public", http.MethodPost, "/api/v1/auth/refresh", "", "{", http.StatusBadRequest},
		{"me needs a token", http.MethodGet, "/api/v1/auth/me", "", "", http.StatusUnauthorized},
		{"customers need a token", http.MethodGet, "/api/v1/customers", "", "", http.StatusUnauthorized},
		{"files need a token", http.MethodGet, "/api/v1/files", "", "", http.StatusUnauthorized},
		{"users need a token", http.MethodGet, "/api/v1/users", "", "", http.StatusUnauthorized},
		{"users are admin only", http.MethodGet, "/api/v1/users", userToken, "", http.StatusForbidden},
		{"admin passes the role check", http.MethodPost, "/api/v1/users", adminToken, "{", http.StatusBadRequest},
		{"user reaches customers", http.MethodPost, "/api/v1/customers", userToken, "{", http.StatusBadRequest},
		{"json bodies are capped", http.MethodPost, "/api/v1/customers", userToken,
			`{"name": "` + strings.Repeat("x", 2<<10) + `"}`, http.StatusRequestEntityTooLarge},
		{"system info needs a token", http.MethodGet, "/api/v1/system/info", "", "", http.StatusUnauthorized},
		{"system info", http.MethodGet, "/api/v1/system/info", userToken, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := send(engine, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRegisterAPI_AuthRateLimit(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "router-test-secret-at-least-32-chars",
		RefreshSecret:          "router-test-refresh-secret-32-chars",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
	})
	engine := gin.New()
	limiter := middleware.NewRateLimiter(2, time.Minute)
	RegisterAPI(engine, Handlers{
		System:      handler.NewSystemHandler("ledgerbook", "test", nil),
		Auth:        handler.NewAuthHandler(nil),
		User:        handler.NewUserHandler(nil),
		ActivityLog: handler.NewActivityLogHandler(nil),
		Customer:    handler.NewCustomerHandler(nil, nil),
		Project:     handler.NewProjectHandler(nil),
		Invoice:     handler.NewInvoiceHandler(nil),
		Payment:     handler.NewPaymentHandler(nil),
		Partner:     handler.NewPartnerHandler(nil),
		Expense:     handler.NewExpenseHandler(nil),
		Category:    handler.NewCategoryHandler(nil),
		Transaction: handler.NewTransactionHandler(nil),
		Report:      handler.NewReportHandler(nil),
		File:        handler.NewFileHandler(nil),
	}, APIConfig{
		Authenticate:  middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{JWTService: jwtService}),
		AuthRateLimit: middleware.RateLimit(limiter),
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusBadRequest, send(engine, http.MethodPost, "/api/v1/auth/login", "", "{").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, send(engine, http.MethodPost, "/api/v1/auth/login", "", "{").Code)
	// Ordinary traffic is not counted against the login budget
	assert.Equal(t, http.StatusOK, send(engine, http.MethodGet, "/health", "", "").Code)
}
