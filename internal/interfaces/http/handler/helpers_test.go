package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/auth"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

// asUser stands in for the JWT middleware
func asUser(id uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := &auth.Claims{UserID: id.String(), Email: "owner@example.com", Role: role, TokenType: auth.TokenTypeAccess}
		claims.ID = uuid.NewString()
		c.Set(middleware.JWTClaimsKey, claims)
		c.Set(middleware.JWTUserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(shared.WithActor(c.Request.Context(), shared.Actor{UserID: id, Role: role}))
		c.Next()
	}
}

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	middleware.SetupValidator()
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(mw...)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

// dataAs re-decodes the data member of a response into out
func dataAs(t *testing.T, resp dto.Response, out any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}
