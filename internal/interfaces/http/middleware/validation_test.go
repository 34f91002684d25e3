package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bindTarget struct {
	Email  string `json:"email" binding:"required,email"`
	Amount int    `json:"amount" binding:"required,min=1"`
}

func newBindRouter() *gin.Engine {
	SetupValidator()
	r := gin.New()
	r.Use(RequestID())
	r.POST("/test", BodyLimit(256), func(c *gin.Context) {
		var req bindTarget
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func postJSON(r http.Handler, body string) (*httptest.ResponseRecorder, dto.Response) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "req-validation")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp dto.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	r := newBindRouter()

	t.Run("field errors use json names", func(t *testing.T) {
		w, resp := postJSON(r, `{"email": "invalid", "amount": 0}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-validation", resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 2)

		fields := []string{resp.Error.Details[0].Field, resp.Error.Details[1].Field}
		assert.ElementsMatch(t, []string{"email", "amount"}, fields)
	})

	t.Run("malformed json", func(t *testing.T) {
		w, resp := postJSON(r, `{"email": `)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		w, resp := postJSON(r, ``)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})

	t.Run("wrong type", func(t *testing.T) {
		w, resp := postJSON(r, `{"email": "a@b.co", "amount": "ten"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "amount", resp.Error.Details[0].Field)
	})

	t.Run("body over the limit while streaming", func(t *testing.T) {
		body := `{"email": "a@b.co", "amount": 1, "pad": "` + strings.Repeat("x", 512) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = -1
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("valid input", func(t *testing.T) {
		w, _ := postJSON(r, `{"email": "a@b.co", "amount": 5}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type target struct {
		Required string `binding:"required"`
		Email    string `binding:"email"`
		MinStr   string `binding:"min=3"`
		MaxStr   string `binding:"max=2"`
		MinInt   int    `binding:"min=5"`
		OneOf    string `binding:"oneof=income expense"`
		Len      string `binding:"len=3"`
		UUID     string `binding:"uuid"`
	}

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	err := v.Struct(target{Email: "x", MinStr: "a", MaxStr: "abc", MinInt: 1, OneOf: "other", Len: "ab", UUID: "nope"})
	require.Error(t, err)

	messages := map[string]string{}
	for _, fe := range err.(validator.ValidationErrors) {
		messages[fe.StructField()] = getValidationMessage(fe)
	}

	assert.Equal(t, "This field is required", messages["Required"])
	assert.Equal(t, "Invalid email format", messages["Email"])
	assert.Equal(t, "Must be at least 3 characters", messages["MinStr"])
	assert.Equal(t, "Must be at most 2 characters", messages["MaxStr"])
	assert.Equal(t, "Must be at least 5", messages["MinInt"])
	assert.Equal(t, "Must be one of: income expense", messages["OneOf"])
	assert.Equal(t, "Must be exactly 3 characters", messages["Len"])
	assert.Equal(t, "Invalid UUID format", messages["UUID"])
}

func TestCurrencyCodeValidation(t *testing.T) {
	SetupValidator()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	type target struct {
		Currency string `binding:"omitempty,currency_code"`
	}

	assert.NoError(t, v.Struct(target{Currency: "EUR"}))
	assert.NoError(t, v.Struct(target{}))
	assert.Error(t, v.Struct(target{Currency: "eur"}))
	assert.Error(t, v.Struct(target{Currency: "EURO"}))
	assert.Error(t, v.Struct(target{Currency: "E1R"}))
}
