package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adfinitum/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone_number" binding:"omitempty,phone_ke"`
	Quantity int    `json:"quantity" binding:"omitempty,min=1"`
}

func bindRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func detailsByField(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-42", resp.Error.RequestID)
	out := make(map[string]string, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		out[d.Field] = d.Message
	}
	return out
}

func TestValidationErrorShape(t *testing.T) {
	router := bindRouter()

	w := postJSON(router, `{"email":"nope","password":"short","phone_number":"12345","quantity":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	details := detailsByField(t, w)
	assert.Equal(t, "Enter a valid email address.", details["email"])
	assert.Equal(t, "Ensure this field has at least 8 characters.", details["password"])
	assert.Equal(t, "Enter a valid Safaricom phone number.", details["phone_number"])
	assert.Equal(t, "Ensure this value is greater than or equal to 1.", details["quantity"])
}

func TestValidationRequiredFields(t *testing.T) {
	w := postJSON(bindRouter(), `{}`)
	details := detailsByField(t, w)
	assert.Equal(t, "This field is required.", details["email"])
	assert.Equal(t, "This field is required.", details["password"])
	assert.NotContains(t, details, "phone_number")
}

func TestValidationMalformedJSON(t *testing.T) {
	w := postJSON(bindRouter(), `{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := detailsByField(t, w)
	assert.Contains(t, details, "non_field_errors")
}

func TestValidationPhoneFormats(t *testing.T) {
	router := bindRouter()
	for _, phone := range []string{"0712345678", "+254712345678", "254112345678", "712345678"} {
		w := postJSON(router, `{"email":"a@b.co","password":"longenough","phone_number":"`+phone+`"}`)
		assert.Equal(t, http.StatusOK, w.Code, phone)
	}
}
