package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(l *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-42")
		c.Next()
	})
	r.Use(Recovery(l), GinMiddleware(l))
	return r
}

func TestGinMiddleware_LevelsAndFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	r := newTestRouter(zap.New(core))
	r.GET("/cart", func(c *gin.Context) {
		c.Set(GinSessionIDKey, "guest-1")
		assert.NotNil(t, FromContext(c.Request.Context()))
		c.JSON(http.StatusOK, gin.H{})
	})
	r.GET("/orders", func(c *gin.Context) {
		c.Set(GinUserIDKey, "user-1")
		c.JSON(http.StatusForbidden, gin.H{})
	})

	for _, path := range []string{"/cart", "/orders"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	logs := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, logs, 2)

	assert.Equal(t, zapcore.InfoLevel, logs[0].Level)
	assert.Equal(t, "guest-1", logs[0].ContextMap()["session_id"])
	assert.Equal(t, "req-42", logs[0].ContextMap()["request_id"])

	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
	assert.Equal(t, "user-1", logs[1].ContextMap()["user_id"])
}

func TestRecovery_WritesEnvelope(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	r := newTestRouter(zap.New(core))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"ERR_INTERNAL","message":"An unexpected error occurred","request_id":"req-42"}}`, w.Body.String())
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}
