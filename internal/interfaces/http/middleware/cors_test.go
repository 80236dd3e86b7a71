package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestOriginMatcher(t *testing.T) {
	m := newOriginMatcher([]string{"https://adfinitum.co.ke/", "https://*.adfinitum.co.ke", " http://localhost:5173 "})

	tests := map[string]bool{
		"https://adfinitum.co.ke":       true,
		"https://admin.adfinitum.co.ke": true,
		"https://a.b.adfinitum.co.ke":   true,
		"http://admin.adfinitum.co.ke":  false,
		"https://evil-adfinitum.co.ke":  false,
		"https://.adfinitum.co.ke":      false,
		"http://localhost:5173":         true,
		"http://localhost:3000":         false,
		"":                              false,
	}
	for origin, want := range tests {
		assert.Equal(t, want, m.allows(origin), origin)
	}

	assert.True(t, newOriginMatcher(nil).empty())
	assert.True(t, newOriginMatcher([]string{"*"}).allows("https://anything.example"))
}

func serveCORS(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/api/v1/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/api/v1/products", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSWithConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://shop.example.com"}

	t.Run("allowed origin", func(t *testing.T) {
		w := serveCORS(cfg, http.MethodGet, "https://shop.example.com")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), SessionIDHeader)
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), SessionIDHeader)
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("unknown origin still served without headers", func(t *testing.T) {
		w := serveCORS(cfg, http.MethodGet, "https://evil.example.com")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := serveCORS(cfg, http.MethodOptions, "https://shop.example.com")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	})

	t.Run("preflight from unknown origin", func(t *testing.T) {
		w := serveCORS(cfg, http.MethodOptions, "https://evil.example.com")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWithConfig_Wildcard(t *testing.T) {
	gin.SetMode(gin.TestMode)

	withCreds := DefaultCORSConfig()
	withCreds.AllowOrigins = []string{"*"}
	w := serveCORS(withCreds, http.MethodGet, "https://any.example")
	assert.Equal(t, "https://any.example", w.Header().Get("Access-Control-Allow-Origin"))

	anonymous := withCreds
	anonymous.AllowCredentials = false
	w = serveCORS(anonymous, http.MethodGet, "https://any.example")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_DefaultAllowsNoOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS())
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Vary"))
}
