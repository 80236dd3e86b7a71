package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIPAllowList(t *testing.T) {
	list, rejected := ParseIPAllowList([]string{"127.0.0.1", " 10.0.0.0/8 ", "::1", "", "not-an-ip", "10.0.0.0/40"})

	assert.Equal(t, []string{"not-an-ip", "10.0.0.0/40"}, rejected)
	require.False(t, list.Empty())

	tests := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"127.0.0.2", false},
		{"10.20.30.40", true},
		{"11.0.0.1", false},
		{"::1", true},
		{"::ffff:10.1.2.3", true},
		{"garbage", false},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.want, list.Allows(tt.ip))
		})
	}
}

func TestIPAllowList_EmptyAllowsEveryone(t *testing.T) {
	var list IPAllowList
	assert.True(t, list.Empty())
	assert.True(t, list.Allows("203.0.113.9"))
	assert.True(t, list.Allows(""))
}

func TestRestrictToIPs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	list, _ := ParseIPAllowList([]string{"192.168.0.0/16"})

	router := gin.New()
	router.GET("/metrics", RestrictToIPs(list, "Metrics are restricted"), func(c *gin.Context) {
		c.String(http.StatusOK, "adf_orders_total 3")
	})

	serve := func(remote string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.RemoteAddr = remote
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, serve("192.168.4.20:9100").Code)

	w := serve("8.8.8.8:9100")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_FORBIDDEN")
	assert.Contains(t, w.Body.String(), "Metrics are restricted")
}

func TestSwaggerProtection(t *testing.T) {
	gin.SetMode(gin.TestMode)

	deny := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	allow := func(c *gin.Context) {
		c.Set(JWTUserIDKey, "00000000-0000-0000-0000-000000000001")
	}

	tests := []struct {
		name   string
		cfg    SwaggerConfig
		auth   gin.HandlerFunc
		remote string
		want   int
		body   string
	}{
		{
			name: "disabled",
			cfg:  SwaggerConfig{Enabled: false},
			want: http.StatusNotFound,
			body: "ERR_NOT_FOUND",
		},
		{
			name: "open",
			cfg:  SwaggerConfig{Enabled: true},
			want: http.StatusOK,
		},
		{
			name:   "ip allowed",
			cfg:    SwaggerConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1"}},
			remote: "127.0.0.1:5000",
			want:   http.StatusOK,
		},
		{
			name:   "ip outside range",
			cfg:    SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}},
			remote: "172.16.0.1:5000",
			want:   http.StatusForbidden,
			body:   "ERR_FORBIDDEN",
		},
		{
			name: "auth required and refused",
			cfg:  SwaggerConfig{Enabled: true, RequireAuth: true},
			auth: deny,
			want: http.StatusUnauthorized,
		},
		{
			name: "auth required and granted",
			cfg:  SwaggerConfig{Enabled: true, RequireAuth: true},
			auth: allow,
			want: http.StatusOK,
		},
		{
			name:   "ip checked before auth",
			cfg:    SwaggerConfig{Enabled: true, RequireAuth: true, AllowedIPs: []string{"127.0.0.1"}},
			auth:   allow,
			remote: "192.168.1.1:5000",
			want:   http.StatusForbidden,
		},
		{
			name: "auth required without authenticator",
			cfg:  SwaggerConfig{Enabled: true, RequireAuth: true},
			want: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/swagger/*any", SwaggerProtection(tt.cfg, tt.auth), func(c *gin.Context) {
				c.String(http.StatusOK, "docs")
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
			if tt.remote != "" {
				req.RemoteAddr = tt.remote
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.body != "" {
				assert.Contains(t, w.Body.String(), tt.body)
			}
		})
	}
}
