package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context) error {
	if p.err != nil {
		return p.err
	}
	return ctx.Err()
}

func setupSystemRouter(h *SystemHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/api/v1/system/info", h.GetSystemInfo)
	r.GET("/api/v1/system/ping", h.Ping)
	return r
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		w := performRequest(setupSystemRouter(NewSystemHandler(fakePinger{}, "1.2.0")), http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, HealthResponse{Status: "ok", Message: "Adfinitum Backend is running", Database: "ok"}, resp)
	})

	t.Run("database down", func(t *testing.T) {
		h := NewSystemHandler(fakePinger{err: errors.New("connection refused")}, "1.2.0")
		w := performRequest(setupSystemRouter(h), http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, "error", resp.Database)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	w := performRequest(setupSystemRouter(NewSystemHandler(fakePinger{}, "1.2.0")), http.MethodGet, "/api/v1/system/info", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "Adfinitum Backend", data["name"])
	assert.Equal(t, "1.2.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandler_Ping(t *testing.T) {
	w := performRequest(setupSystemRouter(NewSystemHandler(fakePinger{}, "dev")), http.MethodGet, "/api/v1/system/ping", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "pong", data["message"])
	assert.NotEmpty(t, data["timestamp"])
}
