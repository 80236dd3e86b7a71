package middleware

import (
	"context"
	"strings"

	"github.com/adfinitum/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Caller classes used as the profiling "caller" label
const (
	CallerAdmin     = "admin"
	CallerCustomer  = "customer"
	CallerGuest     = "guest"
	CallerAnonymous = "anonymous"
)

// ProfilingConfig selects which requests get Pyroscope labels.
type ProfilingConfig struct {
	Enabled bool
	// Skip lists exact paths or, with a trailing '*', path prefixes.
	Skip []string
}

// DefaultProfilingConfig leaves out health checks, scrapes and the docs UI.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled: true,
		Skip:    []string{"/health", "/metrics", "/swagger/*"},
	}
}

// Profiling labels samples with area, route, method and caller so the
// flame graph can be sliced by "checkout for customers" or "admin analytics".
// Mount it after authentication so the caller is known.
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig is Profiling with explicit settings.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if skipPath(cfg.Skip, c.Request.URL.Path) {
			c.Next()
			return
		}
		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// ProfilingAttributeInjector is Profiling under the name main uses next to
// TracingAttributeInjector.
func ProfilingAttributeInjector() gin.HandlerFunc {
	return Profiling()
}

func skipPath(patterns []string, path string) bool {
	for _, p := range patterns {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		} else if p == path {
			return true
		}
	}
	return false
}

func profilingLabels(c *gin.Context) map[string]string {
	route := c.FullPath()
	return map[string]string{
		telemetry.ProfilingLabelMethod: c.Request.Method,
		telemetry.ProfilingLabelRoute:  route,
		telemetry.ProfilingLabelArea:   apiArea(route),
		telemetry.ProfilingLabelCaller: callerClass(c),
	}
}

// apiArea is the first resource segment of a route pattern:
// "/api/v1/orders/:id/history" gives "orders".
func apiArea(route string) string {
	segments := strings.Split(strings.Trim(route, "/"), "/")
	for i, seg := range segments {
		if seg == "" || strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "*") {
			continue
		}
		if i == 0 && seg == "api" {
			continue
		}
		if i == 1 && segments[0] == "api" && isVersionSegment(seg) {
			continue
		}
		return seg
	}
	return ""
}

func isVersionSegment(seg string) bool {
	if len(seg) < 2 || (seg[0] != 'v' && seg[0] != 'V') {
		return false
	}
	return strings.Trim(seg[1:], "0123456789") == ""
}

// callerClass keeps the label to four values regardless of user count.
func callerClass(c *gin.Context) string {
	switch {
	case GetJWTUserID(c) != "" && CanManage(c):
		return CallerAdmin
	case GetJWTUserID(c) != "":
		return CallerCustomer
	case c.GetHeader(SessionIDHeader) != "":
		return CallerGuest
	default:
		return CallerAnonymous
	}
}
