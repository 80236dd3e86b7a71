package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/adfinitum/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// IPAllowList matches client addresses against single IPs and CIDR ranges.
// The zero value allows everyone.
type IPAllowList struct {
	prefixes []netip.Prefix
}

// ParseIPAllowList accepts "10.0.0.7" and "10.0.0.0/8" style entries.
// Entries that do not parse are returned so the caller can log them.
func ParseIPAllowList(entries []string) (IPAllowList, []string) {
	var list IPAllowList
	var rejected []string
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				rejected = append(rejected, raw)
				continue
			}
			list.prefixes = append(list.prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			rejected = append(rejected, raw)
			continue
		}
		list.prefixes = append(list.prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return list, rejected
}

// Empty reports whether the list restricts nothing.
func (l IPAllowList) Empty() bool { return len(l.prefixes) == 0 }

// Allows reports whether ip is covered by the list. An unparsable ip is
// only allowed by an empty list.
func (l IPAllowList) Allows(ip string) bool {
	if l.Empty() {
		return true
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range l.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// RestrictToIPs rejects clients outside list with 403. gin's ClientIP
// honours the engine's trusted proxies.
func RestrictToIPs(list IPAllowList, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !list.Allows(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, message, getRequestIDFromContext(c)))
			return
		}
		c.Next()
	}
}

// SwaggerConfig guards the /swagger UI.
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	AllowedIPs  []string
}

// SwaggerProtection 404s when docs are disabled, then applies the IP list,
// then runs authenticate when RequireAuth is set.
func SwaggerProtection(cfg SwaggerConfig, authenticate gin.HandlerFunc) gin.HandlerFunc {
	allow, _ := ParseIPAllowList(cfg.AllowedIPs)
	restrict := RestrictToIPs(allow, "Access to API documentation is restricted")

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound, "API documentation is not available", getRequestIDFromContext(c)))
			return
		}
		if !allow.Empty() {
			if restrict(c); c.IsAborted() {
				return
			}
		}
		if cfg.RequireAuth && authenticate != nil {
			if authenticate(c); c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}
