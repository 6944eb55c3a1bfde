package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// rateKey identifies a caller for rate limiting. Wizard clients send
// X-Device-ID, which stays stable behind shared NATs; everyone else is keyed
// by the first forwarded address.
func rateKey(c *gin.Context) string {
	if device := strings.TrimSpace(c.GetHeader("X-Device-ID")); device != "" {
		return "device:" + device
	}
	return "ip:" + clientIP(c)
}

func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if first, _, _ := strings.Cut(xff, ","); strings.TrimSpace(first) != "" {
			return strings.TrimSpace(first)
		}
	}
	if xri := strings.TrimSpace(c.GetHeader("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}
