package middleware

import (
	"github.com/gin-gonic/gin"
)

// TrustProxies limits which peers may set X-Forwarded-For and X-Real-IP. With no
// proxies listed the forwarding headers are ignored and the socket peer is used.
func TrustProxies(r *gin.Engine, proxies []string) error {
	if len(proxies) == 0 {
		return r.SetTrustedProxies(nil)
	}
	return r.SetTrustedProxies(proxies)
}

// clientIP is the caller's address as gin resolves it against the trusted proxies.
func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return c.Request.RemoteAddr
}
