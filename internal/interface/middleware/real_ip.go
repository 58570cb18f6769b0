package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// proxyHeaders are consulted in order; for lists the left-most entry wins.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

// RealIP stores the client IP under "real_ip", preferring proxy headers over
// the socket address.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", clientIP(c))
		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	for _, h := range proxyHeaders {
		v := c.GetHeader(h)
		if v == "" {
			continue
		}
		first := strings.TrimSpace(strings.SplitN(v, ",", 2)[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip.String()
		}
	}
	return c.ClientIP()
}
