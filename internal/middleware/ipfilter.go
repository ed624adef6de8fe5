package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// parseCIDRs accepts CIDR ranges and bare addresses; invalid entries are skipped.
func parseCIDRs(entries []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			if ip := net.ParseIP(entry); ip != nil {
				bits := 32
				if ip.To4() == nil {
					bits = 128
				}
				entry = ip.String() + "/" + strconv.Itoa(bits)
			}
		}
		if _, ipNet, err := net.ParseCIDR(entry); err == nil {
			nets = append(nets, ipNet)
		}
	}
	return nets
}

func containsIP(nets []*net.IPNet, ip net.IP) bool {
	for _, ipNet := range nets {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// IPFilterMiddleware rejects blocked addresses everywhere. When allowed is
// non-empty, only those ranges may reach paths under adminPrefix.
func IPFilterMiddleware(blocked, allowed []string, adminPrefix string) gin.HandlerFunc {
	blockedNets := parseCIDRs(blocked)
	allowedNets := parseCIDRs(allowed)

	return func(c *gin.Context) {
		clientIP := extractIP(c)
		if clientIP == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}

		if containsIP(blockedNets, clientIP) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}

		if len(allowedNets) > 0 && adminPrefix != "" &&
			strings.HasPrefix(c.Request.URL.Path, adminPrefix) &&
			!containsIP(allowedNets, clientIP) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}

		c.Next()
	}
}

// extractIP extracts the client IP from the request
// Handles X-Forwarded-For header if behind proxy
func extractIP(c *gin.Context) net.IP {
	forwarded := c.GetHeader("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return net.ParseIP(strings.TrimSpace(ips[0]))
	}

	// SplitHostPort handles bracketed IPv6 addresses
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}

	return net.ParseIP(host)
}
