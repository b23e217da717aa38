package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientIP returns the first X-Forwarded-For entry when present, otherwise
// gin's ClientIP with RemoteAddr as the last resort
func ClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}

// ipMatcher matches addresses against single IPs and CIDR ranges
type ipMatcher struct {
	ips  []net.IP
	nets []*net.IPNet
}

// newIPMatcher parses entries, skipping the ones that are neither an IP nor a CIDR
func newIPMatcher(entries []string) *ipMatcher {
	m := &ipMatcher{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				m.nets = append(m.nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			m.ips = append(m.ips, ip)
		}
	}
	return m
}

func (m *ipMatcher) allows(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, allowed := range m.ips {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range m.nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
