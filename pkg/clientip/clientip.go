package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Well-known proxy headers, in the order GetIP consults them.
const (
	HeaderCFConnectingIP = "CF-Connecting-IP"
	HeaderDOConnectingIP = "DO-Connecting-IP"
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderXRealIP        = "X-Real-IP"
)

// DefaultProxyHeaders is the header list GetIP trusts.
var DefaultProxyHeaders = []string{
	HeaderCFConnectingIP,
	HeaderDOConnectingIP,
	HeaderXForwardedFor,
	HeaderXRealIP,
}

// Resolver extracts the client IP, trusting only the configured headers.
// The zero value uses RemoteAddr alone.
type Resolver struct {
	headers []string
}

// NewResolver returns a Resolver that checks headers in order before RemoteAddr.
// Only list headers set by a proxy you control; clients can send any of them.
//
// X-Forwarded-For yields its right-most valid entry, the address the nearest
// proxy saw. Entries to its left can be forged by the client and are ignored.
func NewResolver(headers ...string) *Resolver {
	return &Resolver{headers: headers}
}

// IP returns the normalized client IP or "" if none could be parsed.
func (res *Resolver) IP(r *http.Request) string {
	for _, h := range res.headers {
		if http.CanonicalHeaderKey(h) == HeaderXForwardedFor {
			if ip := lastForwardedFor(r.Header.Values(h)); ip != "" {
				return ip
			}
			continue
		}
		if parsed := parseIP(r.Header.Get(h)); parsed != "" {
			return parsed
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// GetIP resolves the client IP with DefaultProxyHeaders.
func GetIP(r *http.Request) string {
	return NewResolver(DefaultProxyHeaders...).IP(r)
}

// lastForwardedFor returns the right-most valid address across all
// X-Forwarded-For lines.
func lastForwardedFor(values []string) string {
	entries := strings.Split(strings.Join(values, ","), ",")
	for i := len(entries) - 1; i >= 0; i-- {
		if parsed := parseIP(entries[i]); parsed != "" {
			return parsed
		}
	}
	return ""
}

func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
