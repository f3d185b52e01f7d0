// Package metadata extracts client IP and browser identity from the request
// and stores them in the context for handlers, services and the analytics
// side channel.
package metadata

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mssola/useragent"

	"evidgate/pkg/requestcontext"
)

// ClientMetadata should be applied early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIPFromRequest(r)
		browser := BrowserFromUserAgent(r.Header.Get("User-Agent"))
		ctx := requestcontext.WithClientMetadata(r.Context(), ip, browser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BrowserFromUserAgent reduces a raw User-Agent header to "Name Major", the
// granularity the analytics events carry.
func BrowserFromUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return "unknown"
	}
	if major, _, found := strings.Cut(version, "."); found || major != "" {
		if _, err := strconv.Atoi(major); err == nil {
			return name + " " + major
		}
	}
	return name
}

// ClientIPFromRequest extracts the real client IP, handling proxies and load
// balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For lists client then each proxy; the first entry is the
	// original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" ("[::1]:port" for IPv6); strip the port.
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}
