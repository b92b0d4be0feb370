package http

import (
	"net"
	"net/http"
	"strings"

	"github.com/parentrant/parentrant/internal/identity"
)

// CredentialsMiddleware stores the request's headers and cookies in the
// context for the admin gate.
func CredentialsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := identity.WithCredentials(r.Context(), identity.CredentialsFromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getIPAddress returns the caller address: the first X-Forwarded-For entry,
// then X-Real-IP, then the connection's remote host.
func getIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
