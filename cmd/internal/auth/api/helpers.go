package authapi

import (
	"net"
	"net/http"
	"strings"
)

// clientIP extracts the caller's IP. X-Forwarded-For is honored only when
// the deployment declares a trusted proxy in front.
func clientIP(r *http.Request, trustProxy bool) net.IP {
	if r == nil {
		return nil
	}
	if trustProxy {
		if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
			first := strings.TrimSpace(strings.Split(xff, ",")[0])
			if ip := net.ParseIP(first); ip != nil {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return net.ParseIP(strings.TrimSpace(r.RemoteAddr))
	}
	return net.ParseIP(host)
}

func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, slow down")
}
