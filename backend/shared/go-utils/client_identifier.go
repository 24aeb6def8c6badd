package utils

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the best guess at the caller's address, preferring proxy
// headers over RemoteAddr. Empty when nothing parses as an IP.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for _, ip := range strings.Split(fwd, ",") {
			if ip = strings.TrimSpace(ip); isValidIP(ip) {
				return ip
			}
		}
	}

	for _, h := range []string{"CF-Connecting-IP", "X-Real-IP"} {
		if ip := strings.TrimSpace(r.Header.Get(h)); isValidIP(ip) {
			return ip
		}
	}

	if forwarded := r.Header.Get("Forwarded"); forwarded != "" {
		for _, part := range strings.Split(forwarded, ";") {
			part = strings.TrimSpace(part)
			if strings.HasPrefix(part, "for=") {
				if ip := strings.Trim(strings.TrimPrefix(part, "for="), "\""); isValidIP(ip) {
					return ip
				}
			}
		}
	}

	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && isValidIP(ip) {
		return ip
	}
	return ""
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
