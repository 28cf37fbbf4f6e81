package middleware

import (
	"net/http"
	"strings"
)

// SecurityHeaders hardens every response and answers CORS preflights for
// the secure capture surface, which always calls from a different origin
// than the host page.
type SecurityHeaders struct {
	development    bool
	allowedOrigins map[string]struct{}
	allowAny       bool
}

// NewSecurityHeaders creates the middleware. origins is the same allow
// list the channel's origin verifier uses; "*" permits any origin and is
// only meant for local development.
func NewSecurityHeaders(development bool, origins []string) *SecurityHeaders {
	sh := &SecurityHeaders{
		development:    development,
		allowedOrigins: make(map[string]struct{}, len(origins)),
	}
	for _, o := range origins {
		o = strings.ToLower(strings.TrimSpace(o))
		if o == "*" {
			sh.allowAny = true
			continue
		}
		sh.allowedOrigins[o] = struct{}{}
	}
	return sh
}

func (sh *SecurityHeaders) originAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	if sh.allowAny {
		return true
	}
	_, ok := sh.allowedOrigins[strings.ToLower(origin)]
	return ok
}

// Middleware wraps an HTTP handler with security and CORS headers.
func (sh *SecurityHeaders) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy",
			"default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'")
		if !sh.development {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		w.Header().Set("Cache-Control", "no-store")

		if origin := r.Header.Get("Origin"); sh.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.Header().Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
