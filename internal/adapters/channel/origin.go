package channel

import (
	"strings"

	"github.com/kevin07696/checkout-service/internal/domain/ports"
)

// AllowedOrigins builds a verifier that accepts only the listed origins
// (case-insensitive exact match).
func AllowedOrigins(origins ...string) ports.OriginVerifier {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.ToLower(strings.TrimSpace(o))] = struct{}{}
	}
	return ports.OriginVerifierFunc(func(origin string) bool {
		_, ok := allowed[strings.ToLower(strings.TrimSpace(origin))]
		return ok
	})
}

// AllowAnyOrigin accepts every sender. Only for local development; a
// deployment handling live funds must use AllowedOrigins.
func AllowAnyOrigin() ports.OriginVerifier {
	return ports.OriginVerifierFunc(func(string) bool { return true })
}
