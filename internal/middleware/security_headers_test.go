package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serve(t *testing.T, sh *SecurityHeaders, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	handler := sh.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, "/api/v1/checkout/sessions", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSecurityHeadersAlwaysSet(t *testing.T) {
	sh := NewSecurityHeaders(false, nil)
	rec := serve(t, sh, http.MethodGet, "")

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestSecurityHeadersDevelopmentSkipsHSTS(t *testing.T) {
	sh := NewSecurityHeaders(true, nil)
	rec := serve(t, sh, http.MethodGet, "")

	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestCORSAllowedOrigin(t *testing.T) {
	sh := NewSecurityHeaders(false, []string{"https://fields.example.com"})

	rec := serve(t, sh, http.MethodPost, "https://fields.example.com")
	assert.Equal(t, "https://fields.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(t, sh, http.MethodPost, "https://evil.example.com")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	sh := NewSecurityHeaders(false, []string{"https://fields.example.com"})

	rec := serve(t, sh, http.MethodOptions, "https://fields.example.com")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORSWildcard(t *testing.T) {
	sh := NewSecurityHeaders(true, []string{"*"})

	rec := serve(t, sh, http.MethodPost, "https://anywhere.example.com")
	assert.Equal(t, "https://anywhere.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
