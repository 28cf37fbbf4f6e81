package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func doRequest(limiter *RateLimiter, remoteAddr string) int {
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/channel/sess-1/messages", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	limiter := NewRateLimiter(1, 3)
	defer limiter.Shutdown()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(limiter, "10.0.0.1:1234"))
	}
}

func TestRateLimiterBlocksBeyondBurst(t *testing.T) {
	limiter := NewRateLimiter(0.1, 2)
	defer limiter.Shutdown()

	doRequest(limiter, "10.0.0.2:1234")
	doRequest(limiter, "10.0.0.2:1234")
	assert.Equal(t, http.StatusTooManyRequests, doRequest(limiter, "10.0.0.2:1234"))
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	limiter := NewRateLimiter(0.1, 1)
	defer limiter.Shutdown()

	doRequest(limiter, "10.0.0.3:1111")
	assert.Equal(t, http.StatusTooManyRequests, doRequest(limiter, "10.0.0.3:2222"))
	assert.Equal(t, http.StatusOK, doRequest(limiter, "10.0.0.4:1111"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.9:55678"
	assert.Equal(t, "192.168.1.9", clientIP(req))

	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", clientIP(req))
}
