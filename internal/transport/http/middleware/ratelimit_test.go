package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func doRequest(rl *RateLimiter, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	rl.Limit(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	return rr
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2)

	assert.Equal(t, http.StatusOK, doRequest(rl, "10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, doRequest(rl, "10.0.0.1:1111").Code)
}

func TestRateLimiter_RejectsBeyondBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0.001), 2)

	doRequest(rl, "10.0.0.1:1111")
	doRequest(rl, "10.0.0.1:1111")
	rr := doRequest(rl, "10.0.0.1:1111")

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "rate_limited")
}

func TestRateLimiter_TracksIPsIndependently(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0.001), 1)

	assert.Equal(t, http.StatusOK, doRequest(rl, "10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(rl, "10.0.0.1:2222").Code) // same host, new port
	assert.Equal(t, http.StatusOK, doRequest(rl, "10.0.0.2:1111").Code)
}
