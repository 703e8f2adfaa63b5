package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestGetConfigForEndpoint(t *testing.T) {
	assert.Equal(t, 5, getConfigForEndpoint("/generate-pix").Requests)
	assert.Equal(t, 60, getConfigForEndpoint("/payment-status/1").Requests)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.8"}, "10.0.0.1:1234", "203.0.113.8"},
		{"cloudflare", map[string]string{"CF-Connecting-IP": "203.0.113.9"}, "10.0.0.1:1234", "203.0.113.9"},
		{"remote addr", nil, "198.51.100.2:5555", "198.51.100.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/generate-pix", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestGetRateLimitKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/generate-pix", nil)
	r.RemoteAddr = "198.51.100.2:5555"
	assert.Equal(t, "rate_limit:generate-pix:198.51.100.2", getRateLimitKey(r))

	r = httptest.NewRequest(http.MethodGet, "/payment-status/tx_1", nil)
	r.RemoteAddr = "198.51.100.2:5555"
	assert.Equal(t, "rate_limit:payment-status/tx_1:198.51.100.2", getRateLimitKey(r))
}

func TestRateLimitFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	limiter := NewRateLimiterWithClient(client)
	defer limiter.Close()

	called := false
	handler := limiter.RateLimitMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate-pix", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestNewRateLimiterInvalidURL(t *testing.T) {
	_, err := NewRateLimiter("not-a-redis-url")
	assert.Error(t, err)
}
