package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"pix-checkout-api/utils"
)

type RateLimiter struct {
	client *redis.Client
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Message  string
}

var defaultConfigs = map[string]RateLimitConfig{
	"/generate-pix": {
		Requests: 5,
		Window:   time.Minute,
		Message:  "Muitas tentativas de gerar PIX. Aguarde um minuto e tente novamente.",
	},
	"default": {
		Requests: 60,
		Window:   time.Minute,
		Message:  "Muitas requisições. Aguarde alguns instantes.",
	},
}

// Sliding window over a sorted set: drop entries older than the window, then
// admit the request if the count is still under the limit.
var slidingWindow = redis.NewScript(`
    local key = KEYS[1]
    local window_start = tonumber(ARGV[1])
    local limit = tonumber(ARGV[2])
    local now = ARGV[3]
    local member = ARGV[4]
    local ttl = tonumber(ARGV[5])

    redis.call('ZREMRANGEBYSCORE', key, 0, window_start)

    local current = redis.call('ZCARD', key)
    if current < limit then
        redis.call('ZADD', key, now, member)
        redis.call('EXPIRE', key, ttl)
        return {1, limit - current - 1}
    end
    return {0, 0}
`)

func NewRateLimiter(redisURL string) (*RateLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL for rate limiter: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	return &RateLimiter{client: client}, nil
}

// NewRateLimiterWithClient wraps an existing client without pinging it.
func NewRateLimiterWithClient(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func (rl *RateLimiter) RateLimitMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			config := getConfigForEndpoint(r.URL.Path)
			key := getRateLimitKey(r)

			allowed, remaining, resetTime, err := rl.checkRateLimit(r.Context(), key, config, time.Now())
			if err != nil {
				// Redis trouble must not take checkout down.
				zap.L().Warn("rate limit check failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Requests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				zap.L().Info("rate limit exceeded", zap.String("key", key), zap.String("path", r.URL.Path))
				w.Header().Set("Retry-After", strconv.Itoa(int(config.Window.Seconds())))
				utils.SendErrorResponse(w, http.StatusTooManyRequests, config.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func getConfigForEndpoint(path string) RateLimitConfig {
	if config, exists := defaultConfigs[path]; exists {
		return config
	}
	return defaultConfigs["default"]
}

func getRateLimitKey(r *http.Request) string {
	return fmt.Sprintf("rate_limit:%s:%s", strings.Trim(r.URL.Path, "/"), getClientIP(r))
}

func getClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

func (rl *RateLimiter) checkRateLimit(ctx context.Context, key string, config RateLimitConfig, now time.Time) (allowed bool, remaining int, resetTime time.Time, err error) {
	windowStart := now.Add(-config.Window)
	resetTime = now.Add(config.Window)

	result, err := slidingWindow.Run(ctx, rl.client, []string{key},
		windowStart.UnixNano(),
		config.Requests,
		now.UnixNano(),
		strconv.FormatInt(now.UnixNano(), 10),
		int(config.Window.Seconds())+1,
	).Result()
	if err != nil {
		return false, 0, time.Time{}, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}

	allowedInt, ok1 := values[0].(int64)
	remainingInt, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, time.Time{}, fmt.Errorf("failed to parse redis result")
	}

	return allowedInt == 1, int(remainingInt), resetTime, nil
}

func (rl *RateLimiter) PingContext(ctx context.Context) error {
	return rl.client.Ping(ctx).Err()
}

func (rl *RateLimiter) Close() error {
	return rl.client.Close()
}
