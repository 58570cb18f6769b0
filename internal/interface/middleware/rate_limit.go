package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-community-leaderboard/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP only.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByRoute limits by client IP per route template, so /user/:id/experience
// shares one bucket across ids.
func KeyByRoute() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:route:" + c.Request.Method + ":" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// hitScript increments the window counter and returns {count, pttl}.
// The expiry is set on the first hit only, so windows are fixed.
var hitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

type AllowFunc func(*gin.Context) bool // return true for bypass limit

// window is the state of one key after a hit.
type window struct {
	count int
	reset time.Duration
}

func hit(c *gin.Context, rdb *redis.Client, key string, size time.Duration) (window, error) {
	vals, err := hitScript.Run(c.Request.Context(), rdb, []string{key}, size.Milliseconds()).Slice()
	if err != nil {
		return window{}, err
	}
	w := window{}
	if len(vals) > 0 {
		w.count = toInt(vals[0])
	}
	if len(vals) > 1 {
		if ms := toInt(vals[1]); ms > 0 {
			w.reset = time.Duration(ms) * time.Millisecond
		}
	}
	return w, nil
}

// RateLimit counts requests per key in fixed Redis windows and answers 429
// once max is exceeded. OPTIONS and allow-listed requests bypass it.
// A nil client disables it; Redis errors fail open.
func RateLimit(rdb *redis.Client, max int, size time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || size <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if (allow != nil && allow(c)) || strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		w, err := hit(c, rdb, keyFn(c), size)
		if err != nil {
			c.Next()
			return
		}
		resetSec := int((w.reset + time.Second - 1) / time.Second)
		remaining := max - w.count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if w.count > max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Error(c, http.StatusTooManyRequests, "Too many requests", nil)
			return
		}
		c.Next()
	}
}

func toInt(v any) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
