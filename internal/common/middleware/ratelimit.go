package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// slidingWindow 滑动窗口计数器（单个 key）。
type slidingWindow struct {
	requests []time.Time // 窗口内的请求时间
}

// allow 清理窗口外的记录后判断是否放行。
func (sw *slidingWindow) allow(now time.Time, window time.Duration, max int) bool {
	windowStart := now.Add(-window)

	valid := sw.requests[:0]
	for _, reqTime := range sw.requests {
		if reqTime.After(windowStart) {
			valid = append(valid, reqTime)
		}
	}
	sw.requests = valid

	if len(sw.requests) < max {
		sw.requests = append(sw.requests, now)
		return true
	}
	return false
}

// KeyedLimiter 按 key（通常是客户端 IP）维护独立滑动窗口的限流器。
// 窗口过期后计数自然归零，无后台清理任务。
type KeyedLimiter struct {
	window      time.Duration
	maxRequests int
	windows     map[string]*slidingWindow
	mu          sync.Mutex
}

// NewKeyedLimiter 创建限流器。
func NewKeyedLimiter(window time.Duration, maxRequests int) *KeyedLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if maxRequests <= 0 {
		maxRequests = 5
	}
	return &KeyedLimiter{
		window:      window,
		maxRequests: maxRequests,
		windows:     make(map[string]*slidingWindow),
	}
}

// Allow 检查 key 是否允许请求。
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	sw, ok := l.windows[key]
	if !ok {
		sw = &slidingWindow{}
		l.windows[key] = sw
	}
	return sw.allow(time.Now(), l.window, l.maxRequests)
}

// RateLimit 按客户端 IP 限流的 gin 中间件（登录口 5 次/分钟）。
func RateLimit(l *KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
