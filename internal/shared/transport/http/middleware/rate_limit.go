package middleware

import (
	"OpenFront/internal/shared/transport"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPLimiter 按客户端 IP 维护令牌桶。
type IPLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func NewIPLimiter(rps float64, burst int) *IPLimiter {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 20
	}
	return &IPLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (l *IPLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// Allow 消耗 ip 的一个令牌。
func (l *IPLimiter) Allow(ip string) bool {
	return l.get(ip).Allow()
}

// RateLimit 超出配额时直接返回 429，不进入 handler。
func RateLimit(l *IPLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || l == nil {
			c.Next()
			return
		}
		if !l.Allow(c.ClientIP()) {
			transport.SetBizCode(c.Request.Context(), transport.BizCode(transport.RateLimited))
			transport.SetErrorReason(c.Request.Context(), "rate limited")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code": transport.RateLimited,
				"msg":  "too many requests",
			})
			return
		}
		c.Next()
	}
}
