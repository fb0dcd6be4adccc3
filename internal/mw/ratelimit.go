package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterPool hands out one token bucket per client address. The check-then-add
// is done under a single lock so two first requests from one address share a
// bucket.
type limiterPool struct {
	mu  sync.Mutex
	ips map[string]*rate.Limiter
	r   rate.Limit
	b   int
}

func (p *limiterPool) get(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	limiter, ok := p.ips[ip]
	if !ok {
		limiter = rate.NewLimiter(p.r, p.b)
		p.ips[ip] = limiter
	}
	return limiter
}

// RateLimiter throttles requests per client IP. Requests over the limit are
// answered 429 without reaching the handler.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	pool := &limiterPool{
		ips: make(map[string]*rate.Limiter),
		r:   r,
		b:   b,
	}
	return func(c *gin.Context) {
		if !pool.get(c.ClientIP()).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
