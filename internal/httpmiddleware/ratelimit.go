// Package httpmiddleware holds gin middleware shared by the portal routes.
package httpmiddleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// idleEviction is how long an address may stay quiet before its bucket is
// dropped. Keeps the per-IP map bounded on a public login surface.
const idleEviction = 10 * time.Minute

// Limiter is an in-memory per-client token bucket. State lives in the
// process; behind a multi-replica deployment each replica enforces its own
// share of the budget.
type Limiter struct {
	perMinute int

	mu      sync.Mutex
	clients map[string]*clientBucket
	sweep   time.Time
}

type clientBucket struct {
	tokens float64
	seen   time.Time
}

// NewLimiter creates a limiter allowing perMinute requests per client IP,
// with bursts up to the same amount.
func NewLimiter(perMinute int) *Limiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &Limiter{
		perMinute: perMinute,
		clients:   make(map[string]*clientBucket),
		sweep:     time.Now(),
	}
}

// RateLimit returns the gin middleware enforcing the limit per client IP.
func (l *Limiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		addr := c.ClientIP()
		if addr == "" {
			addr = "unknown"
		}
		if !l.take(addr) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests"})
			return
		}
		c.Next()
	}
}

func (l *Limiter) take(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.sweep) > idleEviction {
		for key, b := range l.clients {
			if now.Sub(b.seen) > idleEviction {
				delete(l.clients, key)
			}
		}
		l.sweep = now
	}

	b, ok := l.clients[addr]
	if !ok {
		l.clients[addr] = &clientBucket{tokens: float64(l.perMinute) - 1, seen: now}
		return true
	}

	refill := now.Sub(b.seen).Minutes() * float64(l.perMinute)
	b.tokens += refill
	if limit := float64(l.perMinute); b.tokens > limit {
		b.tokens = limit
	}
	b.seen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
