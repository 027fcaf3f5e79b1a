package server

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"garageadmin/internal/api"
	"garageadmin/internal/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Login attempts get their own, much tighter budget per client.
const (
	loginRate  = rate.Limit(5.0 / 60.0)
	loginBurst = 5
)

// ClientLimiter hands out one token bucket per client key and forgets clients
// that have been idle for longer than idle.
type ClientLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewClientLimiter(limit rate.Limit, burst int, idle time.Duration) *ClientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ClientLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		burst:   burst,
		idle:    idle,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

// Run evicts idle clients every interval until Stop is called.
func (l *ClientLimiter) Run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := l.sweep(); n > 0 {
				logger.Debug("rate limiter evicted idle clients", "count", n)
			}
		case <-l.stop:
			return
		}
	}
}

func (l *ClientLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *ClientLimiter) sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	evicted := 0
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > l.idle {
			delete(l.clients, key)
			evicted++
		}
	}
	return evicted
}

// Reserve takes a token for key. When none is available it returns how long
// the client should wait.
func (l *ClientLimiter) Reserve(key string) (bool, time.Duration) {
	l.mu.Lock()
	now := l.now()
	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

func (l *ClientLimiter) Allow(key string) bool {
	ok, _ := l.Reserve(key)
	return ok
}

// RateLimitMiddleware rejects requests over budget with 429 and a Retry-After hint.
func RateLimitMiddleware(l *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := l.Reserve(c.ClientIP())
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			c.Header("Retry-After", strconv.Itoa(max(secs, 1)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.Err("rate limit exceeded"))
			return
		}
		c.Next()
	}
}
