package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/H-Riv/mundo-cartas/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ipLimiter counts requests per client IP over a fixed window. Counters live
// in memory; a single backend instance is assumed.
type ipLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*ipWindow
}

type ipWindow struct {
	count     int
	windowEnd time.Time
}

func newIPLimiter(limit int, window time.Duration) *ipLimiter {
	l := &ipLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*ipWindow),
	}
	go l.purgeLoop()
	return l
}

// allow registers one request and reports whether it is within the limit,
// returning when the current window resets.
func (l *ipLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.entries[ip]
	if !ok || now.After(e.windowEnd) {
		e = &ipWindow{windowEnd: now.Add(l.window)}
		l.entries[ip] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

// Expired IPs are dropped periodically so one-off visitors don't accumulate.
func (l *ipLimiter) purgeLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		purged := 0
		for ip, e := range l.entries {
			if now.After(e.windowEnd) {
				delete(l.entries, ip)
				purged++
			}
		}
		remaining := len(l.entries)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().Int("purged", purged).Int("remaining", remaining).Msg("rate limiter entries purged")
		}
	}
}

// LoginRateLimiter caps login attempts at 20 per minute per IP to slow
// credential stuffing against store accounts.
func LoginRateLimiter() gin.HandlerFunc {
	limiter := newIPLimiter(20, time.Minute)
	return func(c *gin.Context) {
		if ok, _ := limiter.allow(c.ClientIP()); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiados intentos de login. Intente en 1 minuto."))
			return
		}
		c.Next()
	}
}

// RateLimiter is the general per-IP limiter applied to the whole API.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	limiter := newIPLimiter(limit, window)
	return func(c *gin.Context) {
		ok, windowEnd := limiter.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}
