package web

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Rate is a request budget such as 5 per minute
type Rate struct {
	Requests int
	Per      time.Duration
}

// ParseRate parses "N/second", "N/minute", "N/hour" or "N/day".
// Only the first letter of the unit is significant.
func ParseRate(s string) (Rate, error) {
	num, unit, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q: expected N/unit", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || n < 1 {
		return Rate{}, fmt.Errorf("invalid rate %q: request count must be a positive integer", s)
	}
	unit = strings.ToLower(strings.TrimSpace(unit))
	if unit == "" {
		return Rate{}, fmt.Errorf("invalid rate %q: missing unit", s)
	}

	var per time.Duration
	switch unit[0] {
	case 's':
		per = time.Second
	case 'm':
		per = time.Minute
	case 'h':
		per = time.Hour
	case 'd':
		per = 24 * time.Hour
	default:
		return Rate{}, fmt.Errorf("invalid rate %q: unknown unit %q", s, unit)
	}
	return Rate{Requests: n, Per: per}, nil
}

func (r Rate) limit() rate.Limit {
	return rate.Limit(float64(r.Requests) / r.Per.Seconds())
}

// sweepInterval bounds how often idle buckets are looked for
const sweepInterval = time.Minute

// Throttle keeps one token bucket per caller: user id when authenticated,
// client IP otherwise. A bucket idle for a whole period has refilled, so it
// is dropped and recreated on the caller's next request.
type Throttle struct {
	anon Rate
	user Rate
	now  func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	per      time.Duration
	lastSeen time.Time
}

func NewThrottle(anon, user Rate) *Throttle {
	return &Throttle{
		anon:      anon,
		user:      user,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

func (t *Throttle) limiter(key string, r Rate) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.Sub(t.lastSweep) >= sweepInterval {
		t.sweep(now)
	}

	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.limit(), r.Requests), per: r.Per}
		t.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// sweep drops buckets idle for at least their period. Callers hold t.mu.
func (t *Throttle) sweep(now time.Time) {
	for key, b := range t.buckets {
		if now.Sub(b.lastSeen) >= b.per {
			delete(t.buckets, key)
		}
	}
	t.lastSweep = now
}

// Middleware rejects requests over budget with 429 and a Retry-After header
func (t *Throttle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, r := "anon:"+c.ClientIP(), t.anon
		if p, ok := Principal(c); ok {
			key, r = fmt.Sprintf("user:%d", p.UserID), t.user
		}

		res := t.limiter(key, r).Reserve()
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			wait := int(math.Ceil(delay.Seconds()))
			c.Header("Retry-After", strconv.Itoa(wait))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": fmt.Sprintf("Request was throttled. Expected available in %d seconds.", wait),
			})
			return
		}
		c.Next()
	}
}
