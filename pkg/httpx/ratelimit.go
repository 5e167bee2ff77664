package httpx

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/crateworks/wmsauth/pkg/slogx"
	"golang.org/x/time/rate"
)

// Limit is a per-minute request budget for one endpoint class. Burst is
// how much of the budget may be spent at once.
type Limit struct {
	PerMinute int
	Burst     int
}

// Endpoint classes. Credential-guessing targets (login, refresh,
// invitation redemption) sit on the strict budget.
var (
	StrictLimit   = Limit{PerMinute: 5, Burst: 5}
	ModerateLimit = Limit{PerMinute: 20, Burst: 20}
	LenientLimit  = Limit{PerMinute: 100, Burst: 100}
)

// keyFunc derives the bucket key for a request.
type keyFunc func(*http.Request) string

// clientIP resolves the caller address, trusting proxy headers first.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// limiterPool holds one token bucket per key.
type limiterPool struct {
	buckets sync.Map // map[string]*rate.Limiter
	rate    rate.Limit
	burst   int

	mu        sync.Mutex
	lastSweep time.Time
}

func (p *limiterPool) get(key string) *rate.Limiter {
	if b, ok := p.buckets.Load(key); ok {
		return b.(*rate.Limiter)
	}

	fresh := rate.NewLimiter(p.rate, p.burst)
	actual, _ := p.buckets.LoadOrStore(key, fresh)

	p.maybeSweep()

	return actual.(*rate.Limiter)
}

// maybeSweep drops buckets that have refilled completely, i.e. keys idle
// long enough to not matter anymore. Keeps the map bounded.
func (p *limiterPool) maybeSweep() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.lastSweep) < 5*time.Minute {
		return
	}
	p.lastSweep = time.Now()

	p.buckets.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(p.burst) {
			p.buckets.Delete(key)
		}
		return true
	})
}

// limitBy builds the middleware for one endpoint class and key
// derivation. Requests whose key cannot be derived pass through rather
// than sharing one global bucket.
func limitBy(l Limit, key keyFunc) Middleware {
	pool := &limiterPool{
		rate:      rate.Limit(float64(l.PerMinute) / 60),
		burst:     l.Burst,
		lastSweep: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			k := key(r)
			if k == "" {
				log.Warn("rate limit: unable to derive key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			bucket := pool.get(k)
			if !bucket.Allow() {
				reservation := bucket.Reserve()
				delay := reservation.Delay()
				reservation.Cancel()

				retryAfter := max(int(delay.Seconds()), 1)
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", l.PerMinute))

				log.Warn("rate limit exceeded",
					"endpoint", r.URL.Path,
					"retry_after", retryAfter,
				)

				WriteError(w, http.StatusTooManyRequests,
					"rate_limit_exceeded", "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP budgets unauthenticated endpoints per client address.
func RateLimitByIP(l Limit) Middleware {
	return limitBy(l, clientIP)
}

// RateLimitByUser budgets authenticated endpoints per user id, combined
// with the client address so a stolen token cannot starve its owner from
// elsewhere; unauthenticated requests fall back to the address alone.
func RateLimitByUser(l Limit) Middleware {
	return limitBy(l, func(r *http.Request) string {
		if uid := UserIDFromContext(r.Context()); uid != "" {
			return uid + ":" + clientIP(r)
		}
		return clientIP(r)
	})
}
