package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL  = 10 * time.Minute
	limiterSweepInt = 5 * time.Minute
)

const tooManyRequestsBody = `{"error":{"code":"rate_limited","message":"too many taps, try again shortly"}}` + "\n"

// RateLimiter applies a token bucket per key, e.g. per card.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	limit    rate.Limit
	burst    int
	key      func(*http.Request) string
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perSecond requests per key with the given burst.
// key extracts the bucket key from a request; requests with an empty key are
// not limited. Call Stop to end the background sweep of idle buckets.
func NewRateLimiter(perSecond float64, burst int, key func(*http.Request) string) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*keyedLimiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		key:      key,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// URLParamKey returns a key function reading the chi URL parameter name.
// The limiter must be mounted below the route that declares the parameter.
func URLParamKey(name string) func(*http.Request) string {
	return func(r *http.Request) string { return chi.URLParam(r, name) }
}

// Handler is the middleware. Rejected requests get 429 with Retry-After.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		k := rl.key(r)
		if k == "" || rl.allow(k) {
			next.ServeHTTP(w, r)
			return
		}

		retryAfter := 1
		if rl.limit > 0 {
			retryAfter = max(1, int(time.Duration(float64(time.Second)/float64(rl.limit)).Seconds()))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(tooManyRequestsBody))
	})
}

// Stop ends the background sweep. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) allow(k string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	kl, ok := rl.limiters[k]
	if !ok {
		kl = &keyedLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[k] = kl
	}
	now := rl.now()
	kl.lastSeen = now
	return kl.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) sweepLoop() {
	tick := time.NewTicker(limiterSweepInt)
	defer tick.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-tick.C:
			rl.sweep()
		}
	}
}

// sweep drops buckets idle for longer than limiterIdleTTL. A bucket idle that
// long has refilled, so dropping it loses no state.
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-limiterIdleTTL)
	for k, kl := range rl.limiters {
		if kl.lastSeen.Before(cutoff) {
			delete(rl.limiters, k)
		}
	}
}
