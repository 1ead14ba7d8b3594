package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func cardRouter(rl *RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Route("/cards/{id}", func(r chi.Router) {
		r.With(rl.Handler).Post("/tap-in", okHandler)
	})
	return r
}

func post(h http.Handler, path string) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	return rec.Code
}

func TestRateLimiter_PerKeyBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2, URLParamKey("id"))
	t.Cleanup(rl.Stop)
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	h := cardRouter(rl)

	assert.Equal(t, http.StatusOK, post(h, "/cards/a/tap-in"))
	assert.Equal(t, http.StatusOK, post(h, "/cards/a/tap-in"))
	assert.Equal(t, http.StatusTooManyRequests, post(h, "/cards/a/tap-in"))

	// Another card has its own bucket.
	assert.Equal(t, http.StatusOK, post(h, "/cards/b/tap-in"))

	// One second refills one token at 1/s.
	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, post(h, "/cards/a/tap-in"))
}

func TestRateLimiter_429Response(t *testing.T) {
	rl := NewRateLimiter(0.5, 1, URLParamKey("id"))
	t.Cleanup(rl.Stop)
	h := cardRouter(rl)

	require.Equal(t, http.StatusOK, post(h, "/cards/a/tap-in"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cards/a/tap-in", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limited")
}

func TestRateLimiter_EmptyKeyNotLimited(t *testing.T) {
	rl := NewRateLimiter(1, 1, func(*http.Request) string { return "" })
	t.Cleanup(rl.Stop)
	h := rl.Handler(http.HandlerFunc(okHandler))

	for range 5 {
		assert.Equal(t, http.StatusOK, post(h, "/anything"))
	}
}

func TestRateLimiter_SweepDropsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1, URLParamKey("id"))
	t.Cleanup(rl.Stop)
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.allow("old")
	now = now.Add(limiterIdleTTL + time.Second)
	rl.allow("fresh")
	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.limiters, "old")
	assert.Contains(t, rl.limiters, "fresh")
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1, URLParamKey("id"))
	rl.Stop()
	rl.Stop()
}
