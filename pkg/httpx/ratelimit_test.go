package httpx_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/habits/pkg/httpx"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	extract := httpx.CompositeKeyExtractor(":", httpx.IPKeyExtractor, httpx.UserIDKeyExtractor)
	require.Equal(t, "192.168.1.1", extract(req), "empty user id is skipped")

	req = req.WithContext(context.WithValue(req.Context(), httpx.CtxKeyUserID, "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV"))
	require.Equal(t, "192.168.1.1:01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", extract(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("allows requests under limit", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 5, Window: time.Second, Burst: 5})(okHandler)
		for i := range 5 {
			require.Equal(t, http.StatusOK, serve(h, "192.168.1.1:12345").Code, "request %d", i+1)
		}
	})

	t.Run("blocks requests over limit with envelope", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1})(okHandler)

		require.Equal(t, http.StatusOK, serve(h, "192.168.1.1:12345").Code)

		rec := serve(h, "192.168.1.1:12345")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))

		var body httpx.ErrorBody
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.False(t, body.Success)
		require.NotEmpty(t, body.Message)
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2})(okHandler)

		for range 2 {
			require.Equal(t, http.StatusOK, serve(h, "192.168.1.1:12345").Code)
		}
		require.Equal(t, http.StatusTooManyRequests, serve(h, "192.168.1.1:12345").Code)
		require.Equal(t, http.StatusOK, serve(h, "192.168.1.2:12345").Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitMiddleware(cfg, func(*http.Request) string { return "" })(okHandler)
		for range 3 {
			require.Equal(t, http.StatusOK, serve(h, "192.168.1.1:12345").Code)
		}
	})
}

func TestRateLimitByUserFallsBackToIP(t *testing.T) {
	h := httpx.RateLimitByUser(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1})(okHandler)

	require.Equal(t, http.StatusOK, serve(h, "10.0.0.1:1").Code)
	require.Equal(t, http.StatusTooManyRequests, serve(h, "10.0.0.1:1").Code)

	// Same IP, but an authenticated user gets their own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1"
	req = req.WithContext(context.WithValue(req.Context(), httpx.CtxKeyUserID, "user-a"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_TEST_REQUESTS", "7")
	t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
	t.Setenv("RATELIMIT_TEST_BURST", "-1")

	cfg := httpx.RateLimitFromEnv("TEST", httpx.StrictLimit)
	require.Equal(t, 7, cfg.RequestsPerWindow)
	require.Equal(t, 30*time.Second, cfg.Window)
	require.Equal(t, httpx.StrictLimit.Burst, cfg.Burst)
}

func TestRateLimitProfiles(t *testing.T) {
	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
}

func BenchmarkRateLimitMiddleware(b *testing.B) {
	h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 1_000_000, Window: time.Minute, Burst: 1000})(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	b.ResetTimer()
	for b.Loop() {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
