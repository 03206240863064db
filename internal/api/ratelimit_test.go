package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatalf("first two requests rejected")
	}
	if rl.Allow("a") {
		t.Fatalf("third request in window allowed")
	}
	if !rl.Allow("b") {
		t.Errorf("other client rejected")
	}
	if got := rl.RetryAfter("a"); got != 61 {
		t.Errorf("RetryAfter = %d, want 61", got)
	}

	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Errorf("request after window reset rejected")
	}

	now = now.Add(3 * time.Minute)
	rl.Allow("c")
	rl.mu.Lock()
	_, stale := rl.buckets["b"]
	rl.mu.Unlock()
	if stale {
		t.Errorf("idle bucket not swept")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote, xff, want string
	}{
		{"10.0.0.1:5555", "", "10.0.0.1"},
		{"10.0.0.1:5555", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
		{"no-port", "", "no-port"},
	}
	for _, tc := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = tc.remote
		if tc.xff != "" {
			r.Header.Set("X-Forwarded-For", tc.xff)
		}
		if got := clientIP(r); got != tc.want {
			t.Errorf("clientIP(%q, %q) = %q, want %q", tc.remote, tc.xff, got, tc.want)
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	h := RateLimitMiddleware(rl, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	first := httptest.NewRecorder()
	h(first, httptest.NewRequest(http.MethodGet, "/", nil))
	if first.Code != http.StatusNoContent {
		t.Fatalf("first request = %d", first.Code)
	}

	second := httptest.NewRecorder()
	h(second, httptest.NewRequest(http.MethodGet, "/", nil))
	if second.Code != http.StatusTooManyRequests || second.Header().Get("Retry-After") == "" {
		t.Errorf("second request = %d, Retry-After %q", second.Code, second.Header().Get("Retry-After"))
	}
}
