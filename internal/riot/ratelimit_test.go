package riot

import (
	"math/rand"
	"net/http"
	"testing"
	"time"
)

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value string
		want  time.Duration
		ok    bool
	}{
		{name: "integer seconds", value: "7", want: 7 * time.Second, ok: true},
		{name: "fractional seconds", value: "1.5", want: 1500 * time.Millisecond, ok: true},
		{name: "absent", value: "", ok: false},
		{name: "garbage", value: "soon", ok: false},
		{name: "negative", value: "-3", ok: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h := http.Header{}
			if tc.value != "" {
				h.Set("Retry-After", tc.value)
			}
			got, ok := retryAfter(h)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestWindowWait(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		limit string
		count string
		want  time.Duration
		ok    bool
	}{
		{
			name:  "short window exhausted",
			limit: "20:1,100:120",
			count: "20:1,50:120",
			want:  time.Second,
			ok:    true,
		},
		{
			name:  "long window exhausted wins",
			limit: "20:1,100:120",
			count: "20:1,100:120",
			want:  120 * time.Second,
			ok:    true,
		},
		{
			name:  "nothing exhausted",
			limit: "20:1,100:120",
			count: "5:1,10:120",
			ok:    false,
		},
		{
			name:  "count over limit still exhausted",
			limit: "20:1",
			count: "25:1",
			want:  time.Second,
			ok:    true,
		},
		{name: "headers absent", limit: "", count: "", ok: false},
		{name: "malformed limit", limit: "20", count: "20:1", ok: false},
		{name: "malformed count", limit: "20:1", count: "what", ok: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h := http.Header{}
			if tc.limit != "" {
				h.Set("X-Rate-Limit-Limit", tc.limit)
			}
			if tc.count != "" {
				h.Set("X-Rate-Limit-Count", tc.count)
			}
			got, ok := windowWait(h)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRateLimitDelayPreference(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(1))

	h := http.Header{}
	h.Set("Retry-After", "9")
	h.Set("X-Rate-Limit-Limit", "20:1")
	h.Set("X-Rate-Limit-Count", "20:1")
	if got := rateLimitDelay(h, time.Second, rng); got != 9*time.Second {
		t.Fatalf("Retry-After should win, got %v", got)
	}

	h.Del("Retry-After")
	if got := rateLimitDelay(h, time.Second, rng); got != time.Second {
		t.Fatalf("exhausted window should win over backoff, got %v", got)
	}

	h.Del("X-Rate-Limit-Count")
	got := rateLimitDelay(h, 2*time.Second, rng)
	if got < 2*time.Second || got >= 3*time.Second {
		t.Fatalf("backoff fallback out of range: %v", got)
	}
}

func TestBackoffJitterNeverNegative(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		if d := backoffJitter(-time.Second, rng); d < 0 {
			t.Fatalf("negative jittered backoff: %v", d)
		}
	}
}
