package riot

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Rate-limit interpretation for Riot responses.
//
// Riot communicates budgets through paired headers:
//
//	X-Rate-Limit-Limit: 20:1,100:120     (limit:window-seconds, comma separated)
//	X-Rate-Limit-Count: 19:1,100:120
//
// A window whose count has reached its limit is exhausted; the safe wait is
// the length of the longest exhausted window. An explicit Retry-After always
// wins.

// retryAfter parses an explicit Retry-After seconds value.
func retryAfter(h http.Header) (time.Duration, bool) {
	raw := strings.TrimSpace(h.Get("Retry-After"))
	if raw == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// windowWait inspects the limit/count tables and returns the longest exhausted
// window. ok is false when the headers are absent, malformed, or no window is
// exhausted.
func windowWait(h http.Header) (time.Duration, bool) {
	limits, ok := parseWindowPairs(h.Get("X-Rate-Limit-Limit"))
	if !ok {
		return 0, false
	}
	counts, ok := parseWindowPairs(h.Get("X-Rate-Limit-Count"))
	if !ok {
		return 0, false
	}

	var worst int
	for window, limit := range limits {
		if counts[window] >= limit && window > worst {
			worst = window
		}
	}
	if worst <= 0 {
		return 0, false
	}
	return time.Duration(worst) * time.Second, true
}

// parseWindowPairs decodes "value:window,value:window" into window -> value.
func parseWindowPairs(raw string) (map[int]int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	out := map[int]int{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		left, right, found := strings.Cut(part, ":")
		if !found {
			return nil, false
		}
		val, err1 := strconv.Atoi(strings.TrimSpace(left))
		window, err2 := strconv.Atoi(strings.TrimSpace(right))
		if err1 != nil || err2 != nil || window <= 0 {
			return nil, false
		}
		out[window] = val
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// rateLimitDelay computes the wait before retrying a 429. Preference order:
// explicit Retry-After, exhausted-window length, then backoff with jitter.
func rateLimitDelay(h http.Header, backoff time.Duration, rng *rand.Rand) time.Duration {
	if d, ok := retryAfter(h); ok {
		return d
	}
	if d, ok := windowWait(h); ok {
		return d
	}
	return backoffJitter(backoff, rng)
}

// backoffJitter adds a uniform fractional-second jitter term to the current
// backoff. Never negative.
func backoffJitter(backoff time.Duration, rng *rand.Rand) time.Duration {
	if backoff < 0 {
		backoff = 0
	}
	j := time.Duration(rng.Float64() * float64(time.Second))
	return backoff + j
}
