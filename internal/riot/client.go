package riot

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"rifttracker/pkg/logx"
)

// Config controls the request engine.
type Config struct {
	APIKey        string
	Region        string // platform routing, e.g. "na1"
	RoutingRegion string // regional routing, e.g. "americas"

	// MaxInFlight bounds simultaneous upstream calls across ALL callers
	// (poller and interactive commands share one budget).
	MaxInFlight int
	// MaxAttempts bounds the retry loop, 429 waits included.
	MaxAttempts int
	// CacheTTL is the GET response cache window.
	CacheTTL time.Duration
	// RatePerSec enables proactive pacing ahead of header-driven waits.
	// 0 disables it.
	RatePerSec int
}

// Client is the sole gateway to the upstream API.
type Client struct {
	cfg Config
	log logx.Logger

	http    *http.Client
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	cache   *responseCache

	platformBase string
	routingBase  string

	backoffBase time.Duration
	sleep       func(ctx context.Context, d time.Duration) bool

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBaseURLs overrides the platform and regional API hosts (tests).
func WithBaseURLs(platform, routing string) Option {
	return func(c *Client) {
		c.platformBase = strings.TrimRight(platform, "/")
		c.routingBase = strings.TrimRight(routing, "/")
	}
}

// WithBackoffBase overrides the retry backoff seed.
func WithBackoffBase(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoffBase = d
		}
	}
}

func NewClient(cfg Config, log logx.Logger, opts ...Option) *Client {
	if cfg.Region == "" {
		cfg.Region = "na1"
	}
	if cfg.RoutingRegion == "" {
		cfg.RoutingRegion = "americas"
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 10
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 60 * time.Second
	}
	cfg.APIKey = sanitizeHeaderValue(cfg.APIKey)
	if log.IsZero() {
		log = logx.Nop()
	}

	c := &Client{
		cfg:          cfg,
		log:          log,
		http:         &http.Client{Timeout: 30 * time.Second},
		sem:          semaphore.NewWeighted(int64(cfg.MaxInFlight)),
		cache:        newResponseCache(cfg.CacheTTL),
		platformBase: "https://" + cfg.Region + ".api.riotgames.com",
		routingBase:  "https://" + cfg.RoutingRegion + ".api.riotgames.com",
		backoffBase:  time.Second,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.sleep = c.sleepCtx
	if cfg.RatePerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

const maxBodyBytes = 8 << 20

// request issues one upstream call with cache lookup, admission control,
// retry, and rate-limit compliance. It returns (body, true) on a usable
// payload and (nil, false) for "absent": 404, exhausted retries, cancellation.
//
// Non-retryable statuses (4xx other than 404/429) return the body as-is so
// callers can attempt a best-effort decode; a failed decode is also "absent".
func (c *Client) request(ctx context.Context, method, rawURL string, header http.Header, params url.Values) ([]byte, bool) {
	key := cacheKey(method, rawURL, params)

	// Cache hit returns without touching the semaphore or the network.
	if method == http.MethodGet {
		if body, ok := c.cache.Lookup(key); ok {
			return body, true
		}
	}

	backoff := c.backoffBase
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		status, respHeader, body, err := c.send(ctx, method, rawURL, header, params)
		if err != nil {
			if ctx.Err() != nil {
				return nil, false
			}
			c.log.Warn("upstream request failed",
				logx.String("method", method), logx.String("url", rawURL),
				logx.Int("attempt", attempt), logx.Err(err))
			if !c.sleep(ctx, c.jitter(backoff)) {
				return nil, false
			}
			backoff *= 2
			continue
		}

		switch {
		case status == http.StatusOK:
			if method == http.MethodGet {
				c.cache.Store(key, body)
			}
			return body, true

		case status == http.StatusNotFound:
			// Legitimate absence, not a failure. No retry.
			return nil, false

		case status == http.StatusTooManyRequests:
			d := c.rateLimitWait(respHeader, backoff)
			c.log.Warn("rate limited",
				logx.String("method", method), logx.String("url", rawURL),
				logx.Duration("wait", d), logx.Int("attempt", attempt))
			if !c.sleep(ctx, d) {
				return nil, false
			}

		case status >= 500 && status < 600:
			d := c.jitter(backoff)
			c.log.Warn("upstream server error",
				logx.String("method", method), logx.String("url", rawURL),
				logx.Int("status", status), logx.Duration("wait", d), logx.Int("attempt", attempt))
			if !c.sleep(ctx, d) {
				return nil, false
			}

		default:
			// Non-retryable class. Hand back whatever we got; decoding decides.
			c.log.Debug("non-retryable status",
				logx.String("method", method), logx.String("url", rawURL),
				logx.Int("status", status))
			if len(body) == 0 {
				return nil, false
			}
			return body, true
		}

		backoff *= 2
	}

	c.log.Error("exceeded max retries",
		logx.String("method", method), logx.String("url", rawURL),
		logx.Int("attempts", c.cfg.MaxAttempts))
	return nil, false
}

// send performs a single HTTP exchange under the admission semaphore.
func (c *Client) send(ctx context.Context, method, rawURL string, header http.Header, params url.Values) (int, http.Header, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, nil, err
		}
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return 0, nil, nil, err
	}
	defer c.sem.Release(1)

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, nil, nil, err
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, sanitizeHeaderValue(v))
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, nil, err
	}
	return resp.StatusCode, resp.Header, body, nil
}

// getJSON fetches and decodes a structured response. Absence (404, retries
// exhausted, undecodable payload) is (false), never an error.
func (c *Client) getJSON(ctx context.Context, rawURL string, header http.Header, params url.Values, out any) bool {
	body, ok := c.request(ctx, http.MethodGet, rawURL, header, params)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.log.Debug("undecodable upstream payload", logx.String("url", rawURL), logx.Err(err))
		return false
	}
	return true
}

// getBytes fetches a raw payload (icons, static assets).
func (c *Client) getBytes(ctx context.Context, rawURL string) ([]byte, bool) {
	return c.request(ctx, http.MethodGet, rawURL, nil, nil)
}

func (c *Client) authHeader() http.Header {
	h := http.Header{}
	h.Set("X-Riot-Token", c.cfg.APIKey)
	return h
}

func (c *Client) rateLimitWait(h http.Header, backoff time.Duration) time.Duration {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return rateLimitDelay(h, backoff, c.rng)
}

func (c *Client) jitter(backoff time.Duration) time.Duration {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return backoffJitter(backoff, c.rng)
}

// sleepCtx waits for d, honoring cancellation. Returns false if ctx ended.
func (c *Client) sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// sanitizeHeaderValue strips CR/LF so untrusted input (account names forwarded
// into requests) can never inject header lines.
func sanitizeHeaderValue(v string) string {
	v = strings.ReplaceAll(v, "\r", "")
	return strings.ReplaceAll(v, "\n", "")
}
