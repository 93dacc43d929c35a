package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/seek/internal/domain"
	"github.com/MrSnakeDoc/seek/internal/logger"
	redisstore "github.com/MrSnakeDoc/seek/internal/store/redis"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
	defaultBreakerInterval = 60 * time.Second
	maxErrorBody           = 2048
	maxResponseBody        = 8 << 20
	userAgent              = "seek/1.0 (+searxng)"
)

// Cache stores JSON documents with a TTL.
type Cache interface {
	GetCachedJSON(ctx context.Context, key string, dst any) (bool, error)
	CacheJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// Options configures a Client.
type Options struct {
	BaseURL         string
	Timeout         time.Duration
	RatePerSec      float64 // <= 0 disables the outbound throttle
	Burst           int
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	CacheTTL        time.Duration
	HTTPClient      *http.Client
}

// Client talks to a SearXNG instance. Calls are throttled, guarded by a
// circuit breaker and cached.
type Client struct {
	base     *url.URL
	http     *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[[]byte]
	cache    Cache // optional
	cacheTTL time.Duration
	logger   logger.Logger
}

// NewClient validates opts and builds a client. cache may be nil.
func NewClient(opts Options, cache Cache, log logger.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, NewTypedError(ErrorTypeConfig, fmt.Errorf("invalid searxng url %q", opts.BaseURL))
	}
	base.Path = strings.TrimSuffix(base.Path, "/")

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSec > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}

	maxFailures := opts.BreakerFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerFailures
	}
	breakerTimeout := opts.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = defaultBreakerTimeout
	}

	c := &Client{
		base:     base,
		http:     httpClient,
		limiter:  limiter,
		cache:    cache,
		cacheTTL: opts.CacheTTL,
		logger:   log,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "searxng",
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    defaultBreakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellations and our own bad requests say nothing about upstream health.
			return err == nil || errors.Is(err, context.Canceled) || ClassifyError(err) == ErrorTypeConfig
		},
	})

	return c, nil
}

// Search runs q against SearXNG.
func (c *Client) Search(ctx context.Context, q Query) (Response, error) {
	q = q.Normalize()
	if q.Text == "" {
		return Response{}, domain.NewValidationError("q", "query is required")
	}

	key := redisstore.CacheKey("search", q.Category, strconv.Itoa(q.Page), q.Language,
		strconv.Itoa(q.SafeSearch), q.TimeRange, q.Text)

	var cached Response
	if c.cacheGet(ctx, key, &cached) {
		cached.Cached = true
		return cached, nil
	}

	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("format", "json")
	params.Set("categories", upstreamCategory(q.Category))
	params.Set("pageno", strconv.Itoa(q.Page))
	params.Set("language", q.Language)
	params.Set("safesearch", strconv.Itoa(q.SafeSearch))
	if q.TimeRange != "" {
		params.Set("time_range", q.TimeRange)
	}

	body, err := c.call(ctx, "/search", params)
	if err != nil {
		return Response{}, err
	}

	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Response{}, NewTypedError(ErrorTypeUnknown, fmt.Errorf("decode searxng response failed: %w", err))
	}

	out := toResponse(q, payload)
	c.cachePut(ctx, key, out)
	return out, nil
}

// Autocomplete returns query completions from SearXNG.
func (c *Client) Autocomplete(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}, nil
	}

	key := redisstore.CacheKey("autocomplete", text)
	var cached []string
	if c.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	body, err := c.call(ctx, "/autocompleter", url.Values{"q": {text}})
	if err != nil {
		return nil, err
	}

	out, err := parseCompletions(body)
	if err != nil {
		return nil, NewTypedError(ErrorTypeUnknown, fmt.Errorf("decode searxng completions failed: %w", err))
	}

	c.cachePut(ctx, key, out)
	return out, nil
}

// parseCompletions accepts the OpenSearch form ["q", ["a", "b"]] and a
// plain list ["a", "b"].
func parseCompletions(body []byte) ([]string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	if len(raw) == 2 {
		var list []string
		if err := json.Unmarshal(raw[1], &list); err == nil {
			return nonNil(list), nil
		}
	}

	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Ping checks the instance health endpoint, bypassing breaker and throttle.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, "/healthz", nil)
	return err
}

// State returns the breaker state for monitoring.
func (c *Client) State() string {
	return c.breaker.State().String()
}

func (c *Client) call(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, NewTypedError(ErrorTypeRateLimit, fmt.Errorf("searxng throttle: %w", err))
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, path, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, NewTypedError(ErrorTypeCircuitOpen, fmt.Errorf("%w: %v", ErrCircuitOpen, err))
		}
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, NewTypedError(ErrorTypeConfig, fmt.Errorf("create searxng request failed: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	res, err := c.http.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, NewTypedError(ErrorTypeTimeout, fmt.Errorf("searxng request timed out: %w", err))
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, NewTypedError(ErrorTypeNetwork, fmt.Errorf("searxng request failed: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		detail := strings.TrimSpace(string(body))
		if detail == "" {
			detail = res.Status
		}
		errorType := ErrorTypeUnknown
		if res.StatusCode == http.StatusTooManyRequests {
			errorType = ErrorTypeRateLimit
		} else if res.StatusCode >= 500 {
			errorType = ErrorTypeUpstream5xx
		}
		return nil, NewTypedError(errorType, fmt.Errorf("searxng http %d: %s", res.StatusCode, detail))
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return nil, NewTypedError(ErrorTypeNetwork, fmt.Errorf("read searxng response failed: %w", err))
	}
	return body, nil
}

func (c *Client) cacheGet(ctx context.Context, key string, dst any) bool {
	if c.cache == nil || c.cacheTTL <= 0 {
		return false
	}
	hit, err := c.cache.GetCachedJSON(ctx, key, dst)
	if err != nil {
		c.logger.Warn("search cache read failed", logger.Error(err))
		return false
	}
	return hit
}

func (c *Client) cachePut(ctx context.Context, key string, v any) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	if err := c.cache.CacheJSON(ctx, key, v, c.cacheTTL); err != nil {
		c.logger.Warn("search cache write failed", logger.Error(err))
	}
}
