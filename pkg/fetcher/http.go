package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/temoto/robotstxt"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/amosWeiskopf/schemasmith/internal/config"
)

// maxBodySize caps how much of a response is read
const maxBodySize = 10 << 20

// HTTPFetcher fetches URLs over HTTP with a shared client, a client-side rate
// limiter, an optional robots.txt gate and an in-memory page cache.
// It is safe for concurrent use.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	limiter      *rate.Limiter
	followRobots bool
	pages        *lru.Cache[string, []byte]
	robots       *lru.Cache[string, *robotstxt.RobotsData]
	logger       *slog.Logger
}

// NewHTTPFetcher creates an HTTPFetcher from the fetcher configuration
func NewHTTPFetcher(cfg config.FetcherConfig, logger *slog.Logger) (*HTTPFetcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	f := &HTTPFetcher{
		client:       &http.Client{Transport: transport, Timeout: cfg.Timeout, Jar: jar},
		userAgent:    userAgent,
		limiter:      rate.NewLimiter(limit, burst),
		followRobots: cfg.FollowRobotsTxt,
		logger:       logger,
	}

	if cfg.CacheSize > 0 {
		f.pages, err = lru.New[string, []byte](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("page cache: %w", err)
		}
	}
	if cfg.FollowRobotsTxt {
		f.robots, err = lru.New[string, *robotstxt.RobotsData](64)
		if err != nil {
			return nil, fmt.Errorf("robots cache: %w", err)
		}
	}
	return f, nil
}

// Fetch returns the body of rawURL. Any status >= 400 is a *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.pages != nil {
		if body, ok := f.pages.Get(rawURL); ok {
			return body, nil
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if f.followRobots && !f.allowed(ctx, u) {
		return nil, &FetchError{URL: rawURL, Err: ErrDisallowed}
	}

	body, status, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if status >= http.StatusBadRequest {
		return nil, &FetchError{URL: rawURL, StatusCode: status}
	}

	if f.pages != nil {
		f.pages.Add(rawURL, body)
	}
	f.logger.Debug("fetched", "url", rawURL, "bytes", len(body))
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// allowed reports whether robots.txt of u's host permits the configured agent.
// An unreachable or broken robots.txt allows everything.
func (f *HTTPFetcher) allowed(ctx context.Context, u *url.URL) bool {
	key := u.Scheme + "://" + u.Host
	robots, ok := f.robots.Get(key)
	if !ok {
		body, status, err := f.get(ctx, key+"/robots.txt")
		if err != nil {
			f.logger.Debug("robots.txt unavailable", "host", u.Host, "err", err)
		} else if robots, err = robotstxt.FromStatusAndBytes(status, body); err != nil {
			f.logger.Debug("robots.txt unparseable", "host", u.Host, "err", err)
			robots = nil
		}
		f.robots.Add(key, robots)
	}
	if robots == nil {
		return true
	}
	return robots.TestAgent(u.RequestURI(), f.userAgent)
}
