package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/schemasmith/internal/config"
)

func newTestFetcher(t *testing.T, mutate func(c *config.FetcherConfig)) *HTTPFetcher {
	t.Helper()
	cfg := config.Default().Fetcher
	cfg.Timeout = 5 * time.Second
	if mutate != nil {
		mutate(&cfg)
	}
	f, err := NewHTTPFetcher(cfg, nil)
	require.NoError(t, err)
	return f
}

func TestFetchOK(t *testing.T) {
	var gotUA atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>hello</body></html>`))
	}))
	defer server.Close()

	f := newTestFetcher(t, nil)
	body, err := f.Fetch(context.Background(), server.URL+"/")
	require.NoError(t, err)

	assert.Contains(t, string(body), "hello")
	assert.Equal(t, config.DefaultUserAgent, gotUA.Load())
}

func TestFetchStatusError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "not found", status: http.StatusNotFound},
		{name: "server error", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			f := newTestFetcher(t, nil)
			_, err := f.Fetch(context.Background(), server.URL+"/missing")
			require.Error(t, err)

			var fe *FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.status, fe.StatusCode)
			assert.Equal(t, server.URL+"/missing", fe.URL)
		})
	}
}

func TestFetchNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	f := newTestFetcher(t, nil)
	_, err := f.Fetch(context.Background(), addr+"/")

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Zero(t, fe.StatusCode)
	assert.Error(t, fe.Unwrap())
}

func TestFetchCache(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("page"))
	}))
	defer server.Close()

	f := newTestFetcher(t, nil)
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), server.URL+"/a")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	uncached := newTestFetcher(t, func(c *config.FetcherConfig) { c.CacheSize = 0 })
	for i := 0; i < 2; i++ {
		_, err := uncached.Fetch(context.Background(), server.URL+"/a")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestRespectRobotsTxt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
		default:
			w.Write([]byte("ok"))
		}
	}))
	defer server.Close()

	f := newTestFetcher(t, func(c *config.FetcherConfig) { c.FollowRobotsTxt = true })

	_, err := f.Fetch(context.Background(), server.URL+"/public/page")
	assert.NoError(t, err)

	_, err = f.Fetch(context.Background(), server.URL+"/private/page")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDisallowed)
}

func TestRateLimiting(t *testing.T) {
	var times []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		times = append(times, time.Now())
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := newTestFetcher(t, func(c *config.FetcherConfig) {
		c.RequestsPerSecond = 5
		c.Burst = 1
		c.CacheSize = 0
	})

	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), server.URL+"/")
		require.NoError(t, err)
	}

	require.Len(t, times, 3)
	for i := 1; i < len(times); i++ {
		// 200ms spacing, with some tolerance
		assert.Greater(t, times[i].Sub(times[i-1]).Milliseconds(), int64(150))
	}
}

func TestFetchCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := newTestFetcher(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, server.URL+"/")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFunc(t *testing.T) {
	var f Fetcher = Func(func(ctx context.Context, url string) ([]byte, error) {
		return []byte(url), nil
	})
	body, err := f.Fetch(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", string(body))
}
