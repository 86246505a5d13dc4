// Package fetchertest provides an in-memory fetcher for tests
package fetchertest

import (
	"context"
	"sync"
	"time"

	"github.com/amosWeiskopf/schemasmith/pkg/fetcher"
)

// Fetcher serves canned bodies by URL and records how it was called.
// Unknown URLs fail with a 404 *fetcher.FetchError.
type Fetcher struct {
	// Delay is applied to every call, which makes overlapping calls observable
	Delay time.Duration

	mu       sync.Mutex
	pages    map[string]string
	errs     map[string]error
	calls    []string
	inFlight int
	maxSeen  int
}

// New returns a Fetcher serving pages (url -> body)
func New(pages map[string]string) *Fetcher {
	f := &Fetcher{
		pages: make(map[string]string, len(pages)),
		errs:  make(map[string]error),
	}
	for u, body := range pages {
		f.pages[u] = body
	}
	return f
}

// Set registers body for url
func (f *Fetcher) Set(url, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[url] = body
}

// Fail makes every fetch of url return err
func (f *Fetcher) Fail(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[url] = err
}

// Fetch implements fetcher.Fetcher
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return nil, &fetcher.FetchError{URL: url, Err: ctx.Err()}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	body, ok := f.pages[url]
	if !ok {
		return nil, &fetcher.FetchError{URL: url, StatusCode: 404}
	}
	return []byte(body), nil
}

// Calls returns the fetched URLs in call order
func (f *Fetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// MaxInFlight returns the highest number of concurrent Fetch calls observed
func (f *Fetcher) MaxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxSeen
}
