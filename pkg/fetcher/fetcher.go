// Package fetcher provides the fetch capability used by every stage of the
// pipeline: fetch(url) -> raw bytes, failing with a *FetchError.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Fetcher retrieves the body of a URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Func adapts an ordinary function to the Fetcher interface
type Func func(ctx context.Context, url string) ([]byte, error)

// Fetch calls f(ctx, url)
func (f Func) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// ErrDisallowed is wrapped by FetchError when robots.txt forbids a URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

// FetchError reports a network or HTTP failure for a single URL
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
