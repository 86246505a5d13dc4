// Package sitemap flattens a sitemap or sitemap index into an ordered list of
// URL entries with their alternate-locale links.
package sitemap

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/amosWeiskopf/schemasmith/internal/models"
	"github.com/amosWeiskopf/schemasmith/pkg/fetcher"
)

// ParseError reports a sitemap document that is not well-formed XML
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse sitemap %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// document covers both <sitemapindex> and <urlset>; the root name decides
// which slice is meaningful.
type document struct {
	XMLName  xml.Name
	Sitemaps []indexEntry `xml:"sitemap"`
	URLs     []urlEntry   `xml:"url"`
}

type indexEntry struct {
	Loc string `xml:"loc"`
}

type urlEntry struct {
	Loc   string     `xml:"loc"`
	Links []linkElem `xml:"link"`
}

// linkElem matches <xhtml:link> under any namespace prefix
type linkElem struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// Loader fetches sitemaps and follows sitemap indexes depth-first
type Loader struct {
	fetcher  fetcher.Fetcher
	maxDepth int
	logger   *slog.Logger
}

// NewLoader creates a Loader. maxDepth bounds how many index levels are followed below the root.
func NewLoader(f fetcher.Fetcher, maxDepth int, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fetcher: f, maxDepth: maxDepth, logger: logger}
}

// Load returns the entries of the sitemap at url, concatenating child
// sitemaps of an index in document order. Failures below the root are logged
// and contribute no entries; a failure of the root itself is returned.
func (l *Loader) Load(ctx context.Context, url string) ([]models.SitemapEntry, error) {
	return l.load(ctx, url, []string{url})
}

func (l *Loader) load(ctx context.Context, url string, chain []string) ([]models.SitemapEntry, error) {
	l.logger.Info("fetching sitemap", "url", url)

	body, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := parse(url, body)
	if err != nil {
		return nil, err
	}

	switch doc.XMLName.Local {
	case "sitemapindex":
		l.logger.Info("found sub-sitemaps", "url", url, "count", len(doc.Sitemaps))
		return l.loadChildren(ctx, doc.Sitemaps, chain), nil
	case "urlset":
		l.logger.Info("found urls", "url", url, "count", len(doc.URLs))
		return toEntries(doc.URLs), nil
	default:
		l.logger.Warn("unrecognized sitemap root element", "url", url, "root", doc.XMLName.Local)
		return nil, nil
	}
}

func (l *Loader) loadChildren(ctx context.Context, children []indexEntry, chain []string) []models.SitemapEntry {
	var entries []models.SitemapEntry
	for _, child := range children {
		loc := strings.TrimSpace(child.Loc)
		if loc == "" {
			continue
		}
		if len(chain) > l.maxDepth {
			l.logger.Warn("sitemap index too deep, skipping", "url", loc, "depth", len(chain))
			continue
		}
		if onChain(chain, loc) {
			l.logger.Warn("sitemap index cycle, skipping", "url", loc)
			continue
		}
		if ctx.Err() != nil {
			l.logger.Warn("sitemap loading canceled", "url", loc, "err", ctx.Err())
			break
		}

		sub, err := l.load(ctx, loc, append(chain[:len(chain):len(chain)], loc))
		if err != nil {
			l.logger.Warn("failed to load sitemap", "url", loc, "err", err)
			continue
		}
		entries = append(entries, sub...)
	}
	return entries
}

func onChain(chain []string, url string) bool {
	for _, u := range chain {
		if u == url {
			return true
		}
	}
	return false
}

func toEntries(urls []urlEntry) []models.SitemapEntry {
	entries := make([]models.SitemapEntry, 0, len(urls))
	for _, u := range urls {
		loc := strings.TrimSpace(u.Loc)
		if loc == "" {
			continue
		}
		entry := models.SitemapEntry{Loc: loc}
		for _, link := range u.Links {
			if link.Rel != "alternate" || link.Hreflang == "" {
				continue
			}
			entry.Alternates = append(entry.Alternates, models.Alternate{
				Hreflang: link.Hreflang,
				Href:     strings.TrimSpace(link.Href),
			})
		}
		entries = append(entries, entry)
	}
	return entries
}

// parse decodes a sitemap body, transparently handling gzip and non-UTF-8 encodings
func parse(url string, body []byte) (*document, error) {
	if bytes.HasPrefix(body, []byte{0x1f, 0x8b}) {
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, &ParseError{URL: url, Err: err}
		}
		defer zr.Close()
		if body, err = io.ReadAll(zr); err != nil {
			return nil, &ParseError{URL: url, Err: err}
		}
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{URL: url, Err: err}
	}
	return &doc, nil
}
