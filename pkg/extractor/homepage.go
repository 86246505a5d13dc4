package extractor

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"

	"github.com/amosWeiskopf/schemasmith/internal/config"
	"github.com/amosWeiskopf/schemasmith/internal/models"
	"github.com/amosWeiskopf/schemasmith/pkg/fetcher"
)

// HomepageExtractor reads the organization name and footer social links
// from a homepage with a single fetch
type HomepageExtractor struct {
	fetcher fetcher.Fetcher
	social  *SocialExtractor
	logger  *slog.Logger
}

// Homepage is what a homepage contributes to an organization
type Homepage struct {
	Name   string
	Social models.SocialLinks
}

// NewHomepageExtractor creates a HomepageExtractor
func NewHomepageExtractor(f fetcher.Fetcher, site config.Site, logger *slog.Logger) *HomepageExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &HomepageExtractor{
		fetcher: f,
		social:  NewSocialExtractor(f, site, logger),
		logger:  logger,
	}
}

// Extract fetches pageURL once and derives the site name and social links.
// On fetch failure both are empty.
func (e *HomepageExtractor) Extract(ctx context.Context, pageURL string) Homepage {
	e.logger.Info("extracting homepage", "url", pageURL)

	p, err := fetchPage(ctx, e.fetcher, pageURL)
	if err != nil {
		e.logger.Warn("homepage extraction failed", "url", pageURL, "err", err)
		return Homepage{Social: models.SocialLinks{}}
	}
	return Homepage{
		Name:   siteName(p, e.logger),
		Social: e.social.FromDocument(p.doc, pageURL),
	}
}

// siteName prefers the metadata found by trafilatura and falls back to og:site_name
func siteName(p *page, logger *slog.Logger) string {
	opts := trafilatura.Options{}
	if u, err := url.Parse(p.url); err == nil {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(bytes.NewReader(p.body), opts)
	if err == nil && result != nil {
		if name := strings.TrimSpace(result.Metadata.Sitename); name != "" {
			return name
		}
	} else if err != nil {
		logger.Debug("metadata extraction failed", "url", p.url, "err", err)
	}

	return ogSiteName(p.doc)
}

func ogSiteName(doc *goquery.Document) string {
	content, _ := doc.Find(`meta[property="og:site_name"]`).First().Attr("content")
	return strings.TrimSpace(content)
}
