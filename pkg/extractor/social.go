package extractor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amosWeiskopf/schemasmith/internal/config"
	"github.com/amosWeiskopf/schemasmith/internal/models"
	"github.com/amosWeiskopf/schemasmith/pkg/fetcher"
	"github.com/amosWeiskopf/schemasmith/pkg/utils"
)

// SocialExtractor collects whitelisted social profile links from a page footer
type SocialExtractor struct {
	fetcher fetcher.Fetcher
	site    config.Site
	logger  *slog.Logger
}

// NewSocialExtractor creates a SocialExtractor
func NewSocialExtractor(f fetcher.Fetcher, site config.Site, logger *slog.Logger) *SocialExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SocialExtractor{fetcher: f, site: site, logger: logger}
}

// Extract fetches pageURL and returns its footer social links. It never
// fails: on error or without a footer the result is empty.
func (e *SocialExtractor) Extract(ctx context.Context, pageURL string) models.SocialLinks {
	e.logger.Info("extracting social links", "url", pageURL)

	p, err := fetchPage(ctx, e.fetcher, pageURL)
	if err != nil {
		e.logger.Warn("social extraction failed", "url", pageURL, "err", err)
		return models.SocialLinks{}
	}
	return e.FromDocument(p.doc, pageURL)
}

// FromDocument returns the footer social links of an already parsed page
func (e *SocialExtractor) FromDocument(doc *goquery.Document, pageURL string) models.SocialLinks {
	social := models.SocialLinks{}

	footer := e.footer(doc)
	if footer == nil {
		e.logger.Warn("no footer found", "url", pageURL, "selectors", strings.Join(e.site.Selectors.Footer, ", "))
		return social
	}

	footer.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		if !utils.ContainsAny(href, e.site.SocialWhitelist) || utils.ContainsAny(href, e.site.SocialIgnorePatterns) {
			return
		}
		if key, ok := e.platform(href); ok {
			social[key] = resolveURL(pageURL, href)
		}
	})
	return social
}

// footer returns every match of the first footer selector that matches anything
func (e *SocialExtractor) footer(doc *goquery.Document) *goquery.Selection {
	for _, sel := range e.site.Selectors.Footer {
		if s := doc.Find(sel); s.Length() > 0 {
			return s
		}
	}
	return nil
}

// platform returns the first configured platform whose domains appear in href
func (e *SocialExtractor) platform(href string) (string, bool) {
	for _, p := range e.site.SocialPlatforms {
		if utils.ContainsAny(href, p.Domains) {
			return p.Key, true
		}
	}
	return "", false
}
