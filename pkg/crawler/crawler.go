// Package crawler runs the sitemap pipeline: load the sitemap, group its
// URLs into logical pages, then build one organization config per country.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/amosWeiskopf/schemasmith/internal/config"
	"github.com/amosWeiskopf/schemasmith/internal/models"
	"github.com/amosWeiskopf/schemasmith/pkg/builder"
	"github.com/amosWeiskopf/schemasmith/pkg/fetcher"
	"github.com/amosWeiskopf/schemasmith/pkg/grouper"
	"github.com/amosWeiskopf/schemasmith/pkg/locale"
	"github.com/amosWeiskopf/schemasmith/pkg/sitemap"
)

// Crawler wires the pipeline stages around a single fetcher
type Crawler struct {
	fetcher  fetcher.Fetcher
	site     config.Site
	resolver *locale.Resolver
	logger   *slog.Logger
}

// Result is the outcome of one pipeline run
type Result struct {
	RunID      string
	SitemapURL string
	StartedAt  time.Time
	Duration   time.Duration
	Entries    int
	Groups     []models.PageGroup
	Configs    []models.CountryOrganizationConfig
}

// New creates a Crawler for the given site tables
func New(f fetcher.Fetcher, site config.Site, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{
		fetcher:  f,
		site:     site,
		resolver: locale.NewResolver(site),
		logger:   logger,
	}
}

// Run executes the pipeline for sitemapURL. The only error is a root
// sitemap that cannot be fetched or parsed; everything below it degrades
// to partial results.
func (c *Crawler) Run(ctx context.Context, sitemapURL string) (*Result, error) {
	res := &Result{
		RunID:      uuid.NewString(),
		SitemapURL: sitemapURL,
		StartedAt:  time.Now(),
	}
	log := c.logger.With("run_id", res.RunID)

	log.Info("loading sitemap", "url", sitemapURL)
	entries, err := c.loader(log).Load(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("load sitemap %s: %w", sitemapURL, err)
	}
	res.Entries = len(entries)

	log.Info("grouping pages", "entries", len(entries))
	res.Groups = grouper.New(c.site, c.resolver, log).Group(entries)
	log.Info("identified page groups", "groups", len(res.Groups))

	log.Info("building country configuration")
	res.Configs = builder.New(c.fetcher, c.site, c.resolver, log).Build(ctx, res.Groups)

	res.Duration = time.Since(res.StartedAt)
	log.Info("run complete",
		"countries", len(res.Configs),
		"pages", lo.SumBy(res.Configs, func(cfg models.CountryOrganizationConfig) int { return len(cfg.Pages) }),
		"duration", res.Duration)
	return res, nil
}

func (c *Crawler) loader(log *slog.Logger) *sitemap.Loader {
	return sitemap.NewLoader(c.fetcher, c.site.MaxSitemapDepth, log)
}

// Inspection summarizes a sitemap without fetching any pages
type Inspection struct {
	SitemapURL          string
	Total               int
	WithAlternates      int
	Groups              int
	First               *models.SitemapEntry
	FirstWithAlternates *models.SitemapEntry
	Alternates          []AlternateInfo
}

// AlternateInfo annotates an alternate link with the hreflang table
type AlternateInfo struct {
	models.Alternate
	CountryCode string
	Locale      string
	Known       bool
}

// Inspect loads sitemapURL and reports how it would be grouped
func (c *Crawler) Inspect(ctx context.Context, sitemapURL string) (*Inspection, error) {
	entries, err := c.loader(c.logger).Load(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("load sitemap %s: %w", sitemapURL, err)
	}

	in := &Inspection{
		SitemapURL: sitemapURL,
		Total:      len(entries),
		WithAlternates: lo.CountBy(entries, func(e models.SitemapEntry) bool {
			return len(e.Alternates) > 0
		}),
		Groups: len(grouper.New(c.site, c.resolver, c.logger).Group(entries)),
	}
	if len(entries) > 0 {
		in.First = &entries[0]
	}
	if e, ok := lo.Find(entries, func(e models.SitemapEntry) bool { return len(e.Alternates) > 0 }); ok {
		in.FirstWithAlternates = &e
		for _, alt := range e.Alternates {
			info := AlternateInfo{Alternate: alt}
			if r, ok := c.resolver.Hreflang(alt.Hreflang); ok {
				info.CountryCode, info.Locale, info.Known = r.CountryCode, r.Locale, true
			}
			in.Alternates = append(in.Alternates, info)
		}
	}
	return in, nil
}
