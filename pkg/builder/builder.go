// Package builder turns page groups into one organization configuration per
// country, extracting homepage and contact details concurrently.
package builder

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/amosWeiskopf/schemasmith/internal/config"
	"github.com/amosWeiskopf/schemasmith/internal/models"
	"github.com/amosWeiskopf/schemasmith/pkg/extractor"
	"github.com/amosWeiskopf/schemasmith/pkg/fetcher"
	"github.com/amosWeiskopf/schemasmith/pkg/locale"
	"github.com/amosWeiskopf/schemasmith/pkg/utils"
)

// ErrNoHomepage means no usable URL was found for a country, so its
// organization block stays empty
var ErrNoHomepage = errors.New("no homepage found")

// Builder assembles country configurations
type Builder struct {
	site     config.Site
	resolver *locale.Resolver
	homepage *extractor.HomepageExtractor
	contact  *extractor.ContactExtractor
	logger   *slog.Logger
}

// New creates a Builder. All page fetches go through f.
func New(f fetcher.Fetcher, site config.Site, resolver *locale.Resolver, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		site:     site,
		resolver: resolver,
		homepage: extractor.NewHomepageExtractor(f, site, logger),
		contact:  extractor.NewContactExtractor(f, site, logger),
		logger:   logger,
	}
}

// Build returns one configuration per country in first-seen order. The
// structural fields are filled synchronously; organization details are
// extracted by one task per country, at most MaxConcurrentRequests at a time.
// Extraction failures are logged and never fail the build.
func (b *Builder) Build(ctx context.Context, groups []models.PageGroup) []models.CountryOrganizationConfig {
	configs := collect(groups)

	var eg errgroup.Group
	eg.SetLimit(max(b.site.MaxConcurrentRequests, 1))

	for i := range configs {
		if ctx.Err() != nil {
			b.logger.Warn("build canceled, skipping remaining countries", "country", configs[i].CountryCode, "err", ctx.Err())
			break
		}
		cfg := &configs[i]
		eg.Go(func() error {
			b.enrich(ctx, groups, cfg)
			return nil
		})
	}
	_ = eg.Wait()

	return configs
}

// collect builds the structural part of every country configuration
func collect(groups []models.PageGroup) []models.CountryOrganizationConfig {
	var configs []*models.CountryOrganizationConfig
	byCountry := make(map[string]*models.CountryOrganizationConfig)

	for _, g := range groups {
		listed := make(map[string]bool)
		for _, l := range g.Locales {
			cfg, ok := byCountry[l.CountryCode]
			if !ok {
				cfg = models.NewCountryConfig(l.CountryCode, l.Locale)
				byCountry[l.CountryCode] = cfg
				configs = append(configs, cfg)
			}
			if !lo.Contains(cfg.AvailableLocales, l.Locale) {
				cfg.AvailableLocales = append(cfg.AvailableLocales, l.Locale)
			}
			if !listed[l.CountryCode] {
				listed[l.CountryCode] = true
				cfg.Pages = append(cfg.Pages, models.PageEntry{PageID: g.PageID, URL: l.URL})
			}
		}
	}

	return lo.Map(configs, func(c *models.CountryOrganizationConfig, _ int) models.CountryOrganizationConfig {
		return *c
	})
}

// enrich fills the organization block of cfg. It only writes to cfg.
func (b *Builder) enrich(ctx context.Context, groups []models.PageGroup, cfg *models.CountryOrganizationConfig) {
	log := b.logger.With("country", cfg.CountryCode)

	homepage, ok := b.homepageFor(groups, cfg)
	if !ok {
		log.Warn("could not determine homepage", "err", ErrNoHomepage)
		return
	}
	cfg.Organization.URL = homepage

	home := b.homepage.Extract(ctx, homepage)
	cfg.Organization.Name = home.Name
	cfg.Organization.Social = home.Social

	contactURL, ok := b.contactPage(groups, cfg.CountryCode)
	if !ok {
		log.Warn("no contact page found in sitemap")
		return
	}
	cfg.Organization.Contact = b.contact.Extract(ctx, contactURL, cfg.CountryCode)
}

// homepageFor derives the homepage from the first URL of the country:
// scheme and host, plus the path prefix when it maps to this country.
// It also sets BaseDomain and refines DefaultLocale from the host table.
func (b *Builder) homepageFor(groups []models.PageGroup, cfg *models.CountryOrganizationConfig) (string, bool) {
	for _, g := range groups {
		l, ok := g.FirstForCountry(cfg.CountryCode)
		if !ok {
			continue
		}
		u, err := url.Parse(l.URL)
		if err != nil || u.Host == "" {
			continue
		}

		homepage := u.Scheme + "://" + u.Host + "/"
		seg := locale.FirstSegment(u.EscapedPath())
		if res, ok := b.resolver.Prefix(seg); ok && res.CountryCode == cfg.CountryCode {
			homepage += seg + "/"
		}

		cfg.BaseDomain = u.Hostname()
		if res, ok := b.resolver.Host(u.Hostname()); ok {
			cfg.DefaultLocale = res.Locale
		}
		return homepage, true
	}
	return "", false
}

// contactPage applies the contact patterns in priority order. The first
// pattern matched by any group wins, using that group's URL for the country.
func (b *Builder) contactPage(groups []models.PageGroup, countryCode string) (string, bool) {
	for _, pattern := range b.site.ContactPagePatterns {
		if pattern == "" {
			continue
		}
		for _, g := range groups {
			l, ok := g.FirstForCountry(countryCode)
			if !ok {
				continue
			}
			if utils.ContainsFold(l.URL, pattern) || utils.ContainsFold(g.PageID, pattern) {
				return l.URL, true
			}
		}
	}
	return "", false
}
