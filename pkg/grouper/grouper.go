// Package grouper merges per-locale sitemap URLs into logical page groups
// keyed by a canonical page identifier.
package grouper

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/amosWeiskopf/schemasmith/internal/config"
	"github.com/amosWeiskopf/schemasmith/internal/models"
	"github.com/amosWeiskopf/schemasmith/pkg/locale"
)

// canonicalOrder is the hreflang preference used to pick the URL a page ID is derived from
var canonicalOrder = []string{"x-default", "en-GB", "en-US"}

// Grouper builds page groups from sitemap entries
type Grouper struct {
	resolver *locale.Resolver
	ignore   []string
	strategy string
	logger   *slog.Logger
}

// New creates a Grouper for the given site tables
func New(site config.Site, resolver *locale.Resolver, logger *slog.Logger) *Grouper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grouper{
		resolver: resolver,
		ignore: lo.FilterMap(site.URLIgnorePatterns, func(p string, _ int) (string, bool) {
			return strings.ToLower(p), p != ""
		}),
		strategy: site.PageIDStrategy,
		logger:   logger,
	}
}

// Group processes entries in order and returns groups in first-seen page ID
// order. Within a group, locales keep encounter order and URLs are unique.
func (g *Grouper) Group(entries []models.SitemapEntry) []models.PageGroup {
	var groups []*models.PageGroup
	byID := make(map[string]*models.PageGroup)

	for _, entry := range entries {
		if g.ignored(entry.Loc) {
			continue
		}
		if _, err := parseAbsolute(entry.Loc); err != nil {
			g.logger.Warn("skipping invalid URL", "url", entry.Loc, "err", err)
			continue
		}
		res := g.resolver.Resolve(entry.Loc)

		canonical := Canonical(entry)
		cu, err := parseAbsolute(canonical)
		if err != nil {
			g.logger.Warn("skipping invalid canonical URL", "url", entry.Loc, "canonical", canonical, "err", err)
			continue
		}

		pageID := g.PageID(cu)
		if g.ignored(pageID) {
			continue
		}

		group, ok := byID[pageID]
		if !ok {
			group = &models.PageGroup{PageID: pageID}
			byID[pageID] = group
			groups = append(groups, group)
		}
		if group.HasURL(entry.Loc) {
			continue
		}
		group.Locales = append(group.Locales, models.PageLocale{
			Locale:      res.Locale,
			CountryCode: res.CountryCode,
			URL:         entry.Loc,
		})
	}

	return lo.Map(groups, func(g *models.PageGroup, _ int) models.PageGroup { return *g })
}

// Canonical returns the URL used for page identity: the x-default, en-GB or
// en-US alternate in that order, else the first alternate, else the entry itself.
func Canonical(entry models.SitemapEntry) string {
	if len(entry.Alternates) == 0 {
		return entry.Loc
	}
	for _, lang := range canonicalOrder {
		if alt, ok := lo.Find(entry.Alternates, func(a models.Alternate) bool { return a.Hreflang == lang }); ok {
			return alt.Href
		}
	}
	return entry.Alternates[0].Href
}

// PageID derives the page identifier from a canonical URL path
func (g *Grouper) PageID(u *url.URL) string {
	path := u.EscapedPath()
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}

	if g.strategy != config.PageIDPathFull {
		segments := lo.Filter(strings.Split(path, "/"), func(s string, _ int) bool { return s != "" })
		if len(segments) > 0 && g.resolver.IsPrefix(segments[0]) {
			path = "/" + strings.Join(segments[1:], "/")
		}
	}

	if path == "" {
		path = "/"
	}
	return path
}

func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("not an absolute URL: %q", raw)
	}
	return u, nil
}

func (g *Grouper) ignored(s string) bool {
	s = strings.ToLower(s)
	return lo.SomeBy(g.ignore, func(p string) bool { return strings.Contains(s, p) })
}
