// Package locale maps URLs to a (country, locale) pair using the host and
// path-prefix tables of the site configuration.
package locale

import (
	"net/url"
	"strings"

	"github.com/amosWeiskopf/schemasmith/internal/config"
)

// Resolution is the country and locale assigned to a URL
type Resolution struct {
	CountryCode string
	Locale      string
}

// Resolver is immutable after construction and safe for concurrent use
type Resolver struct {
	hosts    map[string]Resolution
	prefixes map[string]Resolution
	hreflang map[string]Resolution
	fallback Resolution
}

// NewResolver indexes the lookup tables of site. Earlier rows win on duplicate keys.
func NewResolver(site config.Site) *Resolver {
	r := &Resolver{
		hosts:    make(map[string]Resolution, len(site.Hosts)),
		prefixes: make(map[string]Resolution, len(site.PathPrefixes)),
		hreflang: make(map[string]Resolution, len(site.HreflangMappings)),
		fallback: Resolution{CountryCode: site.FallbackCountry, Locale: site.FallbackLocale},
	}
	for _, m := range site.Hosts {
		key := strings.ToLower(m.Host)
		if _, ok := r.hosts[key]; !ok {
			r.hosts[key] = Resolution{CountryCode: m.Country, Locale: m.Locale}
		}
	}
	for _, m := range site.PathPrefixes {
		if _, ok := r.prefixes[m.Prefix]; !ok {
			r.prefixes[m.Prefix] = Resolution{CountryCode: m.Country, Locale: m.Locale}
		}
	}
	for _, m := range site.HreflangMappings {
		key := strings.ToLower(m.Hreflang)
		if _, ok := r.hreflang[key]; !ok {
			r.hreflang[key] = Resolution{CountryCode: m.Country, Locale: m.Locale}
		}
	}
	return r
}

// Resolve assigns a country and locale to rawURL: exact hostname first, then
// the first non-empty path segment, then the fallback. It never fails.
func (r *Resolver) Resolve(rawURL string) Resolution {
	u, err := url.Parse(rawURL)
	if err != nil {
		return r.fallback
	}
	if res, ok := r.Host(u.Hostname()); ok {
		return res
	}
	if res, ok := r.Prefix(FirstSegment(u.EscapedPath())); ok {
		return res
	}
	return r.fallback
}

// Host looks up a hostname, case-insensitively
func (r *Resolver) Host(host string) (Resolution, bool) {
	res, ok := r.hosts[strings.ToLower(host)]
	return res, ok
}

// Prefix looks up a path segment
func (r *Resolver) Prefix(segment string) (Resolution, bool) {
	if segment == "" {
		return Resolution{}, false
	}
	res, ok := r.prefixes[segment]
	return res, ok
}

// IsPrefix reports whether segment is a known locale path prefix
func (r *Resolver) IsPrefix(segment string) bool {
	_, ok := r.Prefix(segment)
	return ok
}

// Hreflang looks up an hreflang code. It is informational only and never
// used to assign a country to a URL.
func (r *Resolver) Hreflang(code string) (Resolution, bool) {
	res, ok := r.hreflang[strings.ToLower(code)]
	return res, ok
}

// Fallback returns the resolution used for unmapped URLs
func (r *Resolver) Fallback() Resolution {
	return r.fallback
}

// FirstSegment returns the first non-empty segment of a URL path
func FirstSegment(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}
