package models

// Alternate is an alternate-locale link declared for a sitemap URL
type Alternate struct {
	Hreflang string `json:"hreflang"`
	Href     string `json:"href"`
}

// SitemapEntry represents a single <url> of a flattened sitemap
type SitemapEntry struct {
	Loc        string      `json:"loc"`
	Alternates []Alternate `json:"alternates,omitempty"`
}

// PageLocale is one localized URL of a logical page
type PageLocale struct {
	Locale      string `json:"locale"`
	CountryCode string `json:"countryCode"`
	URL         string `json:"url"`
}

// PageGroup links the same logical page across locales
type PageGroup struct {
	PageID  string       `json:"pageId"`
	Locales []PageLocale `json:"locales"`
}

// HasURL reports whether the group already holds rawURL
func (g *PageGroup) HasURL(rawURL string) bool {
	for _, l := range g.Locales {
		if l.URL == rawURL {
			return true
		}
	}
	return false
}

// FirstForCountry returns the first locale of the group that belongs to countryCode
func (g *PageGroup) FirstForCountry(countryCode string) (PageLocale, bool) {
	for _, l := range g.Locales {
		if l.CountryCode == countryCode {
			return l, true
		}
	}
	return PageLocale{}, false
}

// PageEntry is a page listed in a country configuration
type PageEntry struct {
	PageID string `json:"pageId"`
	URL    string `json:"url"`
}
