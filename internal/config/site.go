package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Page ID strategies
const (
	PageIDPathNoLocale = "path-no-locale"
	PageIDPathFull     = "path-full"
)

// Site holds the static tables that drive locale resolution and extraction.
// It is passed by value into every component and never mutated after Load.
type Site struct {
	Hosts            []LocaleMapping `mapstructure:"hosts"`
	PathPrefixes     []LocaleMapping `mapstructure:"path_prefixes"`
	HreflangMappings []LocaleMapping `mapstructure:"hreflang_mappings"`

	// Substrings that identify a contact page, highest priority first
	ContactPagePatterns []string `mapstructure:"contact_page_patterns"`

	Selectors Selectors `mapstructure:"selectors"`

	SocialWhitelist      []string         `mapstructure:"social_whitelist"`
	SocialPlatforms      []SocialPlatform `mapstructure:"social_platforms"`
	SocialIgnorePatterns []string         `mapstructure:"social_ignore_patterns"`

	CallingCodes         []CallingCode `mapstructure:"calling_codes"`
	ForeignPhonePrefixes []string      `mapstructure:"foreign_phone_prefixes"`

	URLIgnorePatterns []string `mapstructure:"url_ignore_patterns"`

	MaxConcurrentRequests int    `mapstructure:"max_concurrent_requests"`
	MaxSitemapDepth       int    `mapstructure:"max_sitemap_depth"`
	PageIDStrategy        string `mapstructure:"page_id_strategy"`
	FallbackCountry       string `mapstructure:"fallback_country"`
	FallbackLocale        string `mapstructure:"fallback_locale"`
}

// LocaleMapping maps a hostname, path prefix or hreflang code to a country and locale.
// Exactly one of Host, Prefix or Hreflang is set depending on the table.
type LocaleMapping struct {
	Host     string `mapstructure:"host"`
	Prefix   string `mapstructure:"prefix"`
	Hreflang string `mapstructure:"hreflang"`
	Country  string `mapstructure:"country"`
	Locale   string `mapstructure:"locale"`
}

// Selectors are CSS selectors tried in order
type Selectors struct {
	Footer  []string `mapstructure:"footer"`
	Nav     []string `mapstructure:"nav"`
	Address []string `mapstructure:"address"`
	Email   []string `mapstructure:"email"`
}

// SocialPlatform assigns links containing one of Domains to Key
type SocialPlatform struct {
	Key     string   `mapstructure:"key"`
	Domains []string `mapstructure:"domains"`
}

// CallingCode is the international dialing prefix of a country
type CallingCode struct {
	Country string `mapstructure:"country"`
	Code    string `mapstructure:"code"`
}

// CallingCode returns the dialing prefix for countryCode, e.g. "+48"
func (s Site) CallingCode(countryCode string) (string, bool) {
	cc, ok := lo.Find(s.CallingCodes, func(c CallingCode) bool {
		return strings.EqualFold(c.Country, countryCode)
	})
	return cc.Code, ok
}

// Validate checks the tables for missing fields and bad limits
func (s Site) Validate() error {
	if s.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("max_concurrent_requests must be positive")
	}
	if s.MaxSitemapDepth <= 0 {
		return fmt.Errorf("max_sitemap_depth must be positive")
	}
	if s.PageIDStrategy != PageIDPathNoLocale && s.PageIDStrategy != PageIDPathFull {
		return fmt.Errorf("unknown page_id_strategy %q", s.PageIDStrategy)
	}
	if s.FallbackCountry == "" || s.FallbackLocale == "" {
		return fmt.Errorf("fallback_country and fallback_locale are required")
	}
	for _, m := range s.Hosts {
		if m.Host == "" || m.Country == "" || m.Locale == "" {
			return fmt.Errorf("hosts: host, country and locale are required (%+v)", m)
		}
	}
	for _, m := range s.PathPrefixes {
		if m.Prefix == "" || m.Country == "" || m.Locale == "" {
			return fmt.Errorf("path_prefixes: prefix, country and locale are required (%+v)", m)
		}
	}
	for _, m := range s.HreflangMappings {
		if m.Hreflang == "" || m.Country == "" {
			return fmt.Errorf("hreflang_mappings: hreflang and country are required (%+v)", m)
		}
	}
	for _, p := range s.SocialPlatforms {
		if p.Key == "" || len(p.Domains) == 0 {
			return fmt.Errorf("social_platforms: key and domains are required (%+v)", p)
		}
	}
	for _, c := range s.CallingCodes {
		if c.Country == "" || strings.Trim(c.Code, "+") == "" {
			return fmt.Errorf("calling_codes: country and code are required (%+v)", c)
		}
	}
	return nil
}

func host(h, country, locale string) LocaleMapping {
	return LocaleMapping{Host: h, Country: country, Locale: locale}
}

func prefix(p, country, locale string) LocaleMapping {
	return LocaleMapping{Prefix: p, Country: country, Locale: locale}
}

func hreflang(code, country, locale string) LocaleMapping {
	return LocaleMapping{Hreflang: code, Country: country, Locale: locale}
}

// DefaultSite returns the built-in tables. Hosts are examples meant to be overridden.
func DefaultSite() Site {
	return Site{
		Hosts: []LocaleMapping{
			host("uk.example.com", "UK", "en-GB"),
			host("de.example.com", "DE", "de-DE"),
			host("fr.example.com", "FR", "fr-FR"),
			host("www.example.com", "US", "en-US"),
			host("www.smallerearth.com", "WW", "en-US"),
		},
		PathPrefixes: []LocaleMapping{
			prefix("uk", "UK", "en-GB"),
			prefix("cz", "CZ", "cs-CZ"),
			prefix("hu", "HU", "hu-HU"),
			prefix("pl", "PL", "pl-PL"),
			prefix("sk", "SK", "sk-SK"),
			prefix("mx", "MX", "es-MX"),
			prefix("cl", "CL", "es-CL"),
			prefix("pe", "PE", "es-PE"),
			prefix("br", "BR", "pt-BR"),
			prefix("co", "CO", "es-CO"),
			prefix("nz", "NZ", "en-NZ"),
			prefix("au", "AU", "en-AU"),
			prefix("us", "US", "en-US"),
			prefix("ie", "IE", "en-IE"),
			prefix("de", "DE", "de-DE"),
			prefix("es", "ES", "es-ES"),
			prefix("rosa", "ROSA", "es-419"),
			prefix("ww", "WW", "en-US"),
			prefix("eu", "EU", "en-EU"),
		},
		HreflangMappings: []LocaleMapping{
			hreflang("en-IE", "IE", "en-IE"),
			hreflang("en-AU", "AU", "en-AU"),
			hreflang("en-NZ", "NZ", "en-NZ"),
			hreflang("de-DE", "DE", "de-DE"),
			hreflang("es-ES", "ES", "es-ES"),
			hreflang("hu", "HU", "hu-HU"),
			hreflang("pl", "PL", "pl-PL"),
			hreflang("sk", "SK", "sk-SK"),
			hreflang("es-MX", "MX", "es-MX"),
			hreflang("es-CO", "CO", "es-CO"),
			hreflang("en-FR", "EU", "en-EU"),
			hreflang("en", "WW", "en-US"),
			hreflang("es-AR", "ROSA", "es-419"),
			hreflang("nl", "NL", "nl-NL"),
			hreflang("cs", "CZ", "cs-CZ"),
			hreflang("en-ZA", "ZA", "en-ZA"),
			hreflang("en-US", "US", "en-US"),
			hreflang("en-GB", "UK", "en-GB"),
		},
		ContactPagePatterns: []string{
			"/contact",
			"/kontakt",
			"/contact-us",
			"/contactus",
			"/nous-contacter",
			"/o-nas/kontakty",
			"/about/contact",
			"/kapcsolat",
			"/contato",
			"/mais-informacao/contato",
			"/rolunk/kapcsolat",
			"/get-in-touch",
			"/reach-us",
			"/connect",
			"/support",
			"/help",
			"/acerca-de/contactenos",
			"/nosotros/contactanos",
			"/about/contact-us",
		},
		Selectors: Selectors{
			Footer:  []string{"footer", ".footer", "#footer", ".site-footer", ".footer-link-wrapper", ".footer-bottom", ".section_footer"},
			Nav:     []string{"nav", ".navbar", ".nav", ".main-nav", "header", ".w-nav", ".navbar_component"},
			Address: []string{"address", ".address", ".contact-address", ".footer-address"},
			Email:   []string{".email", ".contact-email", ".mail", ".contact-info-email"},
		},
		SocialWhitelist: []string{
			"facebook.com",
			"instagram.com",
			"linkedin.com",
			"youtube.com",
			"tiktok.com",
			"x.com",
			"twitter.com",
			"pinterest.com",
		},
		SocialPlatforms: []SocialPlatform{
			{Key: "facebook", Domains: []string{"facebook.com"}},
			{Key: "instagram", Domains: []string{"instagram.com"}},
			{Key: "youtube", Domains: []string{"youtube.com"}},
			{Key: "linkedin", Domains: []string{"linkedin.com"}},
			{Key: "tiktok", Domains: []string{"tiktok.com"}},
			{Key: "x", Domains: []string{"x.com", "twitter.com"}},
			{Key: "pinterest", Domains: []string{"pinterest.com"}},
		},
		SocialIgnorePatterns: []string{"sharer.php", "/share", "intent/tweet"},
		CallingCodes: []CallingCode{
			{Country: "CZ", Code: "+420"},
			{Country: "HU", Code: "+36"},
			{Country: "PL", Code: "+48"},
			{Country: "SK", Code: "+421"},
			{Country: "MX", Code: "+52"},
			{Country: "CL", Code: "+56"},
			{Country: "PE", Code: "+51"},
			{Country: "BR", Code: "+55"},
			{Country: "CO", Code: "+57"},
			{Country: "NZ", Code: "+64"},
			{Country: "AU", Code: "+61"},
			{Country: "UK", Code: "+44"},
			{Country: "US", Code: "+1"},
			{Country: "CA", Code: "+1"},
			{Country: "IE", Code: "+353"},
			{Country: "DE", Code: "+49"},
			{Country: "FR", Code: "+33"},
			{Country: "ES", Code: "+34"},
		},
		ForeignPhonePrefixes:  []string{"1", "44"},
		URLIgnorePatterns:     []string{"review", "copy"},
		MaxConcurrentRequests: 5,
		MaxSitemapDepth:       5,
		PageIDStrategy:        PageIDPathNoLocale,
		FallbackCountry:       "Unknown",
		FallbackLocale:        "en-US",
	}
}
