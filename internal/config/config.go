package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// HTTP fetching
	Fetcher FetcherConfig `mapstructure:"fetcher"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`

	// Output configuration
	Output OutputConfig `mapstructure:"output"`

	// Static site tables and pipeline limits
	Site Site `mapstructure:"site"`
}

// FetcherConfig holds HTTP client configuration
type FetcherConfig struct {
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // 0 disables the limiter
	Burst             int           `mapstructure:"burst"`
	FollowRobotsTxt   bool          `mapstructure:"follow_robots_txt"`
	CacheSize         int           `mapstructure:"cache_size"` // 0 disables the page cache
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// OutputConfig controls how results are written
type OutputConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"` // "json" or "markdown"
	Keyed  bool   `mapstructure:"keyed"`  // JSON object keyed by country code instead of an array
}

var (
	validLogFormats    = []string{"json", "text"}
	validOutputFormats = []string{"json", "markdown"}
)

// Load loads configuration from file and environment.
// An explicit configPath must exist; otherwise config.yaml is searched in the
// usual places and defaults are used when it is absent.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.schemasmith")
	}

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	applyTableDefaults(v, &cfg.Site)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			UserAgent:       DefaultUserAgent,
			Timeout:         30 * time.Second,
			Burst:           1,
			FollowRobotsTxt: false,
			CacheSize:       256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Path:   "country-config.json",
			Format: "json",
		},
		Site: DefaultSite(),
	}
}

// DefaultUserAgent is sent on every request unless overridden
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// setDefaults sets default values for scalar keys
func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("fetcher.user_agent", def.Fetcher.UserAgent)
	v.SetDefault("fetcher.timeout", def.Fetcher.Timeout.String())
	v.SetDefault("fetcher.requests_per_second", def.Fetcher.RequestsPerSecond)
	v.SetDefault("fetcher.burst", def.Fetcher.Burst)
	v.SetDefault("fetcher.follow_robots_txt", def.Fetcher.FollowRobotsTxt)
	v.SetDefault("fetcher.cache_size", def.Fetcher.CacheSize)

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	v.SetDefault("output.path", def.Output.Path)
	v.SetDefault("output.format", def.Output.Format)
	v.SetDefault("output.keyed", def.Output.Keyed)

	v.SetDefault("site.max_concurrent_requests", def.Site.MaxConcurrentRequests)
	v.SetDefault("site.max_sitemap_depth", def.Site.MaxSitemapDepth)
	v.SetDefault("site.page_id_strategy", def.Site.PageIDStrategy)
	v.SetDefault("site.fallback_country", def.Site.FallbackCountry)
	v.SetDefault("site.fallback_locale", def.Site.FallbackLocale)
}

// bindEnvVars binds environment variables
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("SCHEMASMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// applyTableDefaults fills every site table the config file did not mention.
// A table that is present, even empty, replaces the default entirely.
func applyTableDefaults(v *viper.Viper, site *Site) {
	def := DefaultSite()

	if !v.IsSet("site.hosts") {
		site.Hosts = def.Hosts
	}
	if !v.IsSet("site.path_prefixes") {
		site.PathPrefixes = def.PathPrefixes
	}
	if !v.IsSet("site.hreflang_mappings") {
		site.HreflangMappings = def.HreflangMappings
	}
	if !v.IsSet("site.contact_page_patterns") {
		site.ContactPagePatterns = def.ContactPagePatterns
	}
	if !v.IsSet("site.selectors.footer") {
		site.Selectors.Footer = def.Selectors.Footer
	}
	if !v.IsSet("site.selectors.nav") {
		site.Selectors.Nav = def.Selectors.Nav
	}
	if !v.IsSet("site.selectors.address") {
		site.Selectors.Address = def.Selectors.Address
	}
	if !v.IsSet("site.selectors.email") {
		site.Selectors.Email = def.Selectors.Email
	}
	if !v.IsSet("site.social_whitelist") {
		site.SocialWhitelist = def.SocialWhitelist
	}
	if !v.IsSet("site.social_platforms") {
		site.SocialPlatforms = def.SocialPlatforms
	}
	if !v.IsSet("site.social_ignore_patterns") {
		site.SocialIgnorePatterns = def.SocialIgnorePatterns
	}
	if !v.IsSet("site.calling_codes") {
		site.CallingCodes = def.CallingCodes
	}
	if !v.IsSet("site.foreign_phone_prefixes") {
		site.ForeignPhonePrefixes = def.ForeignPhonePrefixes
	}
	if !v.IsSet("site.url_ignore_patterns") {
		site.URLIgnorePatterns = def.URLIgnorePatterns
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Fetcher.RequestsPerSecond < 0 {
		return fmt.Errorf("fetcher.requests_per_second must not be negative")
	}
	if c.Fetcher.CacheSize < 0 {
		return fmt.Errorf("fetcher.cache_size must not be negative")
	}
	if !lo.Contains(validLogFormats, c.Logging.Format) {
		return fmt.Errorf("logging.format must be one of %v, got %q", validLogFormats, c.Logging.Format)
	}
	if !lo.Contains(validOutputFormats, c.Output.Format) {
		return fmt.Errorf("output.format must be one of %v, got %q", validOutputFormats, c.Output.Format)
	}
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	return nil
}
