package models

// SocialLinks maps a platform key (facebook, instagram, x, ...) to one absolute URL
type SocialLinks map[string]string

// OrganizationAddress holds a postal address. Only Raw is populated by extraction.
type OrganizationAddress struct {
	StreetAddress   string `json:"streetAddress,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
	AddressLocality string `json:"addressLocality,omitempty"`
	AddressRegion   string `json:"addressRegion,omitempty"`
	AddressCountry  string `json:"addressCountry,omitempty"`
	Raw             string `json:"raw,omitempty"`
}

// OrganizationContact holds the contact details found on a contact page
type OrganizationContact struct {
	Telephone      string               `json:"telephone,omitempty"`
	Email          string               `json:"email,omitempty"`
	Address        *OrganizationAddress `json:"address,omitempty"`
	ContactPageURL string               `json:"contactPageUrl"`
}

// Organization is the schema.org-like organization block of a country
type Organization struct {
	Name      string              `json:"name,omitempty"`
	LegalName string              `json:"legalName,omitempty"`
	URL       string              `json:"url,omitempty"`
	Contact   OrganizationContact `json:"contact"`
	Social    SocialLinks         `json:"social"`
}

// CountryOrganizationConfig is the per-country output record
type CountryOrganizationConfig struct {
	CountryCode      string       `json:"countryCode"`
	DefaultLocale    string       `json:"defaultLocale"`
	AvailableLocales []string     `json:"availableLocales"`
	BaseDomain       string       `json:"baseDomain,omitempty"`
	Organization     Organization `json:"organization"`
	Pages            []PageEntry  `json:"pages"`
}

// NewCountryConfig creates an empty configuration for countryCode
func NewCountryConfig(countryCode, defaultLocale string) *CountryOrganizationConfig {
	return &CountryOrganizationConfig{
		CountryCode:      countryCode,
		DefaultLocale:    defaultLocale,
		AvailableLocales: []string{},
		Organization: Organization{
			Social: SocialLinks{},
		},
		Pages: []PageEntry{},
	}
}
