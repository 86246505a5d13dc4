package analyzer

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/schemasmith/internal/models"
)

func complete(cc, domain string) models.CountryOrganizationConfig {
	cfg := models.NewCountryConfig(cc, "en-GB")
	cfg.BaseDomain = domain
	cfg.AvailableLocales = []string{"en-GB"}
	cfg.Pages = []models.PageEntry{{PageID: "/", URL: "https://" + domain + "/"}, {PageID: "/contact", URL: "https://" + domain + "/contact"}}
	cfg.Organization = models.Organization{
		URL: "https://" + domain + "/",
		Contact: models.OrganizationContact{
			Telephone:      "+44 20 7946 0958",
			Email:          "hello@" + domain,
			Address:        &models.OrganizationAddress{Raw: "1 High Street, London"},
			ContactPageURL: "https://" + domain + "/contact",
		},
		Social: models.SocialLinks{"facebook": "https://facebook.com/acme"},
	}
	return *cfg
}

func findingTypes(findings []models.Finding) []string {
	return lo.Map(findings, func(f models.Finding, _ int) string { return f.Type })
}

func TestCoverageScore(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.CountryOrganizationConfig)
		want   float64
	}{
		{"complete", func(*models.CountryOrganizationConfig) {}, 100},
		{"no address", func(c *models.CountryOrganizationConfig) { c.Organization.Contact.Address = nil }, 90},
		{"empty raw address", func(c *models.CountryOrganizationConfig) {
			c.Organization.Contact.Address = &models.OrganizationAddress{}
		}, 90},
		{"no social", func(c *models.CountryOrganizationConfig) { c.Organization.Social = models.SocialLinks{} }, 85},
		{"no contact at all", func(c *models.CountryOrganizationConfig) { c.Organization.Contact = models.OrganizationContact{} }, 30},
		{"empty organization", func(c *models.CountryOrganizationConfig) {
			c.Organization = models.Organization{Social: models.SocialLinks{}}
		}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := complete("UK", "uk.example.com")
			tt.mutate(&cfg)
			assert.Equal(t, tt.want, coverage(cfg).Score)
		})
	}
}

func TestAnalyzeComplete(t *testing.T) {
	a := New("Unknown")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	report := a.Analyze([]models.CountryOrganizationConfig{complete("UK", "uk.example.com"), complete("FR", "example.fr")})

	assert.Equal(t, now, report.GeneratedAt)
	require.Len(t, report.Countries, 2)
	assert.Equal(t, 2, report.Countries[0].Pages)
	assert.Empty(t, report.KeyFindings)
	assert.Empty(t, report.Recommendations)
	assert.Equal(t, models.Summary{
		Countries:    2,
		Pages:        4,
		OverallScore: 100,
		OverallGrade: "A",
		Complete:     []string{"UK", "FR"},
	}, report.Summary)
}

func TestAnalyzeFindings(t *testing.T) {
	uk := complete("UK", "uk.example.com")
	uk.Organization.Contact.Telephone = ""

	de := complete("DE", "de.example.com")
	de.Organization.Contact = models.OrganizationContact{}
	de.Organization.Social = models.SocialLinks{}

	unknown := *models.NewCountryConfig("Unknown", "en-US")
	unknown.AvailableLocales = []string{"en-US"}
	unknown.Pages = []models.PageEntry{{PageID: "/x", URL: "::bad"}}

	report := New("Unknown").Analyze([]models.CountryOrganizationConfig{uk, de, unknown})

	assert.Equal(t, []string{
		FindingNoHomepage,
		FindingNoContactPage,
		FindingUnknownCountry,
		FindingNoTelephone,
		FindingNoSocial,
		FindingSharedDomain,
	}, findingTypes(report.KeyFindings))

	contact, ok := lo.Find(report.KeyFindings, func(f models.Finding) bool { return f.Type == FindingNoContactPage })
	require.True(t, ok)
	assert.Equal(t, "DE, Unknown", contact.Details)
	assert.Equal(t, "2 of 3 countries have no contact page in the sitemap", contact.Description)

	shared, ok := lo.Find(report.KeyFindings, func(f models.Finding) bool { return f.Type == FindingSharedDomain })
	require.True(t, ok)
	assert.Equal(t, "UK, DE", shared.Details)
	assert.Contains(t, shared.Description, "example.com")

	// recommendations are deduplicated and ordered by priority
	assert.Equal(t, []string{
		"Fix country URLs",
		"Add contact pages to the sitemap",
		"Extend the locale tables",
		"Publish contact details",
		"Link social profiles in the footer",
	}, lo.Map(report.Recommendations, func(r models.Recommendation, _ int) string { return r.Action }))

	assert.Equal(t, []string{"Fix country URLs", "Add contact pages to the sitemap", "Extend the locale tables"}, report.Summary.TopPriorities)
	assert.Equal(t, []string{"UK", "DE", "Unknown"}, report.Summary.Incomplete)
	assert.Equal(t, "F", report.Summary.OverallGrade)
}

func TestAnalyzeEmpty(t *testing.T) {
	report := New("Unknown").Analyze(nil)
	assert.Empty(t, report.Countries)
	assert.Empty(t, report.KeyFindings)
	assert.Zero(t, report.Summary.OverallScore)
	assert.Equal(t, "F", report.Summary.OverallGrade)
}

func TestRegistrableDomain(t *testing.T) {
	assert.Equal(t, "example.co.uk", registrableDomain("shop.Example.co.uk"))
	assert.Equal(t, "example.com", registrableDomain("uk.example.com"))
	assert.Equal(t, "localhost", registrableDomain("localhost"))
}

func TestGrade(t *testing.T) {
	for score, want := range map[float64]string{100: "A", 90: "A", 85: "B", 70: "C", 65: "D", 10: "F"} {
		assert.Equal(t, want, Grade(score), "score %v", score)
	}
}
