// Package analyzer scores how complete the extracted country profiles are and
// turns the gaps into findings and recommendations.
package analyzer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/net/publicsuffix"

	"github.com/amosWeiskopf/schemasmith/internal/models"
)

// Finding types
const (
	FindingNoHomepage     = "No Homepage"
	FindingNoContactPage  = "Missing Contact Page"
	FindingNoTelephone    = "Missing Telephone"
	FindingNoEmail        = "Missing Email"
	FindingNoAddress      = "Missing Address"
	FindingNoSocial       = "No Social Links"
	FindingUnknownCountry = "Unknown Country"
	FindingSharedDomain   = "Shared Base Domain"
)

// weights of each profile field in a country score; they sum to 100
var weights = struct {
	homepage, contactPage, telephone, email, address, social float64
}{15, 20, 20, 20, 10, 15}

var severityOrder = map[string]int{"critical": 0, "high": 1, "medium": 2, "low": 3}

// Analyzer performs coverage analysis
type Analyzer struct {
	fallbackCountry string
	now             func() time.Time
}

// New creates an Analyzer. fallbackCountry is the bucket URLs without a
// known country were assigned to.
func New(fallbackCountry string) *Analyzer {
	return &Analyzer{fallbackCountry: fallbackCountry, now: time.Now}
}

// Analyze builds a coverage report for configs
func (a *Analyzer) Analyze(configs []models.CountryOrganizationConfig) *models.CoverageReport {
	report := &models.CoverageReport{
		GeneratedAt: a.now().UTC(),
		Countries:   lo.Map(configs, func(c models.CountryOrganizationConfig, _ int) models.CountryCoverage { return coverage(c) }),
	}

	report.KeyFindings = a.findings(configs, report.Countries)
	report.Recommendations = recommendations(report.KeyFindings)
	report.Summary = summarize(report)
	return report
}

func coverage(c models.CountryOrganizationConfig) models.CountryCoverage {
	org := c.Organization
	cov := models.CountryCoverage{
		CountryCode:     c.CountryCode,
		BaseDomain:      c.BaseDomain,
		Pages:           len(c.Pages),
		Locales:         len(c.AvailableLocales),
		HasHomepage:     org.URL != "",
		HasContactPage:  org.Contact.ContactPageURL != "",
		HasTelephone:    org.Contact.Telephone != "",
		HasEmail:        org.Contact.Email != "",
		HasAddress:      org.Contact.Address != nil && org.Contact.Address.Raw != "",
		SocialPlatforms: len(org.Social),
	}

	score := 0.0
	for _, f := range []struct {
		ok     bool
		weight float64
	}{
		{cov.HasHomepage, weights.homepage},
		{cov.HasContactPage, weights.contactPage},
		{cov.HasTelephone, weights.telephone},
		{cov.HasEmail, weights.email},
		{cov.HasAddress, weights.address},
		{cov.SocialPlatforms > 0, weights.social},
	} {
		if f.ok {
			score += f.weight
		}
	}
	cov.Score = score
	return cov
}

// findings lists the gaps, one finding per type naming every affected country
func (a *Analyzer) findings(configs []models.CountryOrganizationConfig, countries []models.CountryCoverage) []models.Finding {
	findings := []models.Finding{}

	missing := func(typ, category, severity, what string, pred func(models.CountryCoverage) bool) {
		codes := lo.FilterMap(countries, func(c models.CountryCoverage, _ int) (string, bool) {
			return c.CountryCode, pred(c)
		})
		if len(codes) == 0 {
			return
		}
		findings = append(findings, models.Finding{
			Category:    category,
			Type:        typ,
			Description: fmt.Sprintf("%d of %d countries %s", len(codes), len(countries), what),
			Severity:    severity,
			Details:     strings.Join(codes, ", "),
		})
	}

	missing(FindingNoHomepage, "Structure", "critical", "have no usable homepage URL",
		func(c models.CountryCoverage) bool { return !c.HasHomepage })
	missing(FindingNoContactPage, "Contact", "high", "have no contact page in the sitemap",
		func(c models.CountryCoverage) bool { return !c.HasContactPage })
	missing(FindingNoTelephone, "Contact", "medium", "have a contact page without a telephone",
		func(c models.CountryCoverage) bool { return c.HasContactPage && !c.HasTelephone })
	missing(FindingNoEmail, "Contact", "medium", "have a contact page without an email",
		func(c models.CountryCoverage) bool { return c.HasContactPage && !c.HasEmail })
	missing(FindingNoAddress, "Contact", "low", "have a contact page without an address",
		func(c models.CountryCoverage) bool { return c.HasContactPage && !c.HasAddress })
	missing(FindingNoSocial, "Social", "low", "have no social links in the homepage footer",
		func(c models.CountryCoverage) bool { return c.HasHomepage && c.SocialPlatforms == 0 })

	if a.fallbackCountry != "" {
		if c, ok := lo.Find(configs, func(c models.CountryOrganizationConfig) bool {
			return c.CountryCode == a.fallbackCountry
		}); ok {
			findings = append(findings, models.Finding{
				Category:    "Locale",
				Type:        FindingUnknownCountry,
				Description: fmt.Sprintf("%d pages could not be mapped to a country", len(c.Pages)),
				Severity:    "high",
				Details:     strings.Join(c.AvailableLocales, ", "),
			})
		}
	}

	byDomain := lo.GroupBy(lo.Filter(configs, func(c models.CountryOrganizationConfig, _ int) bool {
		return c.BaseDomain != ""
	}), func(c models.CountryOrganizationConfig) string { return registrableDomain(c.BaseDomain) })
	domains := lo.Keys(byDomain)
	sort.Strings(domains)
	for _, d := range domains {
		group := byDomain[d]
		if len(group) < 2 {
			continue
		}
		findings = append(findings, models.Finding{
			Category:    "Structure",
			Type:        FindingSharedDomain,
			Description: fmt.Sprintf("%d countries are served from %s", len(group), d),
			Severity:    "low",
			Details: strings.Join(lo.Map(group, func(c models.CountryOrganizationConfig, _ int) string {
				return c.CountryCode
			}), ", "),
		})
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return severityOrder[findings[i].Severity] < severityOrder[findings[j].Severity]
	})
	return findings
}

// registrableDomain returns the eTLD+1 of host, or host itself when it has none
func registrableDomain(host string) string {
	d, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		return strings.ToLower(host)
	}
	return d
}

// recommendations creates actionable recommendations based on findings
func recommendations(findings []models.Finding) []models.Recommendation {
	recs := []models.Recommendation{}

	for _, f := range findings {
		var rec models.Recommendation

		switch f.Type {
		case FindingNoHomepage:
			rec = models.Recommendation{
				Priority:    "critical",
				Action:      "Fix country URLs",
				Description: "Make sure every country lists at least one absolute URL in the sitemap",
			}
		case FindingUnknownCountry:
			rec = models.Recommendation{
				Priority:    "high",
				Action:      "Extend the locale tables",
				Description: "Add host, path prefix or hreflang mappings for the unmapped URLs",
			}
		case FindingNoContactPage:
			rec = models.Recommendation{
				Priority:    "high",
				Action:      "Add contact pages to the sitemap",
				Description: "List each country's contact page, or add its path to contact_page_patterns",
			}
		case FindingNoTelephone, FindingNoEmail:
			rec = models.Recommendation{
				Priority:    "medium",
				Action:      "Publish contact details",
				Description: "Expose telephone numbers and email addresses as tel: and mailto: links on contact pages",
			}
		case FindingNoAddress:
			rec = models.Recommendation{
				Priority:    "low",
				Action:      "Mark up the postal address",
				Description: "Wrap the address in an <address> element or adjust the address selectors",
			}
		case FindingNoSocial:
			rec = models.Recommendation{
				Priority:    "low",
				Action:      "Link social profiles in the footer",
				Description: "Add whitelisted social profile links to the homepage footer",
			}
		default:
			continue
		}
		rec.Category = f.Category

		// telephone and email share one recommendation
		if lo.ContainsBy(recs, func(r models.Recommendation) bool { return r.Action == rec.Action }) {
			continue
		}
		recs = append(recs, rec)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return severityOrder[recs[i].Priority] < severityOrder[recs[j].Priority]
	})
	return recs
}

// summarize creates the high-level summary
func summarize(report *models.CoverageReport) models.Summary {
	summary := models.Summary{
		Countries: len(report.Countries),
		Pages:     lo.SumBy(report.Countries, func(c models.CountryCoverage) int { return c.Pages }),
	}
	if len(report.Countries) > 0 {
		summary.OverallScore = lo.SumBy(report.Countries, func(c models.CountryCoverage) float64 {
			return c.Score
		}) / float64(len(report.Countries))
	}
	summary.OverallGrade = Grade(summary.OverallScore)

	for _, c := range report.Countries {
		if c.Score >= 100 {
			summary.Complete = append(summary.Complete, c.CountryCode)
		} else {
			summary.Incomplete = append(summary.Incomplete, c.CountryCode)
		}
	}

	for i, rec := range report.Recommendations {
		if i >= 3 {
			break
		}
		summary.TopPriorities = append(summary.TopPriorities, rec.Action)
	}
	return summary
}

// Grade maps a 0-100 score to a letter
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}
