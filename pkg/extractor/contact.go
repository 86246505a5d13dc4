package extractor

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amosWeiskopf/schemasmith/internal/config"
	"github.com/amosWeiskopf/schemasmith/internal/models"
	"github.com/amosWeiskopf/schemasmith/pkg/fetcher"
	"github.com/amosWeiskopf/schemasmith/pkg/utils"
)

var (
	// optional + or 00, then 7 to 15 digits with single separators
	phoneRegex = regexp.MustCompile(`(?:\+|00)?(?:\d[ .\-]?){6,14}\d`)
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// ContactExtractor finds telephone, email and address on a contact page
type ContactExtractor struct {
	fetcher fetcher.Fetcher
	site    config.Site
	logger  *slog.Logger
}

// NewContactExtractor creates a ContactExtractor
func NewContactExtractor(f fetcher.Fetcher, site config.Site, logger *slog.Logger) *ContactExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactExtractor{fetcher: f, site: site, logger: logger}
}

// Extract fetches pageURL and extracts its contact details. countryCode, when
// known, selects the preferred calling code. It never fails: on error the
// result carries only ContactPageURL.
func (e *ContactExtractor) Extract(ctx context.Context, pageURL, countryCode string) models.OrganizationContact {
	e.logger.Info("extracting contact info", "url", pageURL, "country", countryCode)

	p, err := fetchPage(ctx, e.fetcher, pageURL)
	if err != nil {
		e.logger.Warn("contact extraction failed", "url", pageURL, "country", countryCode, "err", err)
		return models.OrganizationContact{ContactPageURL: pageURL}
	}
	return e.FromDocument(p.doc, pageURL, countryCode)
}

// FromDocument extracts contact details from an already parsed page
func (e *ContactExtractor) FromDocument(doc *goquery.Document, pageURL, countryCode string) models.OrganizationContact {
	contact := models.OrganizationContact{
		ContactPageURL: pageURL,
		Telephone:      e.telephone(doc, countryCode),
		Email:          e.email(doc),
	}
	if raw := e.address(doc); raw != "" {
		contact.Address = &models.OrganizationAddress{Raw: raw}
	}
	return contact
}

func (e *ContactExtractor) telephone(doc *goquery.Document, countryCode string) string {
	var links []string
	doc.Find(`a[href^="tel:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if tel := decode(strings.TrimSpace(strings.TrimPrefix(href, "tel:"))); tel != "" {
			links = append(links, tel)
		}
	})

	callingCode := ""
	if code, ok := e.site.CallingCode(countryCode); ok {
		callingCode = utils.Digits(code)
	}

	if len(links) > 0 {
		if callingCode == "" {
			return links[0]
		}
		if tel, ok := firstWithPrefix(links, callingCode); ok {
			return tel
		}
		for _, tel := range links {
			if !utils.HasAnyPrefix(dialDigits(tel), e.site.ForeignPhonePrefixes) {
				return tel
			}
		}
		return links[0]
	}

	matches := phoneRegex.FindAllString(bodyText(doc), -1)
	if len(matches) == 0 {
		return ""
	}
	if callingCode != "" {
		if tel, ok := firstWithPrefix(matches, callingCode); ok {
			return strings.TrimSpace(tel)
		}
	}
	return strings.TrimSpace(matches[0])
}

// firstWithPrefix returns the first number whose dialed digits start with prefix
func firstWithPrefix(numbers []string, prefix string) (string, bool) {
	for _, n := range numbers {
		if strings.HasPrefix(dialDigits(n), prefix) {
			return n, true
		}
	}
	return "", false
}

// dialDigits returns the digits of a phone number with a leading 00
// international prefix removed, so that 0048 and +48 compare equal.
func dialDigits(number string) string {
	d := utils.Digits(number)
	if strings.HasPrefix(strings.TrimSpace(number), "00") {
		return strings.TrimPrefix(d, "00")
	}
	return d
}

func (e *ContactExtractor) email(doc *goquery.Document) string {
	if href, ok := doc.Find(`a[href^="mailto:"]`).First().Attr("href"); ok {
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if addr = decode(strings.TrimSpace(addr)); addr != "" {
			return addr
		}
	}

	for _, sel := range e.site.Selectors.Email {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(el.Text()); strings.Contains(text, "@") {
			return text
		}
	}

	return strings.TrimSpace(emailRegex.FindString(bodyText(doc)))
}

func (e *ContactExtractor) address(doc *goquery.Document) string {
	if el := doc.Find("address").First(); el.Length() > 0 {
		return utils.CleanText(el.Text())
	}
	for _, sel := range e.site.Selectors.Address {
		if el := doc.Find(sel).First(); el.Length() > 0 {
			return utils.CleanText(el.Text())
		}
	}
	return ""
}

// decode undoes percent-encoding in link targets such as tel:+48%2022
func decode(s string) string {
	if d, err := url.PathUnescape(s); err == nil {
		return d
	}
	return s
}
