package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/schemasmith/internal/config"
	"github.com/amosWeiskopf/schemasmith/internal/models"
	"github.com/amosWeiskopf/schemasmith/pkg/fetcher"
	"github.com/amosWeiskopf/schemasmith/pkg/fetcher/fetchertest"
	"github.com/amosWeiskopf/schemasmith/pkg/sitemap"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

func TestRunHostPerCountry(t *testing.T) {
	f := fetchertest.New(map[string]string{
		"https://example.com/sitemap.xml": xmlHeader + `<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
			<sitemap><loc>https://uk.example.com/sitemap.xml</loc></sitemap>
			<sitemap><loc>https://de.example.com/sitemap.xml</loc></sitemap>
		</sitemapindex>`,
		"https://uk.example.com/sitemap.xml": xmlHeader + `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
			<url><loc>https://uk.example.com/contact</loc></url>
		</urlset>`,
		"https://de.example.com/sitemap.xml": xmlHeader + `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
			<url><loc>https://de.example.com/kontakt</loc></url>
		</urlset>`,
		"https://uk.example.com/contact": `<html><body><p>Call +44 20 7946 0958</p></body></html>`,
		"https://de.example.com/kontakt": `<html><body><a href="mailto:info@de.example.com">Mail</a></body></html>`,
	})

	res, err := New(f, config.DefaultSite(), nil).Run(context.Background(), "https://example.com/sitemap.xml")
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 2, res.Entries)
	assert.Equal(t, []models.PageGroup{
		{PageID: "/contact", Locales: []models.PageLocale{{Locale: "en-GB", CountryCode: "UK", URL: "https://uk.example.com/contact"}}},
		{PageID: "/kontakt", Locales: []models.PageLocale{{Locale: "de-DE", CountryCode: "DE", URL: "https://de.example.com/kontakt"}}},
	}, res.Groups)

	require.Len(t, res.Configs, 2)
	uk, de := res.Configs[0], res.Configs[1]

	assert.Equal(t, "UK", uk.CountryCode)
	assert.Equal(t, "uk.example.com", uk.BaseDomain)
	assert.Equal(t, "https://uk.example.com/", uk.Organization.URL)
	assert.Equal(t, "https://uk.example.com/contact", uk.Organization.Contact.ContactPageURL)
	assert.Equal(t, "+44 20 7946 0958", uk.Organization.Contact.Telephone)

	assert.Equal(t, "DE", de.CountryCode)
	assert.Equal(t, "https://de.example.com/kontakt", de.Organization.Contact.ContactPageURL)
	assert.Equal(t, "info@de.example.com", de.Organization.Contact.Email)
}

func TestRunRootFailure(t *testing.T) {
	c := New(fetchertest.New(nil), config.DefaultSite(), nil)

	res, err := c.Run(context.Background(), "https://example.com/sitemap.xml")
	require.Error(t, err)
	assert.Nil(t, res)

	var fe *fetcher.FetchError
	assert.True(t, errors.As(err, &fe))
}

func TestRunRootNotXML(t *testing.T) {
	f := fetchertest.New(map[string]string{"https://example.com/sitemap.xml": "<html><body>oops"})

	_, err := New(f, config.DefaultSite(), nil).Run(context.Background(), "https://example.com/sitemap.xml")
	var pe *sitemap.ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestRunOverHTTP(t *testing.T) {
	var base string
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprintf(w, xmlHeader+`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:xhtml="http://www.w3.org/1999/xhtml">
			<url>
				<loc>%[1]s/uk/about</loc>
				<xhtml:link rel="alternate" hreflang="en-GB" href="%[1]s/uk/about"/>
				<xhtml:link rel="alternate" hreflang="pl" href="%[1]s/pl/o-nas"/>
			</url>
			<url>
				<loc>%[1]s/pl/o-nas</loc>
				<xhtml:link rel="alternate" hreflang="en-GB" href="%[1]s/uk/about"/>
				<xhtml:link rel="alternate" hreflang="pl" href="%[1]s/pl/o-nas"/>
			</url>
			<url><loc>%[1]s/uk/contact</loc></url>
			<url><loc>%[1]s/pl/kontakt</loc></url>
			<url><loc>%[1]s/uk/reviews</loc></url>
		</urlset>`, base)
	})
	mux.HandleFunc("/uk/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/uk/":
			fmt.Fprint(w, `<html><head><meta property="og:site_name" content="Acme"></head>
				<body><footer><a href="https://www.instagram.com/acme">ig</a></footer></body></html>`)
		case "/uk/contact":
			fmt.Fprint(w, `<html><body><a href="tel:+442079460958">Call</a><a href="mailto:uk@acme.test?subject=hi">Mail</a></body></html>`)
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/pl/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/pl/kontakt" {
			fmt.Fprint(w, `<html><body><p>Zadzwoń: +44 20 1234 5678 lub +48 22 123 45 67</p></body></html>`)
			return
		}
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	base = server.URL

	cfg := config.Default()
	cfg.Fetcher.Timeout = 5 * time.Second
	f, err := fetcher.NewHTTPFetcher(cfg.Fetcher, nil)
	require.NoError(t, err)

	res, err := New(f, cfg.Site, nil).Run(context.Background(), base+"/sitemap.xml")
	require.NoError(t, err)

	assert.Equal(t, 5, res.Entries)
	// the reviews URL is ignored
	require.Len(t, res.Groups, 3)
	assert.Equal(t, "/about", res.Groups[0].PageID)
	assert.Equal(t, []models.PageLocale{
		{Locale: "en-GB", CountryCode: "UK", URL: base + "/uk/about"},
		{Locale: "pl-PL", CountryCode: "PL", URL: base + "/pl/o-nas"},
	}, res.Groups[0].Locales)

	require.Len(t, res.Configs, 2)
	uk, pl := res.Configs[0], res.Configs[1]

	assert.Equal(t, "UK", uk.CountryCode)
	assert.Equal(t, base+"/uk/", uk.Organization.URL)
	assert.Equal(t, "Acme", uk.Organization.Name)
	assert.Equal(t, models.SocialLinks{"instagram": "https://www.instagram.com/acme"}, uk.Organization.Social)
	assert.Equal(t, "+442079460958", uk.Organization.Contact.Telephone)
	assert.Equal(t, "uk@acme.test", uk.Organization.Contact.Email)

	assert.Equal(t, "PL", pl.CountryCode)
	assert.Equal(t, []string{"pl-PL"}, pl.AvailableLocales)
	assert.Equal(t, base+"/pl/", pl.Organization.URL)
	assert.Equal(t, base+"/pl/kontakt", pl.Organization.Contact.ContactPageURL)
	assert.Equal(t, "+48 22 123 45 67", pl.Organization.Contact.Telephone)
	// homepage returned 404
	assert.Equal(t, models.SocialLinks{}, pl.Organization.Social)
}

func TestInspect(t *testing.T) {
	f := fetchertest.New(map[string]string{
		"https://www.example.com/sitemap.xml": xmlHeader + `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:xhtml="http://www.w3.org/1999/xhtml">
			<url><loc>https://www.example.com/plain</loc></url>
			<url>
				<loc>https://www.example.com/uk/about</loc>
				<xhtml:link rel="alternate" hreflang="en-GB" href="https://www.example.com/uk/about"/>
				<xhtml:link rel="alternate" hreflang="tlh" href="https://www.example.com/klingon/about"/>
			</url>
		</urlset>`,
	})

	in, err := New(f, config.DefaultSite(), nil).Inspect(context.Background(), "https://www.example.com/sitemap.xml")
	require.NoError(t, err)

	assert.Equal(t, 2, in.Total)
	assert.Equal(t, 1, in.WithAlternates)
	assert.Equal(t, 2, in.Groups)
	require.NotNil(t, in.First)
	assert.Equal(t, "https://www.example.com/plain", in.First.Loc)
	require.NotNil(t, in.FirstWithAlternates)
	assert.Equal(t, "https://www.example.com/uk/about", in.FirstWithAlternates.Loc)

	require.Len(t, in.Alternates, 2)
	assert.Equal(t, "UK", in.Alternates[0].CountryCode)
	assert.Equal(t, "en-GB", in.Alternates[0].Locale)
	assert.True(t, in.Alternates[0].Known)
	assert.False(t, in.Alternates[1].Known)

	// inspection never fetches pages
	assert.Equal(t, []string{"https://www.example.com/sitemap.xml"}, f.Calls())
}

func TestInspectEmpty(t *testing.T) {
	f := fetchertest.New(map[string]string{
		"https://www.example.com/sitemap.xml": xmlHeader + `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`,
	})

	in, err := New(f, config.DefaultSite(), nil).Inspect(context.Background(), "https://www.example.com/sitemap.xml")
	require.NoError(t, err)
	assert.Zero(t, in.Total)
	assert.Nil(t, in.First)
	assert.Nil(t, in.FirstWithAlternates)
}
