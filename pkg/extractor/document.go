// Package extractor derives organization details (contact data, footer
// social links, site name) from fetched HTML pages. Extraction is best
// effort: failures are logged and degrade the result instead of propagating.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/amosWeiskopf/schemasmith/pkg/fetcher"
)

// page is a fetched and parsed HTML document
type page struct {
	url  string
	body []byte
	doc  *goquery.Document
}

func fetchPage(ctx context.Context, f fetcher.Fetcher, pageURL string) (*page, error) {
	body, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", pageURL, err)
	}
	return &page{url: pageURL, body: body, doc: doc}, nil
}

// skipText lists elements whose text is never visible
var skipText = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

// visibleText joins the text nodes below n with single spaces so that
// adjacent elements never run together.
func visibleText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipText[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

// bodyText returns the visible text of the document body
func bodyText(doc *goquery.Document) string {
	var b strings.Builder
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(visibleText(n))
		}
	})
	return b.String()
}

// resolveURL makes href absolute against base. Unparseable input is returned unchanged.
func resolveURL(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
