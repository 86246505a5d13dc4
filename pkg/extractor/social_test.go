package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amosWeiskopf/schemasmith/internal/config"
	"github.com/amosWeiskopf/schemasmith/internal/models"
	"github.com/amosWeiskopf/schemasmith/pkg/fetcher/fetchertest"
)

const homeURL = "https://shop.test/uk/"

func TestSocialFromDocument(t *testing.T) {
	tests := []struct {
		name string
		html string
		want models.SocialLinks
	}{
		{
			name: "share intents are excluded",
			html: `<footer>
				<a href="https://facebook.com/x">fb</a>
				<a href="https://twitter.com/x/intent/tweet">tweet</a>
				<a href="https://linkedin.com/company/x">in</a>
			</footer>`,
			want: models.SocialLinks{
				"facebook": "https://facebook.com/x",
				"linkedin": "https://linkedin.com/company/x",
			},
		},
		{
			name: "links outside the footer are ignored",
			html: `<nav><a href="https://instagram.com/nav">ig</a></nav>
				<footer><a href="https://www.youtube.com/@acme">yt</a></footer>`,
			want: models.SocialLinks{"youtube": "https://www.youtube.com/@acme"},
		},
		{
			name: "last link per platform wins",
			html: `<footer>
				<a href="https://www.facebook.com/old">old</a>
				<a href="https://www.facebook.com/new">new</a>
			</footer>`,
			want: models.SocialLinks{"facebook": "https://www.facebook.com/new"},
		},
		{
			name: "x and twitter share a platform",
			html: `<footer><a href="https://twitter.com/acme">t</a><a href="https://x.com/acme_uk">x</a></footer>`,
			want: models.SocialLinks{"x": "https://x.com/acme_uk"},
		},
		{
			name: "every match of the first footer selector counts",
			html: `<footer><a href="https://tiktok.com/@acme">tt</a></footer>
				<footer><a href="https://pinterest.com/acme">pin</a></footer>
				<div class="footer"><a href="https://instagram.com/acme">ig</a></div>`,
			want: models.SocialLinks{
				"tiktok":    "https://tiktok.com/@acme",
				"pinterest": "https://pinterest.com/acme",
			},
		},
		{
			name: "later selectors are tried when earlier ones miss",
			html: `<div class="site-footer"><a href="https://instagram.com/acme">ig</a></div>`,
			want: models.SocialLinks{"instagram": "https://instagram.com/acme"},
		},
		{
			name: "protocol-relative links are made absolute",
			html: `<footer><a href="//www.linkedin.com/company/acme">in</a></footer>`,
			want: models.SocialLinks{"linkedin": "https://www.linkedin.com/company/acme"},
		},
		{
			name: "non-whitelisted and sharer links",
			html: `<footer>
				<a href="https://mastodon.social/@acme">m</a>
				<a href="https://www.facebook.com/sharer.php?u=x">share</a>
				<a href="/about">about</a>
			</footer>`,
			want: models.SocialLinks{},
		},
		{
			name: "no footer",
			html: `<div><a href="https://facebook.com/x">fb</a></div>`,
			want: models.SocialLinks{},
		},
	}

	e := NewSocialExtractor(fetchertest.New(nil), config.DefaultSite(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, "<html><body>"+tt.html+"</body></html>")
			assert.Equal(t, tt.want, e.FromDocument(doc, homeURL))
		})
	}
}

func TestSocialExtract(t *testing.T) {
	f := fetchertest.New(map[string]string{
		homeURL: `<html><body><footer><a href="https://facebook.com/acme">fb</a></footer></body></html>`,
	})
	e := NewSocialExtractor(f, config.DefaultSite(), nil)

	assert.Equal(t, models.SocialLinks{"facebook": "https://facebook.com/acme"}, e.Extract(context.Background(), homeURL))
	assert.Equal(t, models.SocialLinks{}, e.Extract(context.Background(), "https://shop.test/missing"))
}

func TestCustomPlatforms(t *testing.T) {
	site := config.DefaultSite()
	site.SocialWhitelist = append(site.SocialWhitelist, "threads.net")
	site.SocialPlatforms = append(site.SocialPlatforms, config.SocialPlatform{Key: "threads", Domains: []string{"threads.net"}})

	e := NewSocialExtractor(fetchertest.New(nil), site, nil)
	doc := parse(t, `<html><body><footer><a href="https://www.threads.net/@acme">th</a></footer></body></html>`)
	assert.Equal(t, models.SocialLinks{"threads": "https://www.threads.net/@acme"}, e.FromDocument(doc, homeURL))
}
