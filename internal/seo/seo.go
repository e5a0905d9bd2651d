// Package seo builds the head metadata of rendered pages.
package seo

import (
	"html/template"
	"strings"

	"github.com/maber00/pixelabril/internal/i18n"
	"github.com/maber00/pixelabril/internal/lang"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
	Locale      string
}

type Twitter struct {
	Card  string
	Image string
}

// Meta is rendered into the <head> of the base layout.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	Alternates  []i18n.Alternate
	JSONLD      []template.JS
}

// Page describes the page Meta is built for.
type Page struct {
	BaseURL     string
	Path        string
	Lang        lang.Language
	SiteName    string
	Title       string
	Description string
	Image       string
}

// Build fills canonical, hreflang alternates, Open Graph and Twitter data for p.
func Build(p Page) Meta {
	base := strings.TrimRight(p.BaseURL, "/")
	canonical := base + lang.Localize(p.Path, p.Lang)
	image := p.Image
	if image != "" && strings.HasPrefix(image, "/") {
		image = base + image
	}
	return Meta{
		Title:       p.Title,
		Description: p.Description,
		Canonical:   canonical,
		Robots:      "index,follow",
		OG: OpenGraph{
			Title:       p.Title,
			Description: p.Description,
			Image:       image,
			Type:        "website",
			URL:         canonical,
			SiteName:    p.SiteName,
			Locale:      strings.ReplaceAll(p.Lang.Region(), "-", "_"),
		},
		Twitter:    Twitter{Card: "summary_large_image", Image: image},
		Alternates: i18n.AlternateURLs(base, p.Path),
	}
}

// AddJSONLD appends a schema.org payload. Payloads that fail to marshal are skipped.
func (m *Meta) AddJSONLD(v any) {
	if s := JSON(v); s != "" {
		m.JSONLD = append(m.JSONLD, template.JS(s))
	}
}
