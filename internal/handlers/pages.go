// Package handlers assembles the view models rendered by the page templates.
package handlers

import (
	"time"

	"github.com/maber00/pixelabril/internal/catalog"
	"github.com/maber00/pixelabril/internal/config"
	"github.com/maber00/pixelabril/internal/i18n"
	"github.com/maber00/pixelabril/internal/inquiry"
	"github.com/maber00/pixelabril/internal/lang"
	"github.com/maber00/pixelabril/internal/nav"
	"github.com/maber00/pixelabril/internal/seo"
)

// PageData is the view model shared by every page using the base layout.
type PageData struct {
	Lang     lang.Language
	Region   string
	Title    string
	SEO      seo.Meta
	Site     config.Site
	Year     int
	WhatsApp string

	Path        string
	Nav         []nav.RenderedItem
	Languages   []nav.LanguageLink
	Breadcrumbs []nav.Crumb

	// Per-page payloads; exactly one is set.
	Home   *HomeView
	Studio *StudioView
}

// StudioCard is a studio as listed on the landing page.
type StudioCard struct {
	ID          string
	Name        string
	Description string
	Area        string
	Image       string
	Color       string
	Price       string
	Href        string
}

// Pages builds view models from the site configuration, catalog and translations.
type Pages struct {
	site    config.Site
	catalog *catalog.Catalog
	bundle  *i18n.Bundle
	now     func() time.Time
}

// NewPages wires the page builder.
func NewPages(site config.Site, cat *catalog.Catalog, bundle *i18n.Bundle) *Pages {
	return &Pages{site: site, catalog: cat, bundle: bundle, now: time.Now}
}

func (p *Pages) base(path string, l lang.Language, title, description, image string) PageData {
	meta := seo.Build(seo.Page{
		BaseURL:     p.site.URL,
		Path:        path,
		Lang:        l,
		SiteName:    p.site.Name,
		Title:       title,
		Description: description,
		Image:       image,
	})
	return PageData{
		Lang:      l,
		Region:    l.Region(),
		Title:     title,
		SEO:       meta,
		Site:      p.site,
		Year:      p.now().Year(),
		WhatsApp:  inquiry.WhatsAppLink(p.site.WhatsApp.BaseURL, p.site.WhatsApp.Number, p.site.WhatsApp.DefaultMessages["general"]),
		Path:      path,
		Nav:       nav.Build(path, l),
		Languages: nav.Languages(path),
	}
}

func (p *Pages) card(s catalog.Studio, l lang.Language) StudioCard {
	prefix := "estudios." + s.ID + "."
	name := s.Name
	if p.bundle.Has(l, prefix+"nombre") {
		name = p.bundle.T(l, prefix+"nombre")
	}
	return StudioCard{
		ID:          s.ID,
		Name:        name,
		Description: p.bundle.T(l, prefix+"descripcion"),
		Area:        p.bundle.T(l, prefix+"area"),
		Image:       s.MainImage,
		Color:       s.Color,
		Price:       p.catalog.LocalizedPrice(s.PriceCOP, l),
		Href:        lang.Localize("/estudios/"+s.ID, l),
	}
}

// NotFound builds the 404 page for path.
func (p *Pages) NotFound(path string) PageData {
	l := lang.FromPath(path)
	data := p.base(path, l, p.bundle.T(l, "not_found.title")+" | "+p.site.Name, p.bundle.T(l, "not_found.message"), "")
	data.SEO.Robots = "noindex"
	data.SEO.Alternates = nil
	return data
}
