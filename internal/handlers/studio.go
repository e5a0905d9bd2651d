package handlers

import (
	"strings"

	"github.com/maber00/pixelabril/internal/catalog"
	"github.com/maber00/pixelabril/internal/inquiry"
	"github.com/maber00/pixelabril/internal/lang"
	"github.com/maber00/pixelabril/internal/nav"
	"github.com/maber00/pixelabril/internal/seo"
)

// StudioView is the studio detail payload.
type StudioView struct {
	Card        StudioCard
	Gallery     catalog.Gallery
	Price       catalog.PriceData
	ContactLink string
}

// Studio builds the detail page of studio id. It returns false for unknown studios.
func (p *Pages) Studio(l lang.Language, id string) (PageData, bool) {
	s, ok := p.catalog.Studio(id)
	if !ok {
		return PageData{}, false
	}
	g, _ := p.catalog.Gallery(s.ID)
	card := p.card(s, l)
	path := card.Href

	data := p.base(path, l, card.Name+" | "+p.site.Name, card.Description, s.MainImage)
	data.Breadcrumbs = nav.Breadcrumbs(path, card.Name)
	data.Studio = &StudioView{
		Card:        card,
		Gallery:     g,
		Price:       p.catalog.PriceData(s.PriceCOP),
		ContactLink: p.contactLink(s, l),
	}

	cur := catalog.CurrencyFor(l)
	price := s.PriceCOP
	if cur == catalog.USD {
		price = catalog.CopToUSD(s.PriceCOP, p.catalog.Rate())
	}
	data.SEO.AddJSONLD(seo.Apartment(card.Name, card.Description, data.SEO.Canonical, data.SEO.OG.Image, price, string(cur)))

	crumbs := make([]seo.BreadcrumbItem, 0, len(data.Breadcrumbs))
	base := strings.TrimRight(p.site.URL, "/")
	for _, c := range data.Breadcrumbs {
		name := c.Label
		if c.LabelKey != "" {
			name = p.bundle.T(l, c.LabelKey)
		}
		crumbs = append(crumbs, seo.BreadcrumbItem{Name: name, Item: base + c.Href})
	}
	data.SEO.AddJSONLD(seo.BreadcrumbList(crumbs))
	return data, true
}

func (p *Pages) contactLink(s catalog.Studio, l lang.Language) string {
	msg := p.bundle.TVars(l, "inquiry.studio_interest", map[string]any{"studio": s.Name})
	return inquiry.WhatsAppLink(p.site.WhatsApp.BaseURL, p.site.WhatsApp.Number, msg)
}
