package handlers

import (
	"strings"

	"github.com/maber00/pixelabril/internal/catalog"
	"github.com/maber00/pixelabril/internal/lang"
	"github.com/maber00/pixelabril/internal/nav"
	"github.com/maber00/pixelabril/internal/seo"
)

// HomeView is the landing page payload.
type HomeView struct {
	Features      []string
	Studios       []StudioCard
	StartingPrice string
	Comparison    catalog.Comparison
}

// Home builds the landing page in language l.
func (p *Pages) Home(l lang.Language) PageData {
	path := l.Root()
	studios := p.catalog.Studios()
	image := ""
	if len(studios) > 0 {
		image = studios[0].MainImage
	}
	data := p.base(path, l, p.bundle.T(l, "meta.title"), p.bundle.T(l, "meta.description"), image)
	data.Breadcrumbs = nav.Breadcrumbs(path, "")

	view := &HomeView{
		Features:      p.bundle.Array(l, "hero.features"),
		StartingPrice: p.catalog.LocalizedPrice(p.catalog.StartingPrice(), l),
		Comparison:    p.catalog.Comparison(l),
	}
	var high int64
	for _, s := range studios {
		view.Studios = append(view.Studios, p.card(s, l))
		if s.PriceCOP > high {
			high = s.PriceCOP
		}
	}
	data.Home = view

	data.SEO.AddJSONLD(seo.LodgingBusiness(seo.Business{
		Name:        p.site.Name,
		URL:         data.SEO.Canonical,
		Description: data.SEO.Description,
		Image:       data.SEO.OG.Image,
		Email:       p.site.Email,
		Phone:       p.site.Phone,
		Locality:    "Bogotá",
		Country:     "CO",
		SameAs:      nonEmpty(p.site.Instagram),
		LowPrice:    p.catalog.StartingPrice(),
		HighPrice:   high,
		Currency:    string(catalog.COP),
	}))
	return data
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
