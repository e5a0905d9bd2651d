// Package catalog exposes the rentable studios, their prices and gallery data.
package catalog

import (
	"strings"

	"github.com/maber00/pixelabril/internal/config"
	"github.com/maber00/pixelabril/internal/lang"
)

// Translator resolves localized strings.
type Translator interface {
	T(l lang.Language, key string) string
}

// Studio is one rentable apartment.
type Studio struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MainImage string   `json:"mainImage"`
	Images    []string `json:"images"`
	Color     string   `json:"color"`
	PriceCOP  int64    `json:"priceCop"`
}

// Catalog is the read-only studio list built from the site configuration.
type Catalog struct {
	studios []Studio
	byID    map[string]int
	rate    int64
	gallery config.GalleryConfig
	tr      Translator
}

// New builds a catalog from site. tr localizes fallback messages and may be nil.
func New(site config.Site, tr Translator) *Catalog {
	c := &Catalog{
		byID:    map[string]int{},
		rate:    site.ExchangeRate,
		gallery: site.Gallery,
		tr:      tr,
	}
	if c.rate <= 0 {
		c.rate = DefaultExchangeRate
	}
	for _, s := range site.Studios {
		id := strings.ToLower(strings.TrimSpace(s.ID))
		if id == "" {
			continue
		}
		c.byID[id] = len(c.studios)
		c.studios = append(c.studios, Studio{
			ID:        id,
			Name:      s.Name,
			MainImage: s.MainImage,
			Images:    append([]string(nil), s.Images...),
			Color:     s.Color,
			PriceCOP:  s.PriceCOP,
		})
	}
	return c
}

// Studios returns the studios in configuration order.
func (c *Catalog) Studios() []Studio {
	out := make([]Studio, len(c.studios))
	copy(out, c.studios)
	return out
}

// Studio looks up a studio by ID, case-insensitively.
func (c *Catalog) Studio(id string) (Studio, bool) {
	i, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Studio{}, false
	}
	return c.studios[i], true
}

// Rate returns the COP per USD exchange rate.
func (c *Catalog) Rate() int64 { return c.rate }

// LocalizedPrice renders a COP amount in the currency of l.
func (c *Catalog) LocalizedPrice(cop int64, l lang.Language) string {
	if CurrencyFor(l) == COP {
		return FormatPrice(cop, COP)
	}
	return FormatPrice(CopToUSD(cop, c.rate), USD)
}

// StudioPrice renders the monthly price of a studio, or a localized
// "not available" message for unknown studios.
func (c *Catalog) StudioPrice(id string, l lang.Language) string {
	s, ok := c.Studio(id)
	if !ok {
		if c.tr != nil {
			return c.tr.T(l, "precios.no_disponible")
		}
		return "-"
	}
	return c.LocalizedPrice(s.PriceCOP, l)
}

// PriceData returns both renderings of a COP price.
func (c *Catalog) PriceData(cop int64) PriceData {
	usd := CopToUSD(cop, c.rate)
	return PriceData{
		COP:          cop,
		USD:          usd,
		FormattedCOP: FormatPrice(cop, COP),
		FormattedUSD: FormatPrice(usd, USD),
	}
}

// StartingPrice is the lowest studio price, in COP.
func (c *Catalog) StartingPrice() int64 {
	var min int64
	for i, s := range c.studios {
		if i == 0 || s.PriceCOP < min {
			min = s.PriceCOP
		}
	}
	return min
}

// Comparison contrasts the starting price with a traditional lease, in the
// currency of l.
func (c *Catalog) Comparison(l lang.Language) Comparison {
	cur := CurrencyFor(l)
	conv := func(cop int64) int64 {
		if cur == COP {
			return cop
		}
		return CopToUSD(cop, c.rate)
	}
	pixel := conv(c.StartingPrice())
	rent := conv(traditionalRent)
	utilities := conv(traditionalUtilities)
	internet := conv(traditionalInternet)
	cleaning := conv(traditionalCleaning)
	total := rent + utilities + internet + cleaning
	savings := total - pixel
	abs := savings
	if abs < 0 {
		abs = -abs
	}
	return Comparison{
		Currency:       cur,
		Pixel:          FormatPrice(pixel, cur),
		Rent:           FormatPrice(rent, cur),
		Utilities:      FormatPrice(utilities, cur),
		Internet:       FormatPrice(internet, cur),
		Cleaning:       FormatPrice(cleaning, cur),
		Total:          FormatPrice(total, cur),
		Savings:        FormatPrice(abs, cur),
		IsPixelCheaper: savings > 0,
	}
}
