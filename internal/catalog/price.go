package catalog

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/maber00/pixelabril/internal/lang"
)

// Currency is an ISO 4217 code.
type Currency string

const (
	COP Currency = "COP"
	USD Currency = "USD"
)

// DefaultExchangeRate is the COP per USD rate used when none is configured.
const DefaultExchangeRate int64 = 4400

var (
	copPrinter = message.NewPrinter(language.MustParse("es-CO"))
	usdPrinter = message.NewPrinter(language.AmericanEnglish)
)

// CopToUSD converts whole pesos to whole dollars, rounding half away from zero.
func CopToUSD(cop, rate int64) int64 {
	if rate <= 0 {
		rate = DefaultExchangeRate
	}
	return int64(math.Round(float64(cop) / float64(rate)))
}

// UsdToCOP converts whole dollars to whole pesos.
func UsdToCOP(usd, rate int64) int64 {
	if rate <= 0 {
		rate = DefaultExchangeRate
	}
	return usd * rate
}

// FormatPrice renders amount the way the site shows it: "$2.650.000" for
// pesos and "$602 USD" for dollars.
func FormatPrice(amount int64, currency Currency) string {
	if currency == USD {
		return "$" + usdPrinter.Sprintf("%d", amount) + " USD"
	}
	return "$" + copPrinter.Sprintf("%d", amount)
}

// CurrencyFor returns the currency prices are shown in for l.
func CurrencyFor(l lang.Language) Currency {
	if l == lang.Spanish {
		return COP
	}
	return USD
}

// PriceData bundles both renderings of a COP price.
type PriceData struct {
	COP          int64  `json:"cop"`
	USD          int64  `json:"usd"`
	FormattedCOP string `json:"formattedCop"`
	FormattedUSD string `json:"formattedUsd"`
}

// Comparison is the Pixel Living vs. traditional rent breakdown.
type Comparison struct {
	Currency       Currency `json:"currency"`
	Pixel          string   `json:"pixel"`
	Rent           string   `json:"rent"`
	Utilities      string   `json:"utilities"`
	Internet       string   `json:"internet"`
	Cleaning       string   `json:"cleaning"`
	Total          string   `json:"total"`
	Savings        string   `json:"savings"`
	IsPixelCheaper bool     `json:"isPixelCheaper"`
}

// monthly reference costs of a traditional lease, in COP
const (
	traditionalRent      int64 = 1800000
	traditionalUtilities int64 = 350000
	traditionalInternet  int64 = 80000
	traditionalCleaning  int64 = 120000
)
