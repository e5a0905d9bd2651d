package geo

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/maber00/pixelabril/internal/lang"
)

// Group names used by the country table.
const (
	GroupSpanish = "spanish"
	GroupChinese = "chinese"
)

// DefaultSpanishCountries are the countries served in Spanish.
var DefaultSpanishCountries = []string{
	"AR", "BO", "BR", "CL", "CO", "CR", "CU", "DO",
	"EC", "SV", "GT", "HN", "MX", "NI", "PA", "PY",
	"PE", "PR", "UY", "VE", "ES",
}

// DefaultChineseCountries are the countries served in Chinese.
var DefaultChineseCountries = []string{"CN", "TW", "HK", "MO", "SG"}

// Classifier maps countries and browser locales to site languages.
type Classifier struct {
	spanish  map[string]struct{}
	chinese  map[string]struct{}
	fallback lang.Language
}

// NewClassifier builds a classifier from the two country groups. Countries in
// neither group classify as English.
func NewClassifier(spanish, chinese []string) *Classifier {
	return &Classifier{
		spanish:  countrySet(spanish),
		chinese:  countrySet(chinese),
		fallback: lang.English,
	}
}

// DefaultClassifier uses the compiled-in country groups.
func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultSpanishCountries, DefaultChineseCountries)
}

func countrySet(codes []string) map[string]struct{} {
	out := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = normalizeCountry(c)
		if c != "" {
			out[c] = struct{}{}
		}
	}
	return out
}

func normalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Classify maps a country code to a language. The Spanish group is checked
// before the Chinese group; anything else, including "", is English.
func (c *Classifier) Classify(country string) lang.Language {
	country = normalizeCountry(country)
	if country == "" {
		return c.fallback
	}
	if _, ok := c.spanish[country]; ok {
		return lang.Spanish
	}
	if _, ok := c.chinese[country]; ok {
		return lang.Chinese
	}
	return c.fallback
}

// Group returns the group name a country belongs to, or "" when unlisted.
func (c *Classifier) Group(country string) string {
	switch c.Classify(country) {
	case lang.Spanish:
		return GroupSpanish
	case lang.Chinese:
		return GroupChinese
	}
	return ""
}

// ClassifyBrowserLocale maps a browser locale such as "zh-CN" or "es-MX".
// An empty locale means the client sent no preference and yields the site default.
func (c *Classifier) ClassifyBrowserLocale(locale string) lang.Language {
	locale = strings.ToLower(strings.TrimSpace(locale))
	switch {
	case locale == "":
		return lang.Default
	case strings.HasPrefix(locale, "zh"):
		return lang.Chinese
	case strings.HasPrefix(locale, "es"):
		return lang.Spanish
	}
	return lang.English
}

// wildcard is the tag ParseAcceptLanguage yields for "*".
var wildcard = language.Make("mul")

// PrimaryLocale returns the highest-ranked concrete tag of an Accept-Language
// header, or "" when the header is empty, malformed or only a wildcard.
func PrimaryLocale(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return ""
	}
	for _, tag := range tags {
		if tag == language.Und || tag == wildcard {
			continue
		}
		return tag.String()
	}
	return ""
}
