package i18n

import (
	"strings"

	"github.com/maber00/pixelabril/internal/lang"
)

// Alternate is one hreflang link.
type Alternate struct {
	Lang string
	Href string
}

// LocalizeURL returns path under the prefix of l.
func LocalizeURL(path string, l lang.Language) string {
	return lang.Localize(path, l)
}

// AlternateURLs lists the hreflang alternates of path, absolute when baseURL
// is set, followed by an x-default entry pointing at the default language.
func AlternateURLs(baseURL, path string) []Alternate {
	baseURL = strings.TrimRight(baseURL, "/")
	alts := lang.Alternates(path)
	out := make([]Alternate, 0, len(alts)+1)
	for _, l := range lang.Supported {
		out = append(out, Alternate{Lang: l.String(), Href: baseURL + alts[l]})
	}
	out = append(out, Alternate{Lang: "x-default", Href: baseURL + alts[lang.Default]})
	return out
}
