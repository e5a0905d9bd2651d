// Package lang defines the closed set of languages served by the site and the
// URL conventions attached to each of them.
package lang

import (
	"strings"
)

// Language is one of the supported site languages.
type Language string

const (
	Spanish Language = "es"
	English Language = "en"
	Chinese Language = "zh"
)

// Default is the site language served without a path prefix.
const Default = Spanish

// Supported lists every language in display order.
var Supported = []Language{Spanish, English, Chinese}

// Parse returns the language for a raw code. The second value is false when
// the code is not supported.
func Parse(raw string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(raw))) {
	case Spanish:
		return Spanish, true
	case English:
		return English, true
	case Chinese:
		return Chinese, true
	}
	return "", false
}

// Normalize is Parse with unrecognized values mapped to Default.
func Normalize(raw string) Language {
	if l, ok := Parse(raw); ok {
		return l
	}
	return Default
}

func (l Language) String() string { return string(l) }

// Valid reports whether l is part of the supported set.
func (l Language) Valid() bool {
	switch l {
	case Spanish, English, Chinese:
		return true
	}
	return false
}

// IsDefault reports whether l is served without prefix.
func (l Language) IsDefault() bool { return l == Default }

// Prefix returns the URL path prefix for l ("" for the default language).
func (l Language) Prefix() string {
	if l.IsDefault() || !l.Valid() {
		return ""
	}
	return "/" + string(l)
}

// Root returns the localized home path.
func (l Language) Root() string {
	if p := l.Prefix(); p != "" {
		return p
	}
	return "/"
}

// Region returns the regional tag advertised for l.
func (l Language) Region() string {
	switch l {
	case English:
		return "en-US"
	case Chinese:
		return "zh-CN"
	default:
		return "es-CO"
	}
}

// FromPath extracts the language from a URL path prefix. Paths without a
// recognized prefix belong to the default language. The match is per segment,
// so "/enter" stays in the default language.
func FromPath(path string) Language {
	l, _ := splitPath(path)
	return l
}

// StripPrefix removes the language prefix from path, always returning a path
// starting with "/".
func StripPrefix(path string) string {
	_, rest := splitPath(path)
	return rest
}

func splitPath(path string) (Language, string) {
	if path == "" {
		return Default, "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for _, l := range Supported {
		p := l.Prefix()
		if p == "" {
			continue
		}
		if path == p {
			return l, "/"
		}
		if strings.HasPrefix(path, p+"/") {
			return l, strings.TrimPrefix(path, p)
		}
	}
	return Default, path
}

// Localize rewrites path into its equivalent under l.
func Localize(path string, l Language) string {
	base := StripPrefix(path)
	p := l.Prefix()
	if p == "" {
		return base
	}
	if base == "/" {
		return p
	}
	return p + base
}

// Alternates returns the localized variant of path for every supported language.
func Alternates(path string) map[Language]string {
	out := make(map[Language]string, len(Supported))
	for _, l := range Supported {
		out[l] = Localize(path, l)
	}
	return out
}
