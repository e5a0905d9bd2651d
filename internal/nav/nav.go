// Package nav builds the localized navigation, language switcher and
// breadcrumbs of the site.
package nav

import (
	"strings"

	"github.com/maber00/pixelabril/internal/lang"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // unprefixed, e.g. "/#estudios"
	LabelKey string // i18n key, e.g. "nav.studios"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// LanguageLink is one entry of the language switcher.
type LanguageLink struct {
	Lang     lang.Language
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the primary navigation definition. The landing page is a single
// document, so sections are fragment links.
var Main = []Item{
	{Path: "/", LabelKey: "nav.home"},
	{Path: "/#estudios", LabelKey: "nav.studios"},
	{Path: "/#precios", LabelKey: "nav.pricing"},
	{Path: "/#contacto", LabelKey: "nav.contact"},
}

// Build renders navigation items under the prefix of l, with active state
// given the current path.
func Build(currentPath string, l lang.Language) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	current := lang.StripPrefix(currentPath)
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		p, frag, _ := strings.Cut(it.Path, "#")
		href := lang.Localize(p, l)
		if frag != "" {
			href += "#" + frag
		}
		items = append(items, RenderedItem{
			Href:     href,
			LabelKey: it.LabelKey,
			Active:   frag == "" && isActive(p, current),
		})
	}
	return items
}

// Languages renders the switcher entries pointing at the equivalent of
// currentPath in every supported language.
func Languages(currentPath string) []LanguageLink {
	alts := lang.Alternates(currentPath)
	current := lang.FromPath(currentPath)
	out := make([]LanguageLink, 0, len(lang.Supported))
	for _, l := range lang.Supported {
		out = append(out, LanguageLink{
			Lang:     l,
			Href:     alts[l],
			LabelKey: "language." + l.String(),
			Active:   l == current,
		})
	}
	return out
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds breadcrumb entries for currentPath. label names the
// deepest segment when known (e.g. a studio name).
func Breadcrumbs(currentPath, label string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	l := lang.FromPath(currentPath)
	rest := strings.Trim(lang.StripPrefix(currentPath), "/")
	crumbs := []Crumb{{Href: l.Root(), LabelKey: "nav.home", Active: rest == ""}}
	if rest == "" {
		return crumbs
	}
	parts := strings.Split(rest, "/")
	href := ""
	for i, seg := range parts {
		href += "/" + seg
		c := Crumb{Href: lang.Localize(href, l), Active: i == len(parts)-1}
		switch {
		case i == 0 && seg == "estudios":
			c.LabelKey = "nav.studios"
			c.Href = l.Root() + "#estudios"
		case i == len(parts)-1 && label != "":
			c.Label = label
		default:
			c.Label = titleFromSegment(seg)
		}
		crumbs = append(crumbs, c)
	}
	return crumbs
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
