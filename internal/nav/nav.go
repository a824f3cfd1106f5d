package nav

import (
	"strings"

	"github.com/sahasand/talia-colors-website/internal/seo"
)

// Item represents a top-level navigation item: a section anchor on the home page.
type Item struct {
	Anchor   string // e.g. "ai-color-picker"
	LabelKey string // i18n key, e.g. "nav.colorPicker"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
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

// LanguageLink is one entry of the language switcher.
type LanguageLink struct {
	Code     string
	LabelKey string
	Href     string
	Active   bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Anchor: "ai-color-picker", LabelKey: "nav.colorPicker"},
	{Anchor: "gallery", LabelKey: "nav.gallery"},
	{Anchor: "contact", LabelKey: "nav.contact"},
}

// Build renders navigation items for lang. On the home page the links are bare anchors;
// elsewhere they point back at the localized home page.
func Build(currentPath, lang, defaultLang string) []RenderedItem {
	home := seo.LocalePath(lang, defaultLang, "")
	onHome := currentPath == "" || currentPath == home
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		href := "#" + it.Anchor
		if !onHome {
			href = home + href
		}
		items = append(items, RenderedItem{Href: href, LabelKey: it.LabelKey})
	}
	return items
}

// Languages builds the language switcher for the page at path (without locale prefix).
func Languages(locales []string, current, defaultLang, path string) []LanguageLink {
	out := make([]LanguageLink, 0, len(locales))
	for _, l := range locales {
		out = append(out, LanguageLink{
			Code:     l,
			LabelKey: "language." + l,
			Href:     seo.LocalePath(l, defaultLang, path),
			Active:   l == current,
		})
	}
	return out
}

// StripLocale removes a leading locale segment from path.
func StripLocale(path string, locales []string) string {
	trimmed := strings.TrimPrefix(path, "/")
	seg, rest, _ := strings.Cut(trimmed, "/")
	for _, l := range locales {
		if seg == l {
			if rest == "" {
				return "/"
			}
			return "/" + rest
		}
	}
	if path == "" {
		return "/"
	}
	return path
}

// Breadcrumbs builds Home > Title for a content page.
func Breadcrumbs(lang, defaultLang, pagePath, title string) []Crumb {
	crumbs := []Crumb{{Href: seo.LocalePath(lang, defaultLang, ""), LabelKey: "nav.home"}}
	if pagePath == "" || pagePath == "/" {
		crumbs[0].Active = true
		return crumbs
	}
	return append(crumbs, Crumb{
		Href:   seo.LocalePath(lang, defaultLang, pagePath),
		Label:  titleFromSegment(title, pagePath),
		Active: true,
	})
}

func titleFromSegment(title, pagePath string) string {
	if title != "" {
		return title
	}
	seg := pagePath[strings.LastIndex(pagePath, "/")+1:]
	if seg == "" {
		return seg
	}
	// replace hyphens/underscores with spaces and capitalize first letter
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}
