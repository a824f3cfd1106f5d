package seo

import (
	"strings"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	Locale      string
	URL         string
}

type Twitter struct {
	Card  string
	Site  string
	Image string
}

// Alternate is one hreflang link.
type Alternate struct {
	Lang string
	Href string
}

type Meta struct {
	Title       string
	Description string
	Keywords    string
	Canonical   string
	Alternates  []Alternate
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
}

// LocalePath prefixes path with the locale unless it is the default one.
func LocalePath(locale, defaultLocale, path string) string {
	if path == "" || path == "/" {
		path = ""
	} else if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if locale == "" || locale == defaultLocale {
		if path == "" {
			return "/"
		}
		return path
	}
	return "/" + locale + path
}

// Alternates builds hreflang links for path in every locale plus x-default.
func Alternates(baseURL, path string, locales []string, defaultLocale string) []Alternate {
	baseURL = strings.TrimRight(baseURL, "/")
	out := make([]Alternate, 0, len(locales)+1)
	for _, l := range locales {
		out = append(out, Alternate{Lang: l, Href: baseURL + LocalePath(l, defaultLocale, path)})
	}
	out = append(out, Alternate{Lang: "x-default", Href: baseURL + LocalePath(defaultLocale, defaultLocale, path)})
	return out
}

// OGLocale maps a site language to the Open Graph locale format.
func OGLocale(lang string) string {
	switch lang {
	case "pt":
		return "pt_BR"
	case "es":
		return "es_ES"
	case "en":
		return "en_US"
	}
	return lang
}
