package seo

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// SitemapURL is one <url> entry.
type SitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapSection is an anchored section of the home page.
type SitemapSection struct {
	Anchor     string
	ChangeFreq string
	Priority   float64
}

// HomeSections are the home page sections listed for every locale.
var HomeSections = []SitemapSection{
	{Anchor: "ai-color-picker", ChangeFreq: "monthly", Priority: 0.8},
	{Anchor: "gallery", ChangeFreq: "weekly", Priority: 0.7},
}

// SiteMap lists the home page and its sections for each locale, followed by extra pages.
func SiteMap(baseURL string, locales []string, defaultLocale string, pages []string, modified time.Time) []SitemapURL {
	baseURL = strings.TrimRight(baseURL, "/")
	lastmod := ""
	if !modified.IsZero() {
		lastmod = modified.UTC().Format("2006-01-02")
	}
	var out []SitemapURL
	for _, l := range locales {
		home := baseURL + LocalePath(l, defaultLocale, "")
		if home == baseURL+"/" {
			home = baseURL
		}
		out = append(out, SitemapURL{Loc: home, LastMod: lastmod, ChangeFreq: "weekly", Priority: 1.0})
		for _, s := range HomeSections {
			out = append(out, SitemapURL{
				Loc:        home + "#" + s.Anchor,
				LastMod:    lastmod,
				ChangeFreq: s.ChangeFreq,
				Priority:   s.Priority,
			})
		}
		for _, p := range pages {
			out = append(out, SitemapURL{
				Loc:        baseURL + LocalePath(l, defaultLocale, p),
				LastMod:    lastmod,
				ChangeFreq: "yearly",
				Priority:   0.3,
			})
		}
	}
	return out
}

// SitemapXML renders urls as a sitemap document.
func SitemapXML(urls []SitemapURL) ([]byte, error) {
	body, err := xml.MarshalIndent(urlset{XMLNS: sitemapNS, URLs: urls}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("seo: marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// Robots renders robots.txt. The color picker fragments and uploaded photos are never indexed.
func Robots(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	for _, p := range []string{"/color-picker/", "/photos/", "/metrics", "/healthz"} {
		b.WriteString("Disallow: " + p + "\n")
	}
	b.WriteString("\n")
	b.WriteString("Sitemap: " + baseURL + "/sitemap.xml\n")
	b.WriteString("Host: " + baseURL + "\n")
	return b.String()
}
