package main

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	mw "github.com/sahasand/talia-colors-website/internal/middleware"
	"github.com/sahasand/talia-colors-website/internal/observability"
	"github.com/sahasand/talia-colors-website/internal/seo"
)

// RobotsHandler serves robots.txt.
func (s *server) RobotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(seo.Robots(s.cfg.Site.BaseURL)))
}

// SitemapHandler lists the localized home pages, their sections and the content pages.
func (s *server) SitemapHandler(w http.ResponseWriter, r *http.Request) {
	var pages []string
	for _, p := range s.pages.Footer(s.cfg.Site.DefaultLocale) {
		pages = append(pages, "/pages/"+p.Slug)
	}
	body, err := seo.SitemapXML(seo.SiteMap(s.cfg.Site.BaseURL, s.bundle.Supported(), s.cfg.Site.DefaultLocale, pages, s.modified))
	if err != nil {
		observability.FromContext(r.Context()).Error("sitemap render failed", zap.Error(err))
		http.Error(w, "sitemap unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(body)
}

// ManifestHandler serves the web app manifest in the visitor's language.
func (s *server) ManifestHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	m := seo.WebManifest(
		s.bundle.T(lang, "metadata.title"),
		s.cfg.Site.Brand,
		s.bundle.T(lang, "metadata.description"),
		manifestLang(lang),
	)
	w.Header().Set("Content-Type", "application/manifest+json")
	_ = json.NewEncoder(w).Encode(m)
}

func manifestLang(lang string) string {
	switch lang {
	case "pt":
		return "pt-BR"
	case "es":
		return "es-ES"
	case "en":
		return "en-US"
	}
	return lang
}
