package handlers

import (
	"html/template"

	"github.com/sahasand/talia-colors-website/internal/nav"
	"github.com/sahasand/talia-colors-website/internal/seo"
)

// Site is the layout data shared by every page.
type Site struct {
	Brand         string
	BaseURL       string
	DefaultLocale string
	Locales       []string
	InstagramURL  string
	WhatsAppURL   string
	Dev           bool
}

// FooterLink points at a content page.
type FooterLink struct {
	Href  string
	Title string
}

// PageData is a generic view model for simple pages using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	Site      Site
	SEO       seo.Meta
	JSONLD    []template.JS
	Analytics Analytics
	CSRFToken string

	Path        string
	Nav         []nav.RenderedItem
	Languages   []nav.LanguageLink
	Breadcrumbs []nav.Crumb
	Footer      []FooterLink

	// Optional per-page view model payloads
	Home    *HomeData
	Picker  any
	Content any
}
