package main

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sahasand/talia-colors-website/internal/cms"
	handlersPkg "github.com/sahasand/talia-colors-website/internal/handlers"
	mw "github.com/sahasand/talia-colors-website/internal/middleware"
	"github.com/sahasand/talia-colors-website/internal/nav"
	"github.com/sahasand/talia-colors-website/internal/observability"
	"github.com/sahasand/talia-colors-website/internal/seo"
)

const ogImage = "/assets/img/og-image.jpg"

// business returns the structured data description of the salon for lang.
func (s *server) business(lang string) seo.Business {
	b := seo.DefaultBusiness(s.cfg.Site.BaseURL, s.cfg.Site.InstagramURL, s.booking.GeneralURL(s.bundle, lang))
	b.Name = s.cfg.Site.Brand
	b.Description = s.bundle.T(lang, "metadata.description")
	return b
}

// pageData fills the layout fields shared by every page.
func (s *server) pageData(r *http.Request, title, description string) handlersPkg.PageData {
	lang := mw.Lang(r)
	def := s.cfg.Site.DefaultLocale
	locales := s.bundle.Supported()
	pagePath := nav.StripLocale(r.URL.Path, locales)
	base := s.cfg.Site.BaseURL
	canonical := base + seo.LocalePath(lang, def, pagePath)

	footer := []handlersPkg.FooterLink{}
	for _, p := range s.pages.Footer(lang) {
		footer = append(footer, handlersPkg.FooterLink{
			Href:  seo.LocalePath(lang, def, "/pages/"+p.Slug),
			Title: p.Title,
		})
	}

	return handlersPkg.PageData{
		Title: title,
		Lang:  lang,
		Site: handlersPkg.Site{
			Brand:         s.cfg.Site.Brand,
			BaseURL:       base,
			DefaultLocale: def,
			Locales:       locales,
			InstagramURL:  s.cfg.Site.InstagramURL,
			WhatsAppURL:   s.booking.GeneralURL(s.bundle, lang),
			Dev:           s.cfg.Server.Dev,
		},
		SEO: seo.Meta{
			Title:       title,
			Description: description,
			Keywords:    s.bundle.T(lang, "metadata.keywords"),
			Canonical:   canonical,
			Alternates:  seo.Alternates(base, pagePath, locales, def),
			Robots:      "index,follow",
			OG: seo.OpenGraph{
				Title:       title,
				Description: description,
				Image:       base + ogImage,
				Type:        "website",
				Locale:      seo.OGLocale(lang),
				URL:         canonical,
			},
			Twitter: seo.Twitter{Card: "summary_large_image", Image: base + ogImage},
		},
		Analytics: s.analytics,
		CSRFToken: mw.CSRFToken(r),
		Path:      r.URL.Path,
		Nav:       nav.Build(r.URL.Path, lang, def),
		Languages: nav.Languages(locales, lang, def, pagePath),
		Footer:    footer,
	}
}

// HomeHandler renders the landing page with the color picker in its current stage.
func (s *server) HomeHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := s.pickerSession(r)
	// Poll so a plain reload also finishes a completed analysis.
	v, err := s.picker.Poll(r.Context(), id, mw.Lang(r))
	if err != nil {
		s.pickerError(w, r, id, v, err)
		return
	}
	pv := s.buildPickerView(v, mw.Lang(r), mw.CSRFToken(r), "")
	s.renderHome(w, r, &pv, http.StatusOK)
}

func (s *server) renderHome(w http.ResponseWriter, r *http.Request, pv *PickerView, status int) {
	lang := mw.Lang(r)
	data := s.pageData(r, s.bundle.T(lang, "metadata.title"), s.bundle.T(lang, "metadata.description"))
	home := handlersPkg.BuildHomeData()
	data.Home = &home
	data.Picker = pv

	b := s.business(lang)
	var services []seo.Service
	for _, p := range s.catalog.Localize(s.bundle, lang) {
		services = append(services, seo.Service{Slug: p.ID, Name: p.Name, Description: p.Description, Price: p.Price})
	}
	data.JSONLD = []template.JS{
		seo.JSON(seo.HairSalon(b)),
		seo.JSON(seo.Organization(b)),
		seo.JSON(seo.WebSite(b, s.bundle.Supported())),
		seo.JSON(seo.ServiceList(b, s.bundle.T(lang, "aiColorPicker.title"), services)),
	}
	s.views.renderPage(w, r, "home", data, status)
}

// ContentPageHandler renders a markdown page such as aftercare or privacy.
func (s *server) ContentPageHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	page, err := s.pages.Page(chi.URLParam(r, "slug"), lang)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			s.NotFoundHandler(w, r)
			return
		}
		observability.FromContext(r.Context()).Error("content page failed", zap.Error(err))
		s.serverError(w, r, err)
		return
	}
	title := page.Title + " | " + s.cfg.Site.Brand
	if page.SEO.Title != "" {
		title = page.SEO.Title
	}
	desc := page.Summary
	if page.SEO.Description != "" {
		desc = page.SEO.Description
	}
	data := s.pageData(r, title, desc)
	data.SEO.OG.Type = "article"
	pagePath := "/pages/" + page.Slug
	data.Breadcrumbs = nav.Breadcrumbs(lang, s.cfg.Site.DefaultLocale, pagePath, page.Title)
	data.JSONLD = []template.JS{seo.JSON(seo.BreadcrumbList([]seo.BreadcrumbItem{
		{Name: s.bundle.T(lang, "nav.home"), Item: s.cfg.Site.BaseURL + seo.LocalePath(lang, s.cfg.Site.DefaultLocale, "")},
		{Name: page.Title, Item: data.SEO.Canonical},
	}))}
	data.Content = page
	s.views.renderPage(w, r, "content", data, http.StatusOK)
}

// NotFoundHandler renders the localized 404 page; htmx callers get the JSON envelope.
func (s *server) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	if mw.IsHTMX(r.Context()) {
		mw.WriteError(w, r, http.StatusNotFound, "not_found", s.bundle.T(lang, "errors.notFound"))
		return
	}
	data := s.pageData(r, s.bundle.T(lang, "errors.notFound")+" | "+s.cfg.Site.Brand, "")
	data.SEO.Robots = "noindex"
	s.views.renderPage(w, r, "not_found", data, http.StatusNotFound)
}
