package main

import (
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sahasand/talia-colors-website/internal/booking"
	"github.com/sahasand/talia-colors-website/internal/cms"
	"github.com/sahasand/talia-colors-website/internal/config"
	"github.com/sahasand/talia-colors-website/internal/format"
	handlersPkg "github.com/sahasand/talia-colors-website/internal/handlers"
	"github.com/sahasand/talia-colors-website/internal/i18n"
	"github.com/sahasand/talia-colors-website/internal/intake"
	mw "github.com/sahasand/talia-colors-website/internal/middleware"
	"github.com/sahasand/talia-colors-website/internal/observability"
	"github.com/sahasand/talia-colors-website/internal/recommend"
	"github.com/sahasand/talia-colors-website/internal/richtext"
	"github.com/sahasand/talia-colors-website/internal/seo"
	"github.com/sahasand/talia-colors-website/internal/status"
	"github.com/sahasand/talia-colors-website/internal/workflow"
)

// serverDeps bundles everything the HTTP layer needs.
type serverDeps struct {
	Config     config.Config
	Logger     *zap.Logger
	Bundle     *i18n.Bundle
	Picker     *workflow.Service
	Photos     *intake.Store
	Simulation workflow.Simulation
	Catalog    recommend.Catalog
	Booking    booking.Links
	Pages      *cms.Library
	Renderer   *richtext.Renderer
	Status     *status.Board
}

type server struct {
	cfg       config.Config
	logger    *zap.Logger
	bundle    *i18n.Bundle
	views     *views
	sessions  *mw.Sessions
	picker    *workflow.Service
	photos    *intake.Store
	sim       workflow.Simulation
	catalog   recommend.Catalog
	booking   booking.Links
	pages     *cms.Library
	rich      *richtext.Renderer
	status    *status.Board
	analytics handlersPkg.Analytics
	modified  time.Time
}

func newServer(deps serverDeps) (*server, error) {
	if deps.Bundle == nil || deps.Picker == nil || deps.Photos == nil {
		return nil, errors.New("web: bundle, picker and photos are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rich := deps.Renderer
	if rich == nil {
		rich = richtext.New()
	}
	pages := deps.Pages
	if pages == nil {
		pages = cms.NewLibrary(deps.Config.Paths.Content, deps.Bundle.Fallback(), rich)
	}
	catalog := deps.Catalog
	if catalog.Len() == 0 {
		catalog = recommend.DefaultCatalog()
	}
	board := deps.Status
	if board == nil {
		board = status.NewBoard()
	}
	s := &server{
		cfg:       deps.Config,
		logger:    logger,
		bundle:    deps.Bundle,
		sessions:  mw.NewSessions([]byte(deps.Config.Session.SigningKey), deps.Config.Session.Secure, logger),
		picker:    deps.Picker,
		photos:    deps.Photos,
		sim:       deps.Simulation,
		catalog:   catalog,
		booking:   deps.Booking,
		pages:     pages,
		rich:      rich,
		status:    board,
		analytics: handlersPkg.NewAnalytics(deps.Config.Analytics),
		modified:  time.Now().UTC(),
	}
	views, err := newViews(deps.Config.Paths.Templates, deps.Config.Server.Dev, s.funcs())
	if err != nil {
		return nil, err
	}
	s.views = views
	return s, nil
}

func (s *server) funcs() template.FuncMap {
	return template.FuncMap{
		"t": func(lang, key string) string { return s.bundle.T(lang, key) },
		// tf takes alternating name/value pairs for the {name} placeholders
		"tf": func(lang, key string, kv ...any) string {
			vars := map[string]string{}
			for i := 0; i+1 < len(kv); i += 2 {
				name, _ := kv[i].(string)
				vars[name] = toString(kv[i+1])
			}
			return s.bundle.Tf(lang, key, vars)
		},
		"add":     func(a, b int) int { return a + b },
		"percent": format.Percent,
		"fmtDate": format.FmtDate,
		"localePath": func(lang, path string) string {
			return seo.LocalePath(lang, s.cfg.Site.DefaultLocale, path)
		},
		"dict":  dict,
		"lower": strings.ToLower,
		"now":   time.Now,
	}
}

// dict builds a map from alternating keys and values so templates can pass several values
// to a nested template.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			m[k] = kv[i+1]
		}
	}
	return m
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case template.HTML:
		return string(x)
	}
	return ""
}

// routes wires the router the way main serves it.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(chimw.RealIP)
	r.Use(observability.InjectLoggerMiddleware(s.logger))
	r.Use(observability.RequestLoggerMiddleware)
	r.Use(observability.TraceMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", s.status.Handler().ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/assets/*", mw.Assets("/assets", filepath.Join(s.cfg.Paths.Public, "assets"), s.cfg.Server.Dev))
	r.Get("/robots.txt", s.RobotsHandler)
	r.Get("/sitemap.xml", s.SitemapHandler)
	r.Get("/photos/{photoID}", s.PhotoHandler)

	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(s.sessions.Middleware)
		r.Use(mw.Locale(s.bundle, s.cfg.Session.Secure))
		r.Use(mw.CSRF(s.cfg.Session.Secure))
		r.Use(mw.VaryLocale)

		r.Get("/manifest.webmanifest", s.ManifestHandler)
		r.Get("/", s.HomeHandler)
		r.Get("/pages/{slug}", s.ContentPageHandler)
		r.Route("/{locale}", func(r chi.Router) {
			r.Use(s.requireLocale)
			r.Get("/", s.HomeHandler)
			r.Get("/pages/{slug}", s.ContentPageHandler)
		})

		r.Route("/color-picker", func(r chi.Router) {
			r.Get("/", s.ColorPickerFrag)
			r.Post("/photo", s.PhotoUploadHandler)
			r.Post("/answer", s.AnswerHandler)
			r.Post("/next", s.NextHandler)
			r.Post("/previous", s.PreviousHandler)
			r.Get("/processing", s.ProcessingPollFrag)
			r.Post("/reset", s.ResetHandler)
			r.Get("/book", s.BookHandler)
		})

		r.NotFound(s.NotFoundHandler)
	})
	return r
}

func (s *server) requireLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.bundle.IsSupported(chi.URLParam(r, "locale")) {
			s.NotFoundHandler(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
