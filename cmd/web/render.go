package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	mw "github.com/sahasand/talia-colors-website/internal/middleware"
	"github.com/sahasand/talia-colors-website/internal/observability"
)

// templateSet holds the shared layout and partials plus one clone per page, so every page
// can define its own "content" block.
type templateSet struct {
	shared *template.Template
	pages  map[string]*template.Template
}

// views parses templates once, or on every request in dev mode.
type views struct {
	dir   string
	dev   bool
	funcs template.FuncMap

	mu    sync.RWMutex
	cache *templateSet
}

func newViews(dir string, dev bool, funcs template.FuncMap) (*views, error) {
	v := &views{dir: dir, dev: dev, funcs: funcs}
	set, err := v.parse()
	if err != nil {
		return nil, err
	}
	v.cache = set
	return v, nil
}

func (v *views) set() (*templateSet, error) {
	if v.dev {
		return v.parse()
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cache, nil
}

// parse discovers every .tmpl under dir. Files under pages/ are pages; the rest is shared.
func (v *views) parse() (*templateSet, error) {
	var shared, pages []string
	if err := filepath.WalkDir(v.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tmpl") {
			return nil
		}
		rel, _ := filepath.Rel(v.dir, path)
		if strings.HasPrefix(filepath.ToSlash(rel), "pages/") {
			pages = append(pages, path)
		} else {
			shared = append(shared, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(shared) == 0 {
		return nil, fmt.Errorf("no templates found under %s", v.dir)
	}
	base, err := template.New("_root").Funcs(v.funcs).ParseFiles(shared...)
	if err != nil {
		return nil, err
	}
	if base.Lookup("base") == nil {
		return nil, fmt.Errorf("templates under %s do not define \"base\"", v.dir)
	}
	set := &templateSet{shared: base, pages: map[string]*template.Template{}}
	for _, page := range pages {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFiles(page); err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(page), ".tmpl")
		set.pages[name] = clone
	}
	return set, nil
}

// renderPage executes the base layout with the named page's content block.
func (v *views) renderPage(w http.ResponseWriter, r *http.Request, name string, data any, status int) {
	set, err := v.set()
	if err != nil {
		v.fail(w, r, "template parse error", err)
		return
	}
	t, ok := set.pages[name]
	if !ok {
		v.fail(w, r, "template not found", fmt.Errorf("page %q", name))
		return
	}
	v.write(w, r, t, "base", data, status)
}

// renderTemplate executes a shared template such as an htmx fragment.
func (v *views) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any, status int) {
	set, err := v.set()
	if err != nil {
		v.fail(w, r, "template parse error", err)
		return
	}
	v.write(w, r, set.shared, name, data, status)
}

func (v *views) write(w http.ResponseWriter, r *http.Request, t *template.Template, name string, data any, status int) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		v.fail(w, r, "template exec error", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (v *views) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	observability.FromContext(r.Context()).Error(msg, zap.Error(err))
	detail := msg
	if v.dev {
		detail = fmt.Sprintf("%s: %v", msg, err)
	}
	mw.WriteError(w, r, http.StatusInternalServerError, "template", detail)
}
