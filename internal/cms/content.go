// Package cms serves localized static pages written as markdown with YAML front matter.
package cms

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sahasand/talia-colors-website/internal/richtext"
)

// ErrNotFound is returned when no page exists for a slug in any candidate language.
var ErrNotFound = errors.New("cms: not found")

// Page is a localized static page.
type Page struct {
	Slug      string
	Lang      string
	Title     string
	Summary   string
	Body      template.HTML
	UpdatedAt time.Time
	Order     int
	InFooter  bool
	SEO       PageSEO
}

// PageSEO holds optional metadata overrides.
type PageSEO struct {
	Title       string
	Description string
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	UpdatedAt string `yaml:"updated_at"`
	Order     int    `yaml:"order"`
	Footer    bool   `yaml:"footer"`
	SEO       struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
	} `yaml:"seo"`
}

const defaultCacheTTL = 5 * time.Minute

// Library loads pages from <dir>/<lang>/<slug>.md, falling back to the default language.
type Library struct {
	dir      string
	fallback string
	renderer *richtext.Renderer
	ttl      time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	page    Page
	expires time.Time
}

// Option customises a Library.
type Option func(*Library)

// WithCacheTTL overrides how long rendered pages are kept. Zero disables caching.
func WithCacheTTL(d time.Duration) Option {
	return func(l *Library) {
		if d >= 0 {
			l.ttl = d
		}
	}
}

// WithClock sets the time source used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(l *Library) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLibrary returns a Library rooted at dir.
func NewLibrary(dir, fallback string, renderer *richtext.Renderer, opts ...Option) *Library {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "content"
	}
	if renderer == nil {
		renderer = richtext.New()
	}
	l := &Library{
		dir:      dir,
		fallback: strings.ToLower(strings.TrimSpace(fallback)),
		renderer: renderer,
		ttl:      defaultCacheTTL,
		now:      time.Now,
		cache:    map[string]cacheEntry{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Page returns the page for slug in lang, or in the fallback language when lang has none.
func (l *Library) Page(slug, lang string) (Page, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, ErrNotFound
	}
	lang = strings.ToLower(strings.TrimSpace(lang))

	key := lang + "|" + slug
	if page, ok := l.cached(key); ok {
		return page, nil
	}

	for _, candidate := range l.candidates(lang) {
		page, err := l.read(candidate, slug)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return Page{}, err
		}
		l.store(key, page)
		return page, nil
	}
	return Page{}, ErrNotFound
}

// Footer lists the pages flagged for the footer in lang, ordered by their order field.
func (l *Library) Footer(lang string) []Page {
	seen := map[string]bool{}
	var pages []Page
	for _, candidate := range l.candidates(strings.ToLower(strings.TrimSpace(lang))) {
		entries, err := os.ReadDir(filepath.Join(l.dir, candidate))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || filepath.Ext(name) != ".md" {
				continue
			}
			slug := strings.TrimSuffix(name, ".md")
			if seen[slug] {
				continue
			}
			seen[slug] = true
			page, err := l.Page(slug, lang)
			if err != nil || !page.InFooter {
				continue
			}
			pages = append(pages, page)
		}
	}
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Order != pages[j].Order {
			return pages[i].Order < pages[j].Order
		}
		return pages[i].Slug < pages[j].Slug
	})
	return pages
}

func (l *Library) candidates(lang string) []string {
	out := []string{}
	if lang != "" {
		out = append(out, lang)
	}
	if l.fallback != "" && l.fallback != lang {
		out = append(out, l.fallback)
	}
	return out
}

func (l *Library) read(lang, slug string) (Page, error) {
	file := filepath.Join(l.dir, lang, slug+".md")
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, err
	}

	fm, body := splitFrontMatter(string(data))
	front := frontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("cms: parse front matter %s: %w", file, err)
		}
	}
	html, err := l.renderer.Render(body)
	if err != nil {
		return Page{}, fmt.Errorf("cms: render %s: %w", file, err)
	}

	page := Page{
		Slug:     slug,
		Lang:     lang,
		Title:    strings.TrimSpace(front.Title),
		Summary:  strings.TrimSpace(front.Summary),
		Body:     html,
		Order:    front.Order,
		InFooter: front.Footer,
		SEO: PageSEO{
			Title:       strings.TrimSpace(front.SEO.Title),
			Description: strings.TrimSpace(front.SEO.Description),
		},
	}
	page.UpdatedAt = parseDate(front.UpdatedAt)
	if page.UpdatedAt.IsZero() {
		if info, err := os.Stat(file); err == nil {
			page.UpdatedAt = info.ModTime()
		}
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	return page, nil
}

func (l *Library) cached(key string) (Page, bool) {
	if l.ttl == 0 {
		return Page{}, false
	}
	l.mu.RLock()
	entry, ok := l.cache[key]
	l.mu.RUnlock()
	if !ok || l.now().After(entry.expires) {
		return Page{}, false
	}
	return entry.page, true
}

func (l *Library) store(key string, page Page) {
	if l.ttl == 0 {
		return
	}
	l.mu.Lock()
	l.cache[key] = cacheEntry{page: page, expires: l.now().Add(l.ttl)}
	l.mu.Unlock()
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func sanitizeSlug(slug string) string {
	slug = strings.Trim(strings.TrimSpace(strings.ToLower(slug)), "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}
