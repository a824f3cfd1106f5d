package cms

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePage(t *testing.T, dir, lang, slug, body string) {
	t.Helper()
	path := filepath.Join(dir, lang)
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, slug+".md"), []byte(body), 0o644))
}

func TestPageParsesFrontMatterAndRendersBody(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "en", "aftercare", "---\ntitle: Aftercare\nsummary: Keep it bright\nupdated_at: 2025-03-01\nfooter: true\nseo:\n  title: Aftercare | Talia\n---\n## Routine\n\nUse **cool** water.\n")

	lib := NewLibrary(dir, "pt", nil)
	page, err := lib.Page("aftercare", "en")
	require.NoError(t, err)

	assert.Equal(t, "Aftercare", page.Title)
	assert.Equal(t, "Keep it bright", page.Summary)
	assert.Equal(t, "en", page.Lang)
	assert.True(t, page.InFooter)
	assert.Equal(t, "Aftercare | Talia", page.SEO.Title)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), page.UpdatedAt)
	assert.Contains(t, string(page.Body), "<strong>cool</strong>")
}

func TestPageFallsBackToDefaultLanguage(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "pt", "privacy", "---\ntitle: Privacidade\n---\nTexto.")

	lib := NewLibrary(dir, "pt", nil)
	page, err := lib.Page("privacy", "es")
	require.NoError(t, err)
	assert.Equal(t, "pt", page.Lang)
	assert.Equal(t, "Privacidade", page.Title)
}

func TestPageNotFound(t *testing.T) {
	lib := NewLibrary(t.TempDir(), "pt", nil)

	_, err := lib.Page("missing", "en")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = lib.Page("../etc/passwd", "en")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPageWithoutTitleUsesSlug(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "en", "color-faq", "Plain body.")

	page, err := NewLibrary(dir, "en", nil).Page("color-faq", "en")
	require.NoError(t, err)
	assert.Equal(t, "Color Faq", page.Title)
}

func TestPageRejectsBrokenFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "en", "broken", "---\ntitle: [unclosed\n---\nbody")

	_, err := NewLibrary(dir, "en", nil).Page("broken", "en")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPageCacheExpires(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "en", "privacy", "---\ntitle: First\n---\nbody")

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	lib := NewLibrary(dir, "en", nil, WithCacheTTL(time.Minute), WithClock(func() time.Time { return now }))

	page, err := lib.Page("privacy", "en")
	require.NoError(t, err)
	assert.Equal(t, "First", page.Title)

	writePage(t, dir, "en", "privacy", "---\ntitle: Second\n---\nbody")
	page, err = lib.Page("privacy", "en")
	require.NoError(t, err)
	assert.Equal(t, "First", page.Title)

	now = now.Add(2 * time.Minute)
	page, err = lib.Page("privacy", "en")
	require.NoError(t, err)
	assert.Equal(t, "Second", page.Title)
}

func TestFooterOrdersAndMergesFallback(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "pt", "aftercare", "---\ntitle: Cuidados\norder: 1\nfooter: true\n---\nx")
	writePage(t, dir, "pt", "privacy", "---\ntitle: Privacidade\norder: 2\nfooter: true\n---\nx")
	writePage(t, dir, "pt", "draft", "---\ntitle: Rascunho\n---\nx")
	writePage(t, dir, "en", "privacy", "---\ntitle: Privacy\norder: 2\nfooter: true\n---\nx")

	pages := NewLibrary(dir, "pt", nil).Footer("en")
	require.Len(t, pages, 2)
	assert.Equal(t, "Cuidados", pages[0].Title)
	assert.Equal(t, "Privacy", pages[1].Title)
}
