package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var locales = []string{"pt", "es", "en"}

func TestBuildOnHomeUsesAnchors(t *testing.T) {
	items := Build("/es", "es", "pt")
	require.Len(t, items, 3)
	assert.Equal(t, "#ai-color-picker", items[0].Href)
	assert.Equal(t, "nav.colorPicker", items[0].LabelKey)
}

func TestBuildOffHomeLinksBack(t *testing.T) {
	items := Build("/es/pages/privacy", "es", "pt")
	assert.Equal(t, "/es#gallery", items[1].Href)

	items = Build("/pages/privacy", "pt", "pt")
	assert.Equal(t, "/#contact", items[2].Href)
}

func TestLanguages(t *testing.T) {
	links := Languages(locales, "en", "pt", "/pages/aftercare")
	require.Len(t, links, 3)
	assert.Equal(t, LanguageLink{Code: "pt", LabelKey: "language.pt", Href: "/pages/aftercare"}, links[0])
	assert.Equal(t, "/es/pages/aftercare", links[1].Href)
	assert.True(t, links[2].Active)
}

func TestStripLocale(t *testing.T) {
	assert.Equal(t, "/", StripLocale("/en", locales))
	assert.Equal(t, "/pages/privacy", StripLocale("/es/pages/privacy", locales))
	assert.Equal(t, "/pages/privacy", StripLocale("/pages/privacy", locales))
	assert.Equal(t, "/", StripLocale("", locales))
}

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs("en", "pt", "/pages/color-care", "")
	require.Len(t, crumbs, 2)
	assert.Equal(t, "/en", crumbs[0].Href)
	assert.Equal(t, "Color care", crumbs[1].Label)
	assert.True(t, crumbs[1].Active)

	crumbs = Breadcrumbs("pt", "pt", "/", "")
	require.Len(t, crumbs, 1)
	assert.True(t, crumbs[0].Active)
}
