package seo

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var locales = []string{"pt", "es", "en"}

func TestLocalePath(t *testing.T) {
	assert.Equal(t, "/", LocalePath("pt", "pt", ""))
	assert.Equal(t, "/es", LocalePath("es", "pt", "/"))
	assert.Equal(t, "/en/pages/privacy", LocalePath("en", "pt", "pages/privacy"))
	assert.Equal(t, "/pages/privacy", LocalePath("pt", "pt", "/pages/privacy"))
}

func TestAlternates(t *testing.T) {
	alts := Alternates("https://taliacolors.com/", "", locales, "pt")
	require.Len(t, alts, 4)
	assert.Equal(t, Alternate{Lang: "pt", Href: "https://taliacolors.com/"}, alts[0])
	assert.Equal(t, Alternate{Lang: "es", Href: "https://taliacolors.com/es"}, alts[1])
	assert.Equal(t, Alternate{Lang: "x-default", Href: "https://taliacolors.com/"}, alts[3])
}

func TestSiteMap(t *testing.T) {
	urls := SiteMap("https://taliacolors.com", locales, "pt", []string{"/pages/aftercare"}, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	require.Len(t, urls, 12)

	assert.Equal(t, "https://taliacolors.com", urls[0].Loc)
	assert.Equal(t, 1.0, urls[0].Priority)
	assert.Equal(t, "https://taliacolors.com#ai-color-picker", urls[1].Loc)
	assert.Equal(t, "https://taliacolors.com#gallery", urls[2].Loc)
	assert.Equal(t, "https://taliacolors.com/pages/aftercare", urls[3].Loc)
	assert.Equal(t, "https://taliacolors.com/es", urls[4].Loc)
	assert.Equal(t, "https://taliacolors.com/en#ai-color-picker", urls[9].Loc)
	assert.Equal(t, "2025-03-01", urls[0].LastMod)

	doc, err := SitemapXML(urls)
	require.NoError(t, err)
	s := string(doc)
	assert.True(t, strings.HasPrefix(s, "<?xml"))
	assert.Contains(t, s, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	assert.Contains(t, s, "<loc>https://taliacolors.com/es#gallery</loc>")
}

func TestRobots(t *testing.T) {
	out := Robots("https://taliacolors.com/")
	assert.Contains(t, out, "Disallow: /color-picker/\n")
	assert.Contains(t, out, "Disallow: /photos/\n")
	assert.Contains(t, out, "Sitemap: https://taliacolors.com/sitemap.xml\n")
}

func TestHairSalonSchema(t *testing.T) {
	b := DefaultBusiness("https://taliacolors.com", "https://instagram.com/taliacolors", "")
	b.Description = "Coloração"

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(JSON(HairSalon(b))), &decoded))
	assert.Equal(t, "HairSalon", decoded["@type"])
	assert.Equal(t, []any{"https://instagram.com/taliacolors"}, decoded["sameAs"])

	hours := decoded["openingHoursSpecification"].([]any)
	require.Len(t, hours, 2)
	assert.Equal(t, "Saturday", hours[1].(map[string]any)["dayOfWeek"])
}

func TestWebSiteSchemaLanguages(t *testing.T) {
	b := DefaultBusiness("https://taliacolors.com", "", "")
	site := WebSite(b, locales)
	langs := site["inLanguage"].([]map[string]any)
	require.Len(t, langs, 3)
	assert.Equal(t, "Spanish", langs[1]["name"])
	assert.Equal(t, "https://taliacolors.com/#website", site["@id"])
}

func TestWebManifest(t *testing.T) {
	m := WebManifest("Talia Colors - AI", "Talia Colors", "desc", "pt-BR")
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"theme_color":"#8b5cf6"`)
	assert.Contains(t, string(raw), `"short_name":"Talia Colors"`)
}
