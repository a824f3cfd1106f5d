package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sahasand/talia-colors-website/internal/booking"
	"github.com/sahasand/talia-colors-website/internal/config"
	"github.com/sahasand/talia-colors-website/internal/i18n"
	"github.com/sahasand/talia-colors-website/internal/intake"
	"github.com/sahasand/talia-colors-website/internal/recommend"
	"github.com/sahasand/talia-colors-website/internal/status"
	"github.com/sahasand/talia-colors-website/internal/workflow"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type harness struct {
	srv      *httptest.Server
	client   *http.Client
	clock    *testClock
	sessions *workflow.Store
	photos   *intake.Store
}

// newHarness builds the full application graph the way main does, with a controllable clock.
func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Config{
		Server: config.ServerConfig{Dev: true},
		Site: config.SiteConfig{
			BaseURL:       "https://taliacolors.com",
			DefaultLocale: "pt",
			Locales:       []string{"pt", "es", "en"},
			Brand:         "Talia Colors",
			InstagramURL:  "https://instagram.com/taliacolors",
		},
		Paths: config.PathsConfig{
			Templates: "../../templates",
			Public:    "../../public",
			Locales:   "../../locales",
			Content:   "../../content",
		},
		Session: config.SessionConfig{SigningKey: "test-signing-key"},
	}
	bundle, err := i18n.Load(cfg.Paths.Locales, cfg.Site.DefaultLocale, cfg.Site.Locales)
	require.NoError(t, err)

	clock := &testClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	photos := intake.NewStore(intake.WithClock(clock.Now))
	sim := workflow.DefaultSimulation()
	sessions := workflow.NewStore(
		workflow.WithStoreClock(clock.Now),
		workflow.WithSessionOptions(workflow.WithReleaser(photos), workflow.WithSimulation(sim)),
	)
	picker, err := workflow.NewService(workflow.ServiceDeps{
		Sessions:   sessions,
		Photos:     photos,
		Engine:     recommend.NewEngine(),
		Translator: bundle,
	})
	require.NoError(t, err)
	links, err := booking.New(booking.DefaultPhone)
	require.NoError(t, err)

	board := status.NewBoard()
	board.Register("sessions", func(context.Context) (string, error) {
		return fmt.Sprintf("%d active", sessions.Len()), nil
	})

	s, err := newServer(serverDeps{
		Config:     cfg,
		Logger:     zap.NewNop(),
		Bundle:     bundle,
		Picker:     picker,
		Photos:     photos,
		Simulation: sim,
		Booking:    links,
		Status:     board,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &harness{srv: ts, client: client, clock: clock, sessions: sessions, photos: photos}
}

func (h *harness) csrf(t *testing.T) string {
	t.Helper()
	u, _ := url.Parse(h.srv.URL)
	for _, c := range h.client.Jar.Cookies(u) {
		if c.Name == "csrf_token" {
			return c.Value
		}
	}
	t.Fatalf("no csrf cookie yet")
	return ""
}

func (h *harness) get(t *testing.T, path string, htmx bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, h.srv.URL+path, nil)
	require.NoError(t, err)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	res, err := h.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func (h *harness) post(t *testing.T, path string, form url.Values, htmx bool) *http.Response {
	t.Helper()
	if !htmx {
		form.Set("csrf_token", h.csrf(t))
	}
	req, err := http.NewRequest(http.MethodPost, h.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
		req.Header.Set("X-CSRF-Token", h.csrf(t))
	}
	res, err := h.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func (h *harness) upload(t *testing.T, contentType string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mp := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="photo"; filename="me.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mp.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mp.Close())

	req, err := http.NewRequest(http.MethodPost, h.srv.URL+"/color-picker/photo", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-CSRF-Token", h.csrf(t))
	res, err := h.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func doc(t *testing.T, res *http.Response) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(res.Body)
	require.NoError(t, err)
	return d
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			img.Set(x, y, color.RGBA{R: 180, G: 120, B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func stage(d *goquery.Document) string {
	s, _ := d.Find("#ai-color-picker-app").Attr("data-stage")
	return s
}

var matchingAnswers = []string{"medium", "casual", "medium", "brunette", "subtle", "occasional"}

func TestHealthzReportsOperational(t *testing.T) {
	h := newHarness(t)
	res := h.get(t, "/healthz", false)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var summary status.Summary
	require.NoError(t, json.NewDecoder(res.Body).Decode(&summary))
	assert.Equal(t, status.StateOperational, summary.State)
	require.Len(t, summary.Components, 1)
	assert.Equal(t, "sessions", summary.Components[0].Name)
}

func TestHomeRendersInDefaultLocale(t *testing.T) {
	h := newHarness(t)
	res := h.get(t, "/", false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "pt", res.Header.Get("Content-Language"))

	d := doc(t, res)
	lang, _ := d.Find("html").Attr("lang")
	assert.Equal(t, "pt", lang)
	assert.Equal(t, "upload", stage(d))
	assert.Equal(t, 4, d.Find(`link[rel="alternate"][hreflang]`).Length(), "three locales plus x-default")

	canonical, _ := d.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, "https://taliacolors.com/", canonical)

	var hasSalon bool
	d.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if strings.Contains(s.Text(), `"HairSalon"`) {
			hasSalon = true
		}
	})
	assert.True(t, hasSalon, "expected HairSalon structured data")
	assert.Equal(t, 6, d.Find(".gallery-grid figure").Length())
}

func TestLocalePrefixSwitchesLanguage(t *testing.T) {
	h := newHarness(t)
	res := h.get(t, "/en", false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	d := doc(t, res)
	lang, _ := d.Find("html").Attr("lang")
	assert.Equal(t, "en", lang)
	assert.Contains(t, d.Find(".picker-upload h3").Text(), "Upload your photo")

	// the remembered locale applies to the locale-less picker routes
	res = h.get(t, "/color-picker/", true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "en", res.Header.Get("Content-Language"))
}

func TestUnsupportedLocaleIs404(t *testing.T) {
	h := newHarness(t)
	res := h.get(t, "/fr/", false)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestColorPickerFullFlow(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusOK, h.get(t, "/en/", false).StatusCode)

	res := h.upload(t, "image/png", pngBytes(t))
	require.Equal(t, http.StatusOK, res.StatusCode)
	d := doc(t, res)
	require.Equal(t, "questionnaire", stage(d))
	assert.Contains(t, d.Find(".progress-text").Text(), "Question 1 of 6")
	photoURL, ok := d.Find(".photo-thumb").Attr("src")
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, h.get(t, photoURL, false).StatusCode)

	for i, value := range matchingAnswers {
		res = h.post(t, "/color-picker/answer", url.Values{
			"index": {fmt.Sprint(i)},
			"value": {value},
			"auto":  {"1"},
		}, true)
		require.Equal(t, http.StatusOK, res.StatusCode, "answer %d", i)
		d = doc(t, res)
	}
	require.Equal(t, "processing", stage(d))
	_, polls := d.Find(".picker-processing").Attr("hx-get")
	assert.True(t, polls)

	res = h.get(t, "/color-picker/processing", true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "processing", stage(doc(t, res)))

	h.clock.Advance(time.Minute)
	res = h.get(t, "/color-picker/processing", true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "picker:results", res.Header.Get("HX-Trigger"))
	d = doc(t, res)
	require.Equal(t, "results", stage(d))
	assert.Equal(t, 1, d.Find(".best-match .color-card").Length())
	assert.Equal(t, 3, d.Find(".alternatives .color-card").Length())
	assert.Equal(t, 6, d.Find(".analysis-profile dt").Length())

	book, _ := d.Find(".best-match a.book").Attr("href")
	assert.True(t, strings.HasPrefix(book, "https://wa.me/554899169053?text="), book)

	res = h.get(t, "/color-picker/book", false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, book, res.Header.Get("Location"))

	res = h.post(t, "/color-picker/reset", url.Values{}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "upload", stage(doc(t, res)))
	assert.Equal(t, http.StatusNotFound, h.get(t, photoURL, false).StatusCode)
	assert.Zero(t, h.photos.Live())
}

func TestPreviousFromFirstQuestionKeepsPhoto(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/en/", false)
	require.Equal(t, http.StatusOK, h.upload(t, "image/png", pngBytes(t)).StatusCode)

	res := h.post(t, "/color-picker/previous", url.Values{}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	d := doc(t, res)
	assert.Equal(t, "upload", stage(d))
	assert.Equal(t, 1, d.Find(".photo-preview img").Length())
	assert.Equal(t, 1, h.photos.Live())
}

func TestNextWithoutAnswerIsRejected(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/en/", false)
	require.Equal(t, http.StatusOK, h.upload(t, "image/png", pngBytes(t)).StatusCode)

	res := h.post(t, "/color-picker/next", url.Values{}, true)
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	d := doc(t, res)
	assert.Equal(t, "questionnaire", stage(d))
	assert.Contains(t, d.Find(".picker-error").Text(), "Choose an option")
}

func TestAnswerRejectsUnknownValue(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/en/", false)
	require.Equal(t, http.StatusOK, h.upload(t, "image/png", pngBytes(t)).StatusCode)

	res := h.post(t, "/color-picker/answer", url.Values{"index": {"0"}, "value": {"purple"}}, true)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestUploadRejectsGIF(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/en/", false)

	res := h.upload(t, "image/gif", []byte("GIF89a\x01\x00\x01\x00"))
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	d := doc(t, res)
	assert.Equal(t, "upload", stage(d))
	assert.Contains(t, d.Find(".picker-error").Text(), "Unsupported format")
	assert.Zero(t, h.photos.Live())
}

func TestUploadRejectsOversizedPhoto(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/en/", false)

	res := h.upload(t, "image/png", make([]byte, intake.MaxSize+1))
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	d := doc(t, res)
	assert.Contains(t, d.Find(".picker-error").Text(), "too large")
}

func TestInvalidTransitionShowsCurrentStage(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/en/", false)

	res := h.post(t, "/color-picker/next", url.Values{}, true)
	require.Equal(t, http.StatusConflict, res.StatusCode)
	d := doc(t, res)
	assert.Equal(t, "upload", stage(d))
	assert.Contains(t, d.Find(".picker-error").Text(), "not available")
}

func TestExpiredSessionRestartsAtUpload(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/en/", false)
	require.Equal(t, http.StatusOK, h.upload(t, "image/png", pngBytes(t)).StatusCode)
	h.sessions.CloseAll()

	res := h.post(t, "/color-picker/answer", url.Values{"index": {"0"}, "value": {"fair"}}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	d := doc(t, res)
	assert.Equal(t, "upload", stage(d))
	assert.Contains(t, d.Find(".picker-error").Text(), "session expired")
	assert.Zero(t, h.photos.Live())
}

func TestPostWithoutCSRFIsForbidden(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/", false)

	req, err := http.NewRequest(http.MethodPost, h.srv.URL+"/color-picker/reset", nil)
	require.NoError(t, err)
	req.Header.Set("HX-Request", "true")
	res, err := h.client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "application/json")
}

func TestPlainFormPostRedirectsToPicker(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/es/", false)

	res := h.post(t, "/color-picker/reset", url.Values{}, false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/es#ai-color-picker", res.Header.Get("Location"))
}

func TestBookWithoutResultsUsesGeneralMessage(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/en/", false)

	res := h.get(t, "/color-picker/book", false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	loc, err := url.Parse(res.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "wa.me", loc.Host)
	assert.Equal(t, "Hi Talia! I would like to book an appointment.", loc.Query().Get("text"))
}

func TestContentPageRendersMarkdown(t *testing.T) {
	h := newHarness(t)
	res := h.get(t, "/en/pages/aftercare", false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	d := doc(t, res)
	assert.Equal(t, "Color aftercare", strings.TrimSpace(d.Find(".content-page h1").Text()))
	assert.Positive(t, d.Find(".prose h2").Length())
	assert.Equal(t, 2, d.Find(".breadcrumbs li").Length())
	assert.Equal(t, "Colored hair aftercare | Talia Colors", d.Find("title").Text())
	assert.Equal(t, 2, d.Find(".footer-pages li").Length())
}

func TestUnknownContentPageIs404(t *testing.T) {
	h := newHarness(t)
	res := h.get(t, "/pages/does-not-exist", false)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestSitemapListsLocalesAndPages(t *testing.T) {
	h := newHarness(t)
	res := h.get(t, "/sitemap.xml", false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	xml := string(body)
	assert.Contains(t, xml, "<loc>https://taliacolors.com</loc>")
	assert.Contains(t, xml, "<loc>https://taliacolors.com/en#gallery</loc>")
	assert.Contains(t, xml, "<loc>https://taliacolors.com/es/pages/privacy</loc>")
}

func TestRobotsPointsAtSitemap(t *testing.T) {
	h := newHarness(t)
	res := h.get(t, "/robots.txt", false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	body, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(body), "Sitemap: https://taliacolors.com/sitemap.xml")
	assert.Contains(t, string(body), "Disallow: /color-picker/")
}

func TestManifestIsLocalized(t *testing.T) {
	h := newHarness(t)
	res := h.get(t, "/manifest.webmanifest?hl=es", false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var m map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&m))
	assert.Equal(t, "es-ES", m["lang"])
	assert.Equal(t, "#8b5cf6", m["theme_color"])
}

func TestAssetsServed(t *testing.T) {
	h := newHarness(t)
	res := h.get(t, "/assets/css/site.css", false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "no-cache", res.Header.Get("Cache-Control"))
}
