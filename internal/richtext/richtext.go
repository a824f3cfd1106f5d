// Package richtext renders the markdown used in page copy and preset text to sanitized HTML.
package richtext

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown to HTML and strips anything outside its policy.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	inline *bluemonday.Policy
}

// New returns a Renderer with the site's markdown extensions and sanitizer policy.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: newPagePolicy(),
		inline: newInlinePolicy(),
	}
}

func newPagePolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// inline copy keeps emphasis only; block elements are unwrapped.
func newInlinePolicy() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("strong", "em", "b", "i", "del", "code", "br")
	return policy
}

// Render converts a markdown document. Empty input yields empty output.
func (r *Renderer) Render(src string) (template.HTML, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// Inline renders a short markdown snippet for use inside an existing element. Conversion
// failures fall back to the escaped source.
func (r *Renderer) Inline(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(strings.TrimSpace(r.inline.Sanitize(buf.String())))
}

// Sanitize applies the page policy to already rendered HTML.
func (r *Renderer) Sanitize(raw string) template.HTML {
	return template.HTML(r.policy.Sanitize(raw))
}
