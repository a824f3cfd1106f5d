package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sahasand/talia-colors-website/internal/i18n"
	"github.com/sahasand/talia-colors-website/internal/observability"
)

const langCookieName = "hl"

// Locale resolves the visitor's language and remembers it in the session and the `hl` cookie.
// Precedence: locale path prefix, ?hl=, session, hl cookie, Accept-Language, fallback.
func Locale(bundle *i18n.Bundle, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := GetSession(r)

			explicit := PathLocale(bundle, r.URL.Path)
			if explicit == "" {
				explicit = bundle.Normalize(r.URL.Query().Get("hl"))
			}

			lang := explicit
			if lang == "" {
				lang = bundle.Normalize(s.Locale)
			}
			if lang == "" {
				if c, err := r.Cookie(langCookieName); err == nil {
					lang = bundle.Normalize(c.Value)
				}
			}
			if lang == "" {
				lang = bundle.Resolve(r.Header.Get("Accept-Language"))
			}

			if s.Locale != lang {
				s.Locale = lang
				s.MarkDirty()
			}
			if explicit != "" {
				http.SetCookie(w, &http.Cookie{
					Name:     langCookieName,
					Value:    explicit,
					Path:     "/",
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set("Content-Language", lang)

			ctx := WithLang(r.Context(), lang)
			ctx = observability.WithLogger(ctx, observability.FromContext(ctx).With(zap.String("locale", lang)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PathLocale returns the supported locale named by the first path segment, or "".
func PathLocale(bundle *i18n.Bundle, path string) string {
	seg := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	if seg == "" || !bundle.IsSupported(seg) {
		return ""
	}
	return seg
}

// Lang returns the language resolved for the request, falling back to the session locale.
func Lang(r *http.Request) string {
	if lang, ok := LangFromContext(r.Context()); ok {
		return lang
	}
	return GetSession(r).Locale
}
