package middleware

import "net/http"

// VaryLocale marks dynamic responses as varying by language negotiation, the locale cookie
// and htmx fragment requests.
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Add("Vary", "Accept-Language")
		h.Add("Vary", "Cookie")
		h.Add("Vary", "HX-Request")
		next.ServeHTTP(w, r)
	})
}
