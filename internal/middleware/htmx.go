package middleware

import (
	"net/http"
)

// HTMX marks requests coming from htmx so handlers/middlewares can adapt responses.
// Boosted navigations are full page loads and are not treated as fragment requests.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-Boosted") != "true"
		w.Header().Add("Vary", "HX-Request")
		ctx := WithHTMX(r.Context(), is)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HXTrigger asks htmx to fire a client-side event after the swap.
func HXTrigger(w http.ResponseWriter, event string) {
	if event != "" {
		w.Header().Set("HX-Trigger", event)
	}
}

// Redirect sends htmx requests to url via HX-Redirect and everything else via status.
func Redirect(w http.ResponseWriter, r *http.Request, url string, status int) {
	if IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, url, status)
}
