package middleware

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError answers htmx callers with a JSON envelope and everyone else with plain text.
// code is a stable machine-readable identifier; msg is shown to the visitor.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	if IsHTMX(r.Context()) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: code, Message: msg})
		return
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	http.Error(w, msg, status)
}
