// Package httputil centralizes JSON response writing so every endpoint emits
// the same envelopes.
package httputil

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes body as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError writes the standard error envelope. The description is omitted
// when empty; server-side failures should pass none so internals never leak.
func WriteError(w http.ResponseWriter, status int, code, description string) {
	body := map[string]string{"error": code}
	if description != "" {
		body["error_description"] = description
	}
	WriteJSON(w, status, body)
}
