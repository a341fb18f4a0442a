package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Envelope is the uniform error shape returned for gateway-local failures
// (missing authorization, backend unreachable). Upstream rejections are
// passed through with the backend's own body instead.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// WriteEnvelope writes a structured error envelope with the given status.
func WriteEnvelope(w http.ResponseWriter, code int, message, errCode string) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(Envelope{Message: message, Error: errCode}); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}
