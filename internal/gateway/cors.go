package gateway

import "net/http"

// Fixed CORS allow-lists. The browser-facing surface only ever needs these
// methods and headers; the preflight result is cacheable for a day.
const (
	allowMethods    = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	allowHeaders    = "Content-Type, Authorization"
	preflightMaxAge = "86400"
)

// applyCORS sets the CORS response headers, echoing the caller's Origin
// when present and falling back to the wildcard otherwise. It is applied on
// every gateway response, error paths included.
func applyCORS(h http.Header, origin string) {
	if origin == "" {
		origin = "*"
	}
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", allowMethods)
	h.Set("Access-Control-Allow-Headers", allowHeaders)
	h.Add("Vary", "Origin")
}

// HandlePreflight answers a CORS preflight with 204 and the fixed
// allow-lists, independent of downstream backend state.
func HandlePreflight(w http.ResponseWriter, r *http.Request) {
	applyCORS(w.Header(), r.Header.Get("Origin"))
	w.Header().Set("Access-Control-Max-Age", preflightMaxAge)
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnknownPath rejects a request outside the proxied surface with the
// uniform envelope. CORS headers are present here too so browser callers
// can read the error.
func HandleUnknownPath(w http.ResponseWriter, r *http.Request) {
	applyCORS(w.Header(), r.Header.Get("Origin"))
	WriteEnvelope(w, http.StatusNotFound, "unknown API path", "not_found")
}
