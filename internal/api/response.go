package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// ErrorResponse is the JSON shape used for client errors (4xx).
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteRaw relays an upstream body verbatim.
func WriteRaw(w http.ResponseWriter, contentType string, body []byte) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// WriteServerError reports a failed upstream or control-plane call. The raw error
// text is surfaced because the UI shows it to the user as-is.
func WriteServerError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintf(w, "Server error: %v", err)
}

// WriteError writes a client error as {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

var ErrInvalidPayload = errors.New("invalid payload")

// Fields is a flat view of a request body.
type Fields map[string]string

// BindFields reads a JSON object or a form-encoded body into Fields.
// Non-string JSON values are rendered with their JSON text; null fields are absent.
func BindFields(r *http.Request) (Fields, error) {
	out := Fields{}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		for k, v := range raw {
			if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				continue
			}
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				out[k] = s
				continue
			}
			out[k] = strings.TrimSpace(string(v))
		}
		return out, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	for k := range r.PostForm {
		out[k] = r.PostForm.Get(k)
	}
	return out, nil
}

// Require returns the named fields or an error naming the first missing one.
func (f Fields) Require(names ...string) error {
	for _, n := range names {
		if strings.TrimSpace(f[n]) == "" {
			return fmt.Errorf("%s is required", n)
		}
	}
	return nil
}
