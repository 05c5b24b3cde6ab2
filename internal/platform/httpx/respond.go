// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ProblemContentType is the media type for RFC7807 bodies.
const ProblemContentType = "application/problem+json"

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, "application/json", status, data)
}

// HAL sends a hypermedia JSON response.
func HAL(w http.ResponseWriter, status int, data any) {
	writeJSON(w, "application/hal+json", status, data)
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	writeJSON(w, ProblemContentType, status, ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// Text sends a plain text response.
func Text(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// DecodeJSON decodes a single JSON document from the request body into target.
// Empty bodies and syntax errors are reported as ErrMalformed.
func DecodeJSON(r *http.Request, target any) error {
	if r.Body == nil {
		return Malformed("Request body is required.")
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return Malformed("Request body is required.")
		}
		return Malformed("Malformed request body: %s", err.Error())
	}
	if dec.More() {
		return Malformed("Request body must contain a single JSON document.")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, contentType string, status int, data any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
