// Package httpx holds the JSON response helpers shared by the /api routes and
// the recovery middleware.
package httpx

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/maber00/pixelabril/internal/lang"
)

// Problem is the error body returned by every /api endpoint.
type Problem struct {
	Code      string            `json:"error"`
	Message   string            `json:"message"`
	Status    int               `json:"status"`
	RequestID string            `json:"request_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Supported []lang.Language   `json:"supported,omitempty"`
}

func newProblem(code, message string, status int) Problem {
	return Problem{Code: code, Message: clip(message, 512), Status: status}
}

// BadRequest reports a body that could not be decoded.
func BadRequest(message string) Problem {
	return newProblem("invalid_request", message, http.StatusBadRequest)
}

// UnsupportedLanguage reports a language code outside lang.Supported.
func UnsupportedLanguage() Problem {
	p := newProblem("invalid_language", "unsupported language", http.StatusBadRequest)
	p.Supported = append([]lang.Language(nil), lang.Supported...)
	return p
}

// ValidationFailed carries the per-field messages of a rejected inquiry.
func ValidationFailed(fields map[string]string) Problem {
	p := newProblem("validation_failed", "inquiry validation failed", http.StatusUnprocessableEntity)
	p.Fields = fields
	return p
}

// NotFound reports a missing resource, e.g. "studio".
func NotFound(resource string) Problem {
	code := "not_found"
	if resource != "" {
		code = resource + "_not_found"
	}
	return newProblem(code, strings.TrimSpace(resource+" not found"), http.StatusNotFound)
}

// Unavailable reports a storage failure behind an endpoint.
func Unavailable(code, message string) Problem {
	return newProblem(code, message, http.StatusInternalServerError)
}

// Internal is the body used for panics and unexpected failures.
func Internal(message string) Problem {
	return newProblem("internal_server_error", message, http.StatusInternalServerError)
}

// WithRequestID stamps the problem with the chi request id.
func (p Problem) WithRequestID(id string) Problem {
	p.RequestID = clip(id, 80)
	return p
}

// Fail writes p, tagged with the request id of r.
func Fail(w http.ResponseWriter, r *http.Request, p Problem) {
	if p.Status == 0 {
		p.Status = http.StatusInternalServerError
	}
	if p.RequestID == "" {
		p = p.WithRequestID(middleware.GetReqID(r.Context()))
	}
	JSON(w, p.Status, p)
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func clip(value string, limit int) string {
	value = strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ").Replace(value))
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
