// Package shared holds the response helpers every handler uses, so error
// payloads look the same across the API surface.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "permitdesk/pkg/domain-errors"
)

// ErrorBody is the wire shape for every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps a domain error onto its HTTP status and serializes the
// coded payload. Unknown errors become a generic 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	detail := ErrorDetail{
		Code:    string(code),
		Message: "internal error",
	}
	var dErr *dErrors.Error
	if errors.As(err, &dErr) && dErr.Code != dErrors.CodeInternal {
		detail.Message = dErr.Message
		detail.Details = dErr.Details
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), ErrorBody{Error: detail})
}
