// Package httputil centralizes JSON response writing for handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "profiled/pkg/domain-errors"
)

// WriteJSON writes a JSON body with the given status. Encoding failures are
// ignored; headers are already gone by then.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// WriteError maps a coded error onto an HTTP response. Internal errors omit
// the description so implementation detail never leaks to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	description := ""

	var coded *dErrors.Error
	if errors.As(err, &coded) {
		code = coded.Code
		description = coded.Description
	}

	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal && description != "" {
		body["error_description"] = description
	}
	WriteJSON(w, statusFor(code), body)
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
