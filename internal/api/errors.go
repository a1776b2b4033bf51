package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrUnauthorized indicates the backend rejected the request's
// credentials. The bearer transport refreshes and retries once before
// surfacing this; callers that still see it hold a dead session.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError reports per-field problems with a submitted request,
// caught locally before sending or returned by the backend. Field names
// match the JSON field names of the request body; messages under
// "non_field_errors" apply to the request as a whole.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], " ")))
	}

	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// APIError is a non-validation failure reported by the backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.StatusCode, e.Message)
}

// parseErrorResponse maps an error response onto the error taxonomy:
// 401 to ErrUnauthorized, field maps to ValidationError, everything
// else to APIError.
func parseErrorResponse(statusCode int, body []byte) error {
	if statusCode == http.StatusUnauthorized {
		if msg := errorMessage(body); msg != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		}
		return ErrUnauthorized
	}

	if msg := errorMessage(body); msg != "" {
		return &APIError{StatusCode: statusCode, Message: msg}
	}

	if statusCode == http.StatusBadRequest {
		if fields := fieldErrors(body); len(fields) > 0 {
			return &ValidationError{Fields: fields}
		}
	}

	return &APIError{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}
}

// errorMessage extracts the single-message bodies the backend uses:
// {"error": ...}, {"detail": ...} and {"message": ...}.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, msg := range []string{payload.Error, payload.Detail, payload.Message} {
		if msg != "" {
			return msg
		}
	}

	return ""
}

// fieldErrors decodes a validation body, a JSON object mapping field
// names to one or more messages. Anything else returns nil.
func fieldErrors(body []byte) map[string][]string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return nil
	}

	fields := make(map[string][]string, len(raw))
	for name, value := range raw {
		var msgs []string
		if err := json.Unmarshal(value, &msgs); err == nil {
			fields[name] = msgs
			continue
		}

		var msg string
		if err := json.Unmarshal(value, &msg); err == nil {
			fields[name] = []string{msg}
			continue
		}

		return nil
	}

	return fields
}
