package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a failed backend request
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// AuthorizationError is a 401/403 response carrying the backend's detail
// message
type AuthorizationError struct {
	APIError
}

func (e *AuthorizationError) Unwrap() error {
	return &e.APIError
}

// FieldError is one entry of a validation failure detail
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError is a 422 response with per-field details
type ValidationError struct {
	APIError
	Fields []FieldError
}

func (e *ValidationError) Unwrap() error {
	return &e.APIError
}

// IsNotFound reports whether err is a 404 response
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 or 403 response
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// errorFromResponse turns a non-2xx response into a typed error. The
// backend reports failures as JSON {"detail": string | [{loc,msg,type}]};
// anything else degrades to a plain APIError with the body text.
func errorFromResponse(resp *http.Response) error {
	defaultMessage := fmt.Sprintf("request failed with status %d", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return &APIError{Status: resp.StatusCode, Message: defaultMessage}
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var withDetail struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &withDetail); err != nil {
		return &APIError{Status: resp.StatusCode, Message: defaultMessage}
	}

	if len(withDetail.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(withDetail.Detail, &detail); err == nil {
			return &AuthorizationError{APIError{Status: resp.StatusCode, Message: detail}}
		}

		var fields []FieldError
		if err := json.Unmarshal(withDetail.Detail, &fields); err == nil {
			return &ValidationError{
				APIError: APIError{Status: resp.StatusCode, Message: "validation failed"},
				Fields:   fields,
			}
		}
	}

	if withDetail.Message != "" {
		return &APIError{Status: resp.StatusCode, Message: withDetail.Message}
	}

	return &APIError{Status: resp.StatusCode, Message: defaultMessage}
}
