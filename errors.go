package evolution

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// fragmentLimit caps how much of a payload is copied into a
// ValidationError, keeping errors loggable even for large bodies.
const fragmentLimit = 256

// APIError is the root of the SDK error taxonomy. Every failure reported
// by the gateway unwraps to one of these, and non-2xx statuses without a
// more specific subtype surface as a plain *APIError.
type APIError struct {
	// StatusCode is the HTTP status of the failed call, or 0 when the
	// error was raised before a response existed.
	StatusCode int
	// Message is the human-readable reason, extracted from the response
	// body when the gateway provided one.
	Message string
	// Body is the raw response body, kept for debugging.
	Body string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("evolution: %s (status %d)", e.Message, e.StatusCode)
	}
	return "evolution: " + e.Message
}

// AuthenticationError reports a rejected or missing API key (HTTP 401).
type AuthenticationError struct {
	*APIError
}

func (e *AuthenticationError) Unwrap() error { return e.APIError }

// NotFoundError reports a resource the gateway does not know (HTTP 404),
// most commonly an instance name that was never created.
type NotFoundError struct {
	*APIError
}

func (e *NotFoundError) Unwrap() error { return e.APIError }

// ValidationSource tells which side detected a validation failure.
type ValidationSource string

const (
	// ValidationRemote marks a request the gateway rejected with HTTP 400.
	ValidationRemote ValidationSource = "remote"
	// ValidationModel marks a 2xx payload the SDK could not decode into
	// its typed models.
	ValidationModel ValidationSource = "model"
)

// ValidationError reports a payload problem, either rejected remotely by
// the gateway or detected locally while decoding a response.
type ValidationError struct {
	*APIError
	// Source is ValidationRemote or ValidationModel.
	Source ValidationSource
	// Field names the offending field when it could be determined.
	Field string
	// Fragment holds a truncated copy of the offending payload.
	Fragment string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("evolution: validation (%s): field %q: %s", e.Source, e.Field, e.Message)
	}
	return fmt.Sprintf("evolution: validation (%s): %s", e.Source, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.APIError }

// TimeoutError reports a request that exceeded the configured timeout or
// was cancelled by its context deadline.
type TimeoutError struct {
	*APIError
	// Err is the underlying cause, e.g. context.DeadlineExceeded.
	Err error
}

func (e *TimeoutError) Error() string { return "evolution: timeout: " + e.Message }

func (e *TimeoutError) Unwrap() []error { return []error{e.APIError, e.Err} }

// ConfigurationError reports a client-side misconfiguration, such as a
// missing API key or an unresolvable {instance} placeholder. No request
// is sent when one of these is returned.
type ConfigurationError struct {
	*APIError
}

func (e *ConfigurationError) Error() string { return "evolution: configuration: " + e.Message }

func (e *ConfigurationError) Unwrap() error { return e.APIError }

func newConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{APIError: &APIError{Message: fmt.Sprintf(format, args...)}}
}

func newTimeoutError(method, url string, timeout time.Duration, cause error) *TimeoutError {
	return &TimeoutError{
		APIError: &APIError{Message: fmt.Sprintf("%s %s exceeded %s", method, url, timeout)},
		Err:      cause,
	}
}

// errorFromStatus maps a non-2xx gateway response onto the taxonomy.
func errorFromStatus(status int, body []byte) error {
	base := &APIError{
		StatusCode: status,
		Message:    extractMessage(body, http.StatusText(status)),
		Body:       string(body),
	}
	switch status {
	case http.StatusUnauthorized:
		return &AuthenticationError{APIError: base}
	case http.StatusNotFound:
		return &NotFoundError{APIError: base}
	case http.StatusBadRequest:
		return &ValidationError{
			APIError: base,
			Source:   ValidationRemote,
			Fragment: truncateFragment(body),
		}
	default:
		return base
	}
}

// newModelValidationError wraps a decode failure on a 2xx payload.
func newModelValidationError(err error, raw []byte) *ValidationError {
	field := ""
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field = typeErr.Field
	}
	return &ValidationError{
		APIError: &APIError{Message: "decode gateway payload: " + err.Error()},
		Source:   ValidationModel,
		Field:    field,
		Fragment: truncateFragment(raw),
	}
}

// extractMessage pulls a readable message out of a gateway error body.
// The gateway answers in several shapes: {"message": "..."} on auth
// failures, {"error": "...", "response": {"message": [...]}} on routing
// and validation errors. Falls back to the HTTP status text.
func extractMessage(body []byte, fallback string) string {
	var envelope struct {
		Message  json.RawMessage `json:"message"`
		Error    string          `json:"error"`
		Response struct {
			Message json.RawMessage `json:"message"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if msg := flattenMessage(envelope.Message); msg != "" {
			return msg
		}
		if msg := flattenMessage(envelope.Response.Message); msg != "" {
			return msg
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return fallback
}

// flattenMessage accepts the gateway's message field as either a string
// or a list of strings.
func flattenMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return ""
}

func truncateFragment(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > fragmentLimit {
		return s[:fragmentLimit] + "..."
	}
	return s
}
