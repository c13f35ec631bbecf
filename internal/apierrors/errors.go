package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error categories for calls against the chatbot backend. Callers match with
// errors.Is; the UI only ever sees the human-readable message.
var (
	// Client-side errors, raised before any network call
	ErrValidation = errors.New("validation failed")

	// Server responses
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("not authorized")
	ErrNotFound       = errors.New("not found")
	ErrRateLimit      = errors.New("rate limit exceeded")
	ErrServer         = errors.New("server error")

	// No response received at all
	ErrNetwork = errors.New("network unavailable")
)

// Error carries an error category, the HTTP status that produced it (zero for
// client-side and network errors) and the human-readable message surfaced to
// the caller.
type Error struct {
	Category error
	Status   int
	Message  string
	cause    error

	// generic marks messages synthesized from the status alone, with no
	// structured error body behind them. Services may replace those with
	// endpoint-specific guidance.
	generic bool
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Category, e.cause}
	}
	return []error{e.Category}
}

// New creates a category error with a human-readable message.
func New(category error, message string) *Error {
	return &Error{Category: category, Message: message}
}

// Validation creates a client-side validation error.
func Validation(message string) *Error {
	return &Error{Category: ErrValidation, Message: message}
}

// Network creates an error for a request that received no response. The
// transport cause stays in the chain for logging but the message shown to the
// caller is fixed.
func Network(err error) *Error {
	return &Error{
		Category: ErrNetwork,
		Message:  "Network error. Please check your connection.",
		cause:    err,
	}
}

// responseBody is the structured error body the backend returns.
type responseBody struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
}

// FromResponse maps a non-2xx response to a category error. The message is
// taken from the structured body when present, otherwise a default for the
// status class.
func FromResponse(status int, body []byte) *Error {
	var rb responseBody
	msg := ""
	if len(body) > 0 {
		if err := json.Unmarshal(body, &rb); err == nil {
			msg = rb.Error
		}
	}

	generic := msg == ""

	switch status {
	case http.StatusUnauthorized:
		if msg == "" {
			msg = "Authentication failed. Please log in again."
		}
		return &Error{Category: ErrAuthentication, Status: status, Message: msg, generic: generic}
	case http.StatusForbidden:
		if msg == "" {
			msg = "You do not have permission to access this resource."
		}
		return &Error{Category: ErrAuthorization, Status: status, Message: msg, generic: generic}
	case http.StatusNotFound:
		if msg == "" {
			msg = "The requested resource was not found."
		}
		return &Error{Category: ErrNotFound, Status: status, Message: msg, generic: generic}
	case http.StatusTooManyRequests:
		if msg == "" {
			msg = "Rate limit exceeded. Please wait a moment before trying again."
		}
		return &Error{Category: ErrRateLimit, Status: status, Message: msg, generic: generic}
	default:
		if msg == "" {
			msg = fmt.Sprintf("Request failed with status %d. Please try again.", status)
		}
		return &Error{Category: ErrServer, Status: status, Message: msg, generic: generic}
	}
}

// Generic reports whether err carries a message synthesized from the status
// alone (no structured error body).
func Generic(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.generic
	}
	return false
}

// WithMessage replaces the human-readable message of a taxonomy error while
// keeping its category, status and cause. Errors outside the taxonomy become
// server errors carrying the message.
func WithMessage(err error, message string) *Error {
	var e *Error
	if errors.As(err, &e) {
		return &Error{Category: e.Category, Status: e.Status, Message: message, cause: e.cause}
	}
	return &Error{Category: ErrServer, Message: message, cause: err}
}

// StatusOf returns the HTTP status carried by err, or zero when err is not a
// backend response error.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// MessageOf returns the human-readable message for err, falling back to
// err.Error() for errors outside the taxonomy.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
