package apiclient

import (
	"net/http"

	"github.com/pkg/errors"
)

// APIError is any failure surfaced to screens: a server message with its status.
type APIError struct {
	Status  int
	Message string
	// Body is the decoded error payload when the server sent one.
	Body interface{}
}

func (e *APIError) Error() string { return e.Message }

var (
	ErrAuth = &APIError{
		Status:  http.StatusUnauthorized,
		Message: "Autentifikatsiya xatoligi. Iltimos, qayta kiring.",
	}
	ErrUnreachable = &APIError{
		Status:  http.StatusServiceUnavailable,
		Message: "Serverga ulanib bo'lmadi. Internet aloqangizni yoki server manzilini tekshiring.",
	}
	// ErrShape means a 2xx body was neither the expected value nor a {data: ...} envelope.
	ErrShape = errors.New("kutilmagan javob formati")
)

// IsAuth reports whether err means the session is no longer accepted.
func IsAuth(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message is the user-facing text for err, falling back when err carries none.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// localError is a failure detected before any request was sent; it has no status.
func localError(msg string) error {
	return &APIError{Message: msg}
}
