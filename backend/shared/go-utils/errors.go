// backend/shared/go-utils/errors.go
package utils

import (
	"errors"
	"net/http"
)

// Errors shared by services that talk to third-party validation providers.
var (
	ErrInvalidEmail           = errors.New("invalid_email")
	ErrInvalidPhone           = errors.New("invalid_phone")
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// AppError carries an HTTP status and public error code from a service up to
// the controller that renders it.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError is a small convenience for controllers building error chains.
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{StatusCode: status, Code: code, Message: message, Err: err}
}

// HandleAppError renders err as a JSON error body. Unknown error types become 500s.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
		return
	}
	RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
}
