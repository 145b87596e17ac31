package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for errors.Is checks across layers.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
)

// AppError carries a machine-readable code, a client-facing message, and the
// HTTP status the transport layer should answer with.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(code, message string, status int, sentinel error) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: sentinel}
}

// NotFound builds a 404 for a missing resource identified by id.
func NotFound(resource, id string) *AppError {
	return newAppError("NOT_FOUND", fmt.Sprintf("%s with id %s not found", resource, id), http.StatusNotFound, ErrNotFound)
}

// NotFoundMessage builds a 404 with a verbatim message, for wire formats
// where clients match the exact string.
func NotFoundMessage(message string) *AppError {
	return newAppError("NOT_FOUND", message, http.StatusNotFound, ErrNotFound)
}

// AlreadyExists builds a 409 for a uniqueness violation.
func AlreadyExists(resource, field, value string) *AppError {
	return newAppError("ALREADY_EXISTS", fmt.Sprintf("%s with %s %q already exists", resource, field, value), http.StatusConflict, ErrAlreadyExists)
}

// InvalidInput builds a 400.
func InvalidInput(message string) *AppError {
	return newAppError("INVALID_INPUT", message, http.StatusBadRequest, ErrInvalidInput)
}

// Conflict builds a 409 for a state conflict.
func Conflict(message string) *AppError {
	return newAppError("CONFLICT", message, http.StatusConflict, ErrConflict)
}

// Internal builds a 500 that hides the cause from the client.
func Internal(err error) *AppError {
	return newAppError("INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError, err)
}

// Unavailable builds a 503 for an unreachable collaborator.
func Unavailable(message string) *AppError {
	return newAppError("SERVICE_UNAVAILABLE", message, http.StatusServiceUnavailable, ErrServiceUnavail)
}

// Wrap adds context while preserving errors.Is/As matching.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Message returns the client-facing message: an AppError's Message when
// present, otherwise the error string.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to a response status, falling back to sentinel
// matching for errors that never became AppErrors.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
