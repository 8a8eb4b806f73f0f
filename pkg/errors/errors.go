package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidDocument           = errors.New("invalid document")
	ErrUnrepresentableFieldValue = errors.New("unrepresentable field value")
	ErrInvalidInput              = errors.New("invalid input")
	ErrUnavailable               = errors.New("dependency unavailable")
	ErrInternal                  = errors.New("internal error")
	ErrTimeout                   = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// InvalidDocument wraps ErrInvalidDocument with a reason.
func InvalidDocument(format string, args ...any) *AppError {
	return Newf(ErrInvalidDocument, http.StatusBadRequest, format, args...)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidDocument), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
