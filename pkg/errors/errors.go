package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidEncoding = errors.New("invalid base2p15 encoding")
	ErrSlotOutOfRange  = errors.New("counter slot out of range")
	ErrFilterCorrupt   = errors.New("filter record corrupt")
	ErrFilterNotFound  = errors.New("filter not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrDocumentExists  = errors.New("document already exists")
	ErrInternal        = errors.New("internal error")
	ErrTimeout         = errors.New("operation timed out")
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

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrFilterNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDocumentExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
