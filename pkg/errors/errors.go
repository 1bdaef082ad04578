package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so the HTTP layer can map it to a
// status code without inspecting message text.
type Kind string

const (
	KindValidation  Kind = "VALIDATION_ERROR"
	KindDuplicate   Kind = "DUPLICATE_REQUEST"
	KindNotFound    Kind = "NOT_FOUND"
	KindRateLimited Kind = "RATE_LIMITED"
	KindInternal    Kind = "INTERNAL_ERROR"
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(kind Kind, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func Validation(message string) *AppError {
	return NewAppError(KindValidation, message, nil)
}

func NotFound(message string) *AppError {
	return NewAppError(KindNotFound, message, nil)
}

func Duplicate(message string) *AppError {
	return NewAppError(KindDuplicate, message, nil)
}

// KindOf extracts the Kind of err, or KindInternal for anything that is not
// an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
