// Package utils provides utility functions for the Foodgram application.
package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies a CustomError independently of its HTTP status.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindInvalidFilter  ErrorKind = "invalid_filter"
	KindAlreadyExists  ErrorKind = "already_exists"
	KindNotFound       ErrorKind = "not_found"
	KindNotFoundEntity ErrorKind = "not_found_entity"
	KindUnauthorized   ErrorKind = "unauthorized"
	KindForbidden      ErrorKind = "forbidden"
	KindInternal       ErrorKind = "internal"
)

// Common error types for reuse. Use the constructors below to build new
// errors; these values are templates and must never be mutated.
var (
	ErrBadRequest          = NewError(fiber.StatusBadRequest, "Invalid request")
	ErrUnauthorized        = NewError(fiber.StatusUnauthorized, "Authentication credentials were not provided")
	ErrForbidden           = NewError(fiber.StatusForbidden, "You do not have permission to perform this action")
	ErrNotFound            = NewError(fiber.StatusNotFound, "Resource not found")
	ErrInternalServerError = NewError(fiber.StatusInternalServerError, "Internal server error")
)

// CustomError represents a structured error for the web app.
type CustomError struct {
	Code    int       `json:"code"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Fields  []CError  `json:"fields,omitempty"`
}

// NewError creates a new Error with a status code, message, and optional details.
// The kind is derived from the status code.
func NewError(code int, message string, details ...string) *CustomError {
	e := &CustomError{
		Code:    code,
		Kind:    kindForCode(code),
		Message: message,
	}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// WithCause returns a copy of the error carrying err as details.
func (e *CustomError) WithCause(err error) *CustomError {
	cp := *e
	if err != nil {
		cp.Details = err.Error()
	}
	return &cp
}

// WrapError wraps an existing error with a custom status and message.
func WrapError(err error, code int, message string) *CustomError {
	return NewError(code, message, err.Error())
}

// Validation builds a 400 validation error.
func Validation(message string, details ...string) *CustomError {
	return NewError(fiber.StatusBadRequest, message, details...)
}

// InvalidFilter builds a 400 error for a malformed query filter.
func InvalidFilter(param, value string) *CustomError {
	e := NewError(fiber.StatusBadRequest, "Invalid filter value", fmt.Sprintf("%s=%q", param, value))
	e.Kind = KindInvalidFilter
	return e
}

// AlreadyExists builds the error returned when a pair being added is already present.
func AlreadyExists(message string) *CustomError {
	e := NewError(fiber.StatusBadRequest, message)
	e.Kind = KindAlreadyExists
	return e
}

// NotPresent builds the error returned when a pair being removed is absent.
func NotPresent(message string) *CustomError {
	e := NewError(fiber.StatusBadRequest, message)
	e.Kind = KindNotFound
	return e
}

// EntityNotFound builds a 404 for a referenced id that does not exist.
func EntityNotFound(message string) *CustomError {
	return NewError(fiber.StatusNotFound, message)
}

// Internal wraps an unexpected store or runtime failure.
func Internal(err error, message string) *CustomError {
	return WrapError(err, fiber.StatusInternalServerError, message)
}

// IsKind reports whether err is a CustomError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *CustomError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Kind == kind
}

func kindForCode(code int) ErrorKind {
	switch code {
	case fiber.StatusBadRequest:
		return KindValidation
	case fiber.StatusUnauthorized:
		return KindUnauthorized
	case fiber.StatusForbidden:
		return KindForbidden
	case fiber.StatusNotFound:
		return KindNotFoundEntity
	case fiber.StatusConflict:
		return KindAlreadyExists
	}
	return KindInternal
}

// HandleError sends a standardized error response using GoFiber. It is
// installed as the application's ErrorHandler so nothing escapes unmapped.
func HandleError(c *fiber.Ctx, err error) error {
	var appErr *CustomError
	if errors.As(err, &appErr) {
		return SendError(c, appErr)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return SendError(c, NewError(fiberErr.Code, fiberErr.Message))
	}

	return SendError(c, ErrInternalServerError.WithCause(err))
}
