package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes surfaced to clients.
const (
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeNotFound              = "NOT_FOUND"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeNotAuthorized         = "NOT_AUTHORIZED"
	CodeConflict              = "CONFLICT"
	CodeThreadClosed          = "THREAD_CLOSED"
	CodeStoreUnavailable      = "STORE_UNAVAILABLE"
	CodeSuggestionUnavailable = "SUGGESTION_UNAVAILABLE"
	CodeInternal              = "INTERNAL_ERROR"
)

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewNotAuthorized reports a moderation action attempted without an admin session.
func NewNotAuthorized(message string) error {
	return NewDomainError(CodeNotAuthorized, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewThreadClosed rejects a public reply to a closed thread.
func NewThreadClosed(threadID string) error {
	return NewDomainError(CodeThreadClosed, "thread is closed for new replies", http.StatusConflict,
		map[string]any{"thread_id": threadID})
}

// NewStoreUnavailable wraps a backend failure of the document store.
func NewStoreUnavailable(err error) error {
	return &DomainError{
		Code:       CodeStoreUnavailable,
		Message:    "store unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewSuggestionUnavailable wraps a failed or malformed LLM call.
func NewSuggestionUnavailable(err error, details map[string]any) error {
	return &DomainError{
		Code:       CodeSuggestionUnavailable,
		Message:    "suggestion unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    details,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewStoreUnavailable(err).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}

func MapError(err error) error {
	return ToDomainError(err)
}
