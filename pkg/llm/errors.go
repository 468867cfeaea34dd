package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies a completion failure.
type ErrorType string

const (
	ErrorTypeConfig        ErrorType = "config"         // missing or unusable credentials
	ErrorTypeUpstream      ErrorType = "upstream"       // non-success transport status from the provider
	ErrorTypeEmptyResponse ErrorType = "empty_response" // provider returned no usable text
	ErrorTypeCancelled     ErrorType = "cancelled"      // caller's context was cancelled
	ErrorTypeUnknown       ErrorType = "unknown"
)

// MaxSnippetLength bounds how much upstream response body is retained for
// diagnostics.
const MaxSnippetLength = 500

// Error is a structured completion error. Snippet holds a bounded excerpt of
// the upstream response body; credentials are never included.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int    // HTTP status from the provider, if applicable
	Snippet    string // bounded upstream body excerpt, if applicable
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	parts = append(parts, e.Message)
	if e.Snippet != "" {
		parts = append(parts, fmt.Sprintf("body=%q", e.Snippet))
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a structured completion error.
func NewError(errType ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewUpstreamError creates an upstream error carrying the provider status
// code and a bounded body snippet.
func NewUpstreamError(statusCode int, body string, cause error) *Error {
	return &Error{
		Type:       ErrorTypeUpstream,
		Message:    "completion request failed",
		StatusCode: statusCode,
		Snippet:    TruncateSnippet(body),
		Cause:      cause,
	}
}

// TruncateSnippet bounds a response body excerpt to MaxSnippetLength.
func TruncateSnippet(body string) string {
	if len(body) <= MaxSnippetLength {
		return body
	}
	return body[:MaxSnippetLength]
}

// ClassifyError wraps an arbitrary completion transport error into a
// structured *Error. Already-structured errors pass through unchanged, and
// context cancellation is kept distinct from upstream failures.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewError(ErrorTypeCancelled, "completion cancelled", err)
	}

	return NewError(ErrorTypeUnknown, "completion failed", err)
}

// GetErrorType extracts the ErrorType from an error chain.
func GetErrorType(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeUnknown
}

// IsCancelled reports whether err represents caller-driven cancellation,
// as opposed to an upstream failure.
func IsCancelled(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return GetErrorType(err) == ErrorTypeCancelled
}
