package ux

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/certipro/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// suggestionsByCode are attached to RequestErrors that carry none of their own.
var suggestionsByCode = map[errors.ErrorCode][]string{
	errors.ErrCodeNetwork: {
		"Check that the CertiPro API is running and reachable",
		"Override the endpoint with --api-url or CERTIPRO_API_URL",
	},
	errors.ErrCodeUnauthorized: {
		"Your session has ended. Run 'certipro auth login' to sign in again",
	},
	errors.ErrCodePendingMissing: {
		"Start over with 'certipro auth register' or 'certipro auth forgot-password'",
	},
	errors.ErrCodeConfigInvalid: {
		"Inspect the active settings with 'certipro config view'",
	},
}

func statusSuggestions(status int) []string {
	switch {
	case status == http.StatusForbidden:
		return []string{"Your account type may not have access to this page"}
	case status == http.StatusNotFound:
		return []string{"Check the identifier you passed; list available items first"}
	case status == http.StatusTooManyRequests:
		return []string{"Wait a moment before trying again"}
	case status >= 500:
		return []string{"The CertiPro service had a problem; try again later"}
	default:
		return nil
	}
}

// EnhanceError analyzes an error and adds contextual suggestions.
// RequestErrors are copied so the caller's value is never mutated.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	if reqErr, ok := errors.AsRequestError(err); ok {
		if len(reqErr.Suggestions) > 0 {
			return err
		}
		suggestions, known := suggestionsByCode[reqErr.Code]
		if !known && reqErr.Code == errors.ErrCodeRejected {
			suggestions = statusSuggestions(reqErr.StatusCode)
		}
		if len(suggestions) == 0 {
			return err
		}
		enhanced := *reqErr
		enhanced.Suggestions = append([]string(nil), suggestions...)
		return &enhanced
	}

	errMsg := err.Error()

	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check permissions on ~/.certipro or set CERTIPRO_HOME to a writable directory")
	}

	if strings.Contains(errMsg, "unknown format") {
		return NewErrorWithSuggestion(err,
			"Use --format text, --format json or --format yaml")
	}

	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no route to host") {
		return NewErrorWithSuggestion(err,
			"Check your network connection and firewall settings")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}

// UserMessage returns the text shown to the user for err: the server (or
// fallback) message for RequestErrors, the full error text otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if reqErr, ok := errors.AsRequestError(err); ok {
		return reqErr.Message
	}
	return err.Error()
}

// Suggestions returns the recovery hints attached to err, if any.
func Suggestions(err error) []string {
	enhanced := EnhanceError(err)
	if reqErr, ok := errors.AsRequestError(enhanced); ok {
		return reqErr.Suggestions
	}
	var withSuggestion *ErrorWithSuggestion
	if stderrors.As(enhanced, &withSuggestion) && withSuggestion.Suggestion != "" {
		return []string{withSuggestion.Suggestion}
	}
	return nil
}
