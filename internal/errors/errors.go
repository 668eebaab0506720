package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// API errors (API-001 to API-099)
	ErrCodeNetwork           ErrorCode = "API-001"
	ErrCodeUnauthorized      ErrorCode = "API-002"
	ErrCodeRejected          ErrorCode = "API-003"
	ErrCodeMalformedResponse ErrorCode = "API-004"
	ErrCodeRequestEncoding   ErrorCode = "API-005"

	// Auth workflow errors (AUTH-001 to AUTH-099)
	ErrCodePrecondition         ErrorCode = "AUTH-001"
	ErrCodeVerificationRequired ErrorCode = "AUTH-002"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodePendingMissing ErrorCode = "SESSION-001"
	ErrCodeStorage        ErrorCode = "SESSION-002"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"

	// Diagnostics (HEALTH-001 to HEALTH-099)
	ErrCodeHealthCheck ErrorCode = "HEALTH-001"
)

// Messages shared by every client-side failure.
const (
	MsgNetwork = "Network error. Please check your connection."
	MsgGeneric = "Something went wrong"
)

// RequestError is the single failure shape surfaced for any non-success
// API outcome: server rejection, transport failure, or a client-side
// precondition that failed before anything was sent.
type RequestError struct {
	Code    ErrorCode
	Message string
	// StatusCode is 0 for transport-level failures, otherwise the HTTP status.
	StatusCode int
	// Payload is the decoded response body, if any.
	Payload     map[string]any
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))
	if e.StatusCode != 0 {
		b.WriteString(fmt.Sprintf(" (HTTP %d)", e.StatusCode))
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// New creates a new RequestError
func New(code ErrorCode, status int, message string) *RequestError {
	return &RequestError{
		Code:       code,
		StatusCode: status,
		Message:    message,
	}
}

// Wrap creates a new RequestError wrapping an existing error
func Wrap(code ErrorCode, status int, message string, cause error) *RequestError {
	return &RequestError{
		Code:       code,
		StatusCode: status,
		Message:    message,
		Cause:      cause,
	}
}

// WithPayload attaches the decoded response body
func (e *RequestError) WithPayload(payload map[string]any) *RequestError {
	e.Payload = payload
	return e
}

// WithSuggestion adds a suggestion to the error
func (e *RequestError) WithSuggestion(suggestion string) *RequestError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *RequestError) WithSuggestions(suggestions ...string) *RequestError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *RequestError) WithDocs(url string) *RequestError {
	e.DocsURL = url
	return e
}

// IsUnauthorized reports whether the server rejected the credentials.
func (e *RequestError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsNetwork reports whether no response was obtained at all.
func (e *RequestError) IsNetwork() bool {
	return e.StatusCode == 0 && e.Code == ErrCodeNetwork
}

// AsRequestError extracts a *RequestError from an error chain.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if stderrors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or -1 when err is not
// a RequestError.
func StatusCode(err error) int {
	if reqErr, ok := AsRequestError(err); ok {
		return reqErr.StatusCode
	}
	return -1
}

// Common error constructors for frequently used errors

// NewNetworkError creates the transport failure error. It never carries a
// payload.
func NewNetworkError(cause error) *RequestError {
	return Wrap(ErrCodeNetwork, 0, MsgNetwork, cause).
		WithSuggestion("Check that the CertiPro API is reachable").
		WithSuggestion("Verify the API URL with 'certipro config view'")
}

// NewUnauthorizedError creates the error returned after the server reported
// an expired or invalid session.
func NewUnauthorizedError(message string, payload map[string]any) *RequestError {
	return New(ErrCodeUnauthorized, http.StatusUnauthorized, fallback(message)).
		WithPayload(payload).
		WithSuggestion("Run 'certipro auth login' to start a new session")
}

// NewStatusError creates the error for any other non-2xx response.
func NewStatusError(status int, message string, payload map[string]any) *RequestError {
	return New(ErrCodeRejected, status, fallback(message)).WithPayload(payload)
}

// NewMalformedResponseError creates the error for a response body that is
// not a JSON object.
func NewMalformedResponseError(status int, cause error) *RequestError {
	return Wrap(ErrCodeMalformedResponse, status, "Malformed response from server", cause).
		WithSuggestion("The API or a proxy in front of it returned a non-JSON body")
}

// NewRequestEncodingError creates the error for a request body that could not
// be serialized.
func NewRequestEncodingError(cause error) *RequestError {
	return Wrap(ErrCodeRequestEncoding, 0, "Failed to encode request body", cause)
}

// NewPreconditionError creates a client-side validation failure. It uses
// status 400 so callers render it like a server-side validation error.
func NewPreconditionError(message string) *RequestError {
	return New(ErrCodePrecondition, http.StatusBadRequest, message)
}

// NewPendingMissingError creates the error raised when a verification step
// runs without the context left by the previous step.
func NewPendingMissingError(message string) *RequestError {
	return New(ErrCodePendingMissing, http.StatusBadRequest, message).
		WithSuggestion("Restart the flow with 'certipro auth register' or 'certipro auth forgot-password'")
}

// NewVerificationRequiredError creates the error returned by login for an
// account whose email address is not verified yet.
func NewVerificationRequiredError() *RequestError {
	return New(ErrCodeVerificationRequired, http.StatusForbidden, "Please verify your email first").
		WithPayload(map[string]any{"requiresVerification": true}).
		WithSuggestion("Run 'certipro auth verify-email --code <code>'").
		WithSuggestion("Run 'certipro auth resend-code' if the code expired")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *RequestError {
	return New(ErrCodeConfigInvalid, 0, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Run 'certipro config view' to inspect the active configuration")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *RequestError {
	return Wrap(ErrCodeFileUnmarshal, 0, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}

func fallback(message string) string {
	if message == "" {
		return MsgGeneric
	}
	return message
}
