package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeRejected, http.StatusConflict, "test error message")

	if err.Code != ErrCodeRejected {
		t.Errorf("expected code %s, got %s", ErrCodeRejected, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.StatusCode != http.StatusConflict {
		t.Errorf("expected status 409, got %d", err.StatusCode)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeFileReadFailed, 0, "failed to read file", cause)

	if err.Cause != cause {
		t.Errorf("expected cause to be set")
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *RequestError
		contains []string
		excludes []string
	}{
		{
			name:     "status error",
			err:      NewStatusError(500, "server exploded", nil),
			contains: []string{"API-003", "server exploded", "HTTP 500"},
		},
		{
			name:     "network error omits status",
			err:      NewNetworkError(fmt.Errorf("dial tcp: connection refused")),
			contains: []string{"API-001", MsgNetwork, "connection refused"},
			excludes: []string{"HTTP 0"},
		},
		{
			name:     "docs section",
			err:      New(ErrCodeRejected, 400, "bad").WithDocs("https://example.com/docs"),
			contains: []string{"Documentation: https://example.com/docs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(errStr, want) {
					t.Errorf("error string should contain %q, got: %s", want, errStr)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(errStr, unwanted) {
					t.Errorf("error string should not contain %q, got: %s", unwanted, errStr)
				}
			}
		})
	}
}

func TestWithSuggestions(t *testing.T) {
	err := New(ErrCodeRejected, 422, "invalid").
		WithSuggestions("Suggestion 1", "Suggestion 2").
		WithSuggestion("Suggestion 3")

	if len(err.Suggestions) != 3 {
		t.Errorf("expected 3 suggestions, got %d", len(err.Suggestions))
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "Suggestions:") {
		t.Errorf("error string should contain suggestions section")
	}
	for _, suggestion := range err.Suggestions {
		if !strings.Contains(errStr, suggestion) {
			t.Errorf("error string should contain suggestion: %s", suggestion)
		}
	}
}

func TestStatusErrorFallsBackToGenericMessage(t *testing.T) {
	err := NewStatusError(502, "", nil)
	if err.Message != MsgGeneric {
		t.Errorf("expected generic message, got %q", err.Message)
	}

	unauthorized := NewUnauthorizedError("", nil)
	if unauthorized.Message != MsgGeneric {
		t.Errorf("expected generic message, got %q", unauthorized.Message)
	}
	if !unauthorized.IsUnauthorized() {
		t.Errorf("expected IsUnauthorized to be true")
	}
}

func TestNetworkErrorHasNoPayload(t *testing.T) {
	err := NewNetworkError(fmt.Errorf("no route to host"))

	if err.StatusCode != 0 {
		t.Errorf("expected status 0, got %d", err.StatusCode)
	}
	if err.Payload != nil {
		t.Errorf("expected nil payload, got %v", err.Payload)
	}
	if !err.IsNetwork() {
		t.Errorf("expected IsNetwork to be true")
	}
}

func TestPreconditionErrorsUseBadRequest(t *testing.T) {
	tests := []struct {
		name string
		err  *RequestError
		code ErrorCode
	}{
		{"precondition", NewPreconditionError("Passwords do not match"), ErrCodePrecondition},
		{"pending missing", NewPendingMissingError("No email pending verification"), ErrCodePendingMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.StatusCode != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", tt.err.StatusCode)
			}
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
		})
	}
}

func TestNewVerificationRequiredError(t *testing.T) {
	err := NewVerificationRequiredError()

	if err.StatusCode != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", err.StatusCode)
	}
	if err.Payload["requiresVerification"] != true {
		t.Errorf("expected requiresVerification payload, got %v", err.Payload)
	}
}

func TestAsRequestError(t *testing.T) {
	base := NewStatusError(404, "not found", map[string]any{"message": "not found"})
	wrapped := fmt.Errorf("loading skill: %w", base)

	got, ok := AsRequestError(wrapped)
	if !ok {
		t.Fatal("expected RequestError in chain")
	}
	if got != base {
		t.Errorf("expected the original error instance")
	}

	if StatusCode(wrapped) != 404 {
		t.Errorf("expected status 404, got %d", StatusCode(wrapped))
	}

	if StatusCode(fmt.Errorf("plain")) != -1 {
		t.Errorf("expected -1 for non-request errors")
	}

	if _, ok := AsRequestError(nil); ok {
		t.Errorf("nil should not be a RequestError")
	}
}

func TestNewFileUnmarshalError(t *testing.T) {
	cause := fmt.Errorf("yaml: line 3: mapping values are not allowed")
	err := NewFileUnmarshalError("/home/a/.certipro/config.yaml", "YAML", cause)

	if err.Code != ErrCodeFileUnmarshal {
		t.Errorf("expected code %s, got %s", ErrCodeFileUnmarshal, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be unwrappable")
	}
	if !strings.Contains(err.Message, "config.yaml") {
		t.Errorf("message should include the path: %s", err.Message)
	}
}
