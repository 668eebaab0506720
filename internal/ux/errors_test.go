package ux

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/certipro/internal/errors"
)

func TestNewErrorWithSuggestion(t *testing.T) {
	assert.Nil(t, NewErrorWithSuggestion(nil, "ignored"))

	err := NewErrorWithSuggestion(stderrors.New("something failed"), "try this fix")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "something failed")
	assert.Contains(t, err.Error(), "try this fix")

	plain := NewErrorWithSuggestion(stderrors.New("something failed"), "")
	assert.Equal(t, "something failed", plain.Error())
}

func TestErrorWithSuggestion_Unwrap(t *testing.T) {
	base := stderrors.New("base")
	err := NewErrorWithSuggestion(base, "hint")
	assert.True(t, stderrors.Is(err, base))
}

func TestEnhanceError_RequestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *errors.RequestError
		want string
	}{
		{
			name: "bare unauthorized gets login hint",
			err:  errors.New(errors.ErrCodeUnauthorized, http.StatusUnauthorized, "Session expired"),
			want: "certipro auth login",
		},
		{
			name: "server failure",
			err:  errors.NewStatusError(http.StatusInternalServerError, "boom", nil),
			want: "try again later",
		},
		{
			name: "not found",
			err:  errors.NewStatusError(http.StatusNotFound, "Skill not found", nil),
			want: "Check the identifier",
		},
		{
			name: "rate limited",
			err:  errors.NewStatusError(http.StatusTooManyRequests, "Slow down", nil),
			want: "Wait a moment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhanced := EnhanceError(tt.err)
			reqErr, ok := errors.AsRequestError(enhanced)
			require.True(t, ok)
			require.NotEmpty(t, reqErr.Suggestions)
			assert.Contains(t, reqErr.Suggestions[0], tt.want)
			assert.Empty(t, tt.err.Suggestions, "original must not be mutated")
			assert.Equal(t, tt.err.Message, reqErr.Message)
		})
	}
}

func TestEnhanceError_KeepsExistingSuggestions(t *testing.T) {
	err := errors.NewVerificationRequiredError()
	assert.Same(t, err, EnhanceError(err).(*errors.RequestError))
}

func TestEnhanceError_UnknownRejectionUnchanged(t *testing.T) {
	err := errors.NewStatusError(http.StatusConflict, "Email already registered", nil)
	assert.Same(t, err, EnhanceError(err).(*errors.RequestError))
}

func TestEnhanceError_PlainErrors(t *testing.T) {
	assert.Nil(t, EnhanceError(nil))

	perm := EnhanceError(stderrors.New("open /home/x/.certipro/session.json: permission denied"))
	assert.Contains(t, perm.Error(), "CERTIPRO_HOME")

	format := EnhanceError(stderrors.New("unknown format: xml (supported: text, json, yaml)"))
	assert.Contains(t, format.Error(), "--format")

	other := stderrors.New("nothing to see")
	assert.Same(t, other, EnhanceError(other))
}

func TestFormatError(t *testing.T) {
	assert.Nil(t, FormatError(nil, "ctx"))

	err := FormatError(stderrors.New("connection refused"), "fetch skills")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch skills: connection refused")
	assert.Contains(t, err.Error(), "firewall")
}

func TestUserMessageAndSuggestions(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", errors.NewStatusError(http.StatusBadRequest, "Invalid credentials", nil))
	assert.Equal(t, "Invalid credentials", UserMessage(wrapped))
	assert.Nil(t, Suggestions(wrapped))

	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "plain", UserMessage(stderrors.New("plain")))

	assert.NotEmpty(t, Suggestions(errors.NewNetworkError(stderrors.New("dial tcp"))))
	assert.Equal(t,
		[]string{"Check your network connection and firewall settings"},
		Suggestions(stderrors.New("no route to host")))
}
