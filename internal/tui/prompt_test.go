package tui

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsInteractive(t *testing.T) {
	// Depends on how tests are run; only ensure it does not panic.
	_ = IsInteractive()
}

func TestShouldPromptDisabledInCI(t *testing.T) {
	for _, envVar := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"} {
		t.Run(envVar, func(t *testing.T) {
			t.Setenv(envVar, "true")
			assert.False(t, ShouldPrompt())
		})
	}
}

func TestReadSecretFromPipe(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"newline terminated", "Passw0rd\n", "Passw0rd"},
		{"crlf", "Passw0rd\r\n", "Passw0rd"},
		{"no trailing newline", "Passw0rd", "Passw0rd"},
		{"only first line", "first\nsecond\n", "first"},
		{"keeps inner spaces", " pass word \n", " pass word "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := ReadSecret(strings.NewReader(tt.input), &out, "Password: ")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, out.String(), "no prompt is echoed for piped input")
		})
	}
}

func TestReadSecretEmptyInput(t *testing.T) {
	_, err := ReadSecret(strings.NewReader(""), &bytes.Buffer{}, "Password: ")
	assert.ErrorContains(t, err, "no input")
}

func TestReadSecretSharedReader(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("first\nsecond\n"))

	first, err := ReadSecret(in, &bytes.Buffer{}, "")
	require.NoError(t, err)
	second, err := ReadSecret(in, &bytes.Buffer{}, "")
	require.NoError(t, err)

	assert.Equal(t, "first", first)
	assert.Equal(t, "second", second)
}

func TestIsTerminalOnBuffer(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
	assert.False(t, IsTerminal(strings.NewReader("")))
}
