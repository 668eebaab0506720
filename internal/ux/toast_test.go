package ux

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToasterNoColor(t *testing.T) {
	tests := []struct {
		kind ToastKind
		want string
	}{
		{ToastSuccess, "✓ Saved\n"},
		{ToastError, "✗ Saved\n"},
		{ToastWarning, "! Saved\n"},
		{ToastInfo, "i Saved\n"},
		{ToastDefault, "Saved\n"},
		{ToastKind("bogus"), "Saved\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			var buf bytes.Buffer
			NewToaster(&buf, true).Show(tt.kind, "Saved")
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestToasterColorModeOnPlainWriter(t *testing.T) {
	var buf bytes.Buffer
	toaster := NewToaster(&buf, false)
	toaster.Success("Login successful!")
	toaster.Warning("Session expired")

	out := buf.String()
	assert.Contains(t, out, "✓ Login successful!")
	assert.Contains(t, out, "! Session expired")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestToasterHints(t *testing.T) {
	var buf bytes.Buffer
	toaster := NewToaster(&buf, true)

	toaster.Hints(nil)
	assert.Empty(t, buf.String())

	toaster.Hints([]string{"first", "second"})
	assert.Equal(t, "  → first\n  → second\n", buf.String())
}

func TestToastHelper(t *testing.T) {
	var buf bytes.Buffer
	Toast(&buf, ToastInfo, "Code sent", true)
	assert.Equal(t, "i Code sent\n", buf.String())
}

func TestCopyToClipboard(t *testing.T) {
	original := writeClipboard
	t.Cleanup(func() { writeClipboard = original })

	var copied string
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}

	var buf bytes.Buffer
	toaster := NewToaster(&buf, true)
	assert.True(t, toaster.CopyToClipboard("CERT-123"))
	assert.Equal(t, "CERT-123", copied)
	assert.Equal(t, "✓ Copied to clipboard!\n", buf.String())

	buf.Reset()
	writeClipboard = func(string) error { return stderrors.New("no clipboard utility") }
	assert.False(t, toaster.CopyToClipboard("CERT-123"))
	assert.Equal(t, "✗ Failed to copy\n", buf.String())
}
