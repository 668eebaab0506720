package log

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupFormat(t *testing.T) {
	for input, want := range map[string]Format{
		"json":    FormatJSON,
		"JSON":    FormatJSON,
		"text":    FormatText,
		" Text":   FormatText,
		"console": FormatText,
	} {
		got, ok := LookupFormat(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
		assert.Equal(t, want, ParseFormat(got.String()), input)
	}

	got, ok := LookupFormat("xml")
	assert.False(t, ok)
	assert.Equal(t, FormatJSON, got)
	assert.Equal(t, "json", Format(7).String())
}

func TestOutputs(t *testing.T) {
	var buf bytes.Buffer
	assert.Same(t, &buf, NewOutput(&buf).Writer())
	assert.Equal(t, os.Stderr, OutputStderr().Writer())
	assert.Equal(t, io.Discard, OutputDiscard().Writer())
	assert.Equal(t, io.Discard, Output{}.Writer())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, os.Stderr, cfg.Output.Writer())
	assert.False(t, cfg.AddSource)
	assert.Equal(t, "certipro", cfg.ServiceName)
}
