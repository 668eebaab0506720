package ux

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type certificate struct {
	Code  string `json:"code" yaml:"code"`
	Score int    `json:"score" yaml:"score"`
}

func render(t *testing.T, format string, opts FormatterOptions, data any) string {
	t.Helper()
	buf := &bytes.Buffer{}
	opts.Writer = buf
	f, err := NewFormatter(format, &opts)
	require.NoError(t, err)
	require.NoError(t, f.Format(data))
	return buf.String()
}

func TestNewFormatterRejectsUnknownFormat(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatYAML, FormatText, ""} {
		_, err := NewFormatter(format, nil)
		assert.NoError(t, err, format)
	}
	_, err := NewFormatter("xml", nil)
	assert.ErrorContains(t, err, "unknown format: xml")
}

func TestStructuredFormats(t *testing.T) {
	cert := certificate{Code: "CP-42", Score: 87}

	assert.Equal(t, "{\n  \"code\": \"CP-42\",\n  \"score\": 87\n}\n", render(t, FormatJSON, FormatterOptions{}, cert))
	assert.Equal(t, "{\"code\":\"CP-42\",\"score\":87}\n", render(t, FormatJSON, FormatterOptions{Compact: true}, cert))
	assert.Equal(t, "code: CP-42\nscore: 87\n", render(t, FormatYAML, FormatterOptions{}, cert))
}

func TestTextFormat(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"nil prints nothing", nil, ""},
		{"string", "Certificate is valid", "Certificate is valid\n"},
		{"struct", certificate{Code: "CP-1", Score: 90}, "code: CP-1\nscore: 90\n"},
		{
			"nested payload",
			map[string]any{
				"success": true,
				"data":    map[string]any{"skills": []any{"go", "sql"}, "total": 2},
			},
			"data:\n  skills:\n    - go\n    - sql\n  total: 2\nsuccess: true\n",
		},
		{"list of objects", []any{map[string]any{"id": 1.5}}, "[1]\n  id: 1.5\n"},
		{"empty list", []any{}, "(none)\n"},
		{"null field", map[string]any{"user": nil}, "user: -\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, FormatText, FormatterOptions{}, tt.data))
		})
	}
}

func TestTextFormatUnencodable(t *testing.T) {
	f, err := NewFormatter(FormatText, &FormatterOptions{Writer: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Error(t, f.Format(map[string]any{"ch": make(chan int)}))
}
