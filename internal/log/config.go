package log

import (
	"io"
	"os"
	"strings"
)

// Format selects the slog handler.
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

func (f Format) String() string {
	if f == FormatText {
		return "text"
	}
	return "json"
}

// LookupFormat resolves "json" or "text" (also "console") case-insensitively.
func LookupFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, true
	case "text", "console":
		return FormatText, true
	}
	return FormatJSON, false
}

// ParseFormat is LookupFormat with unknown names falling back to JSON.
func ParseFormat(s string) Format {
	f, _ := LookupFormat(s)
	return f
}

// Output is the destination of log records.
type Output struct {
	writer io.Writer
}

func (o Output) Writer() io.Writer {
	if o.writer == nil {
		return io.Discard
	}
	return o.writer
}

func NewOutput(w io.Writer) Output { return Output{writer: w} }

func OutputStderr() Output { return Output{writer: os.Stderr} }

func OutputDiscard() Output { return Output{writer: io.Discard} }

// Config holds logger settings. The zero value logs everything as JSON into
// nothing.
type Config struct {
	Level     Level
	Format    Format
	Output    Output
	AddSource bool

	// ServiceName and ServiceVersion are attached to every record when
	// ServiceName is set.
	ServiceName    string
	ServiceVersion string
}

// DefaultConfig logs info records as JSON to stderr so stdout stays free for
// command output.
func DefaultConfig() Config {
	return Config{
		Level:          LevelInfo,
		Format:         FormatJSON,
		Output:         OutputStderr(),
		ServiceName:    "certipro",
		ServiceVersion: "dev",
	}
}
