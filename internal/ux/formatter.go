package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Formats accepted by --format and defaults.format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formatter renders command results.
type Formatter interface {
	Format(data any) error
}

type FormatterOptions struct {
	// Writer defaults to os.Stdout.
	Writer io.Writer
	// NoColor is honoured by text output callers that style their lines.
	NoColor bool
	// Compact drops indentation from JSON and YAML.
	Compact bool
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(data any) error

func (f FormatterFunc) Format(data any) error { return f(data) }

// NewFormatter returns the formatter for format. An empty format means text.
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	o := FormatterOptions{}
	if opts != nil {
		o = *opts
	}
	if o.Writer == nil {
		o.Writer = os.Stdout
	}

	switch format {
	case FormatJSON:
		return FormatterFunc(func(data any) error { return writeJSON(o, data) }), nil
	case FormatYAML:
		return FormatterFunc(func(data any) error { return writeYAML(o, data) }), nil
	case FormatText, "":
		return FormatterFunc(func(data any) error { return writeTextData(o.Writer, data) }), nil
	}
	return nil, fmt.Errorf("unknown format: %s (supported: text, json, yaml)", format)
}

func writeJSON(o FormatterOptions, data any) error {
	enc := json.NewEncoder(o.Writer)
	if !o.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

func writeYAML(o FormatterOptions, data any) error {
	enc := yaml.NewEncoder(o.Writer)
	if !o.Compact {
		enc.SetIndent(2)
	}
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// writeTextData prints strings and Stringers as-is. Anything else goes
// through JSON first so struct tags and API payload maps print alike, as an
// indented key/value listing.
func writeTextData(w io.Writer, data any) error {
	switch v := data.(type) {
	case nil:
		return nil
	case string:
		_, err := fmt.Fprintln(w, v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, v.String())
		return err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("text formatter: %w", err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("text formatter: %w", err)
	}
	writeNode(w, tree, "")
	return nil
}

func writeNode(w io.Writer, node any, indent string) {
	switch v := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := scalar(v[k]); ok {
				fmt.Fprintf(w, "%s%s: %s\n", indent, k, s)
				continue
			}
			fmt.Fprintf(w, "%s%s:\n", indent, k)
			writeNode(w, v[k], indent+"  ")
		}
	case []any:
		if len(v) == 0 {
			fmt.Fprintf(w, "%s(none)\n", indent)
		}
		for i, item := range v {
			if s, ok := scalar(item); ok {
				fmt.Fprintf(w, "%s- %s\n", indent, s)
				continue
			}
			fmt.Fprintf(w, "%s[%d]\n", indent, i+1)
			writeNode(w, item, indent+"  ")
		}
	default:
		s, _ := scalar(v)
		fmt.Fprintf(w, "%s%s\n", indent, s)
	}
}

// scalar renders leaf values; ok is false for objects and arrays.
func scalar(v any) (string, bool) {
	switch val := v.(type) {
	case map[string]any, []any:
		return "", false
	case nil:
		return "-", true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return fmt.Sprint(val), true
	}
}
