package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/felixgeelhaar/certipro/internal/errors"
	"github.com/felixgeelhaar/certipro/internal/platform"
	"github.com/felixgeelhaar/certipro/internal/ux"
)

// formatter returns the output formatter selected by --format
func (a *App) formatter() (ux.Formatter, error) {
	return ux.NewFormatter(a.Format, &ux.FormatterOptions{Writer: a.Out, NoColor: a.NoColor})
}

// call runs one API request behind the loader
func (a *App) call(ctx context.Context, message string, fn func(context.Context) (platform.Payload, error)) (platform.Payload, error) {
	var resp platform.Payload
	err := ux.WithLoader(ctx, a.ErrOut, message, func(ctx context.Context) error {
		var err error
		resp, err = fn(ctx)
		return err
	})
	return resp, err
}

// unsuccessful turns a 2xx envelope with "success": false into an error so
// the exit code reflects it.
func unsuccessful(resp platform.Payload) error {
	return errors.NewStatusError(http.StatusOK, resp.String("message"), resp)
}

// render prints a response. Text output shows the message (or fallback) as
// a toast followed by the data object; json and yaml print the envelope.
func (a *App) render(resp platform.Payload, fallback string) error {
	if resp.Has("success") && !resp.Success() {
		return unsuccessful(resp)
	}

	f, err := a.formatter()
	if err != nil {
		return err
	}

	if a.Format != "text" {
		return f.Format(map[string]any(resp))
	}

	if msg := resp.String("message"); msg != "" {
		a.Toast.Success(msg)
	} else if fallback != "" {
		a.Toast.Success(fallback)
	}

	if data, ok := resp["data"]; ok && data != nil {
		return f.Format(data)
	}
	return nil
}

// renderList prints the array at key of the response data one line per item
// in text mode, and like render otherwise.
func (a *App) renderList(resp platform.Payload, key, empty string, line func(platform.Payload) string) error {
	if a.Format != "text" {
		return a.render(resp, "")
	}
	if resp.Has("success") && !resp.Success() {
		return unsuccessful(resp)
	}

	items := listAt(resp, key)
	if len(items) == 0 {
		a.Toast.Info(empty)
		return nil
	}
	for _, item := range items {
		fmt.Fprintln(a.Out, line(item))
	}
	return nil
}

// listAt finds the array at data.<key>, data (when it is an array) or <key>.
func listAt(resp platform.Payload, key string) []platform.Payload {
	var raw []any
	switch data := resp["data"].(type) {
	case []any:
		raw = data
	case map[string]any:
		raw, _ = data[key].([]any)
	}
	if raw == nil {
		raw, _ = resp[key].([]any)
	}

	items := make([]platform.Payload, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			items = append(items, platform.Payload(m))
		}
	}
	return items
}

// field returns the first non-empty string or number among keys
func field(p platform.Payload, keys ...string) string {
	for _, key := range keys {
		switch v := p[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%g", v)
		}
	}
	return ""
}
