package ux

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// ToastKind selects the color and icon of a toast.
type ToastKind string

// Toast kinds
const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastWarning ToastKind = "warning"
	ToastInfo    ToastKind = "info"
	ToastDefault ToastKind = "default"
)

var toastColors = map[ToastKind]lipgloss.Color{
	ToastSuccess: lipgloss.Color("#2ecc71"),
	ToastError:   lipgloss.Color("#ff4b5c"),
	ToastWarning: lipgloss.Color("#f39c12"),
	ToastInfo:    lipgloss.Color("#3498db"),
	ToastDefault: lipgloss.Color("#333333"),
}

var toastIcons = map[ToastKind]string{
	ToastSuccess: "✓",
	ToastError:   "✗",
	ToastWarning: "!",
	ToastInfo:    "i",
}

// Toaster prints one-line status notices, the terminal counterpart of a
// transient notification banner.
type Toaster struct {
	w        io.Writer
	noColor  bool
	renderer *lipgloss.Renderer
}

// NewToaster creates a Toaster writing to w (os.Stderr when nil).
// Colors are dropped when noColor is set or w is not a color terminal.
func NewToaster(w io.Writer, noColor bool) *Toaster {
	if w == nil {
		w = os.Stderr
	}
	return &Toaster{
		w:        w,
		noColor:  noColor,
		renderer: lipgloss.NewRenderer(w),
	}
}

// Show prints message as a toast of the given kind. Unknown kinds render
// like ToastDefault.
func (t *Toaster) Show(kind ToastKind, message string) {
	if _, ok := toastColors[kind]; !ok {
		kind = ToastDefault
	}

	text := message
	if icon := toastIcons[kind]; icon != "" {
		text = icon + " " + message
	}

	if t.noColor {
		fmt.Fprintln(t.w, text)
		return
	}

	style := t.renderer.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffffff")).
		Background(toastColors[kind]).
		Padding(0, 1)
	fmt.Fprintln(t.w, style.Render(text))
}

// Success prints a success toast
func (t *Toaster) Success(message string) { t.Show(ToastSuccess, message) }

// Error prints an error toast
func (t *Toaster) Error(message string) { t.Show(ToastError, message) }

// Warning prints a warning toast
func (t *Toaster) Warning(message string) { t.Show(ToastWarning, message) }

// Info prints an info toast
func (t *Toaster) Info(message string) { t.Show(ToastInfo, message) }

// Hints prints follow-up lines under a toast, dimmed when colors are on.
func (t *Toaster) Hints(hints []string) {
	if len(hints) == 0 {
		return
	}
	style := t.renderer.NewStyle().Foreground(lipgloss.Color("241"))
	for _, hint := range hints {
		line := "  → " + hint
		if !t.noColor {
			line = style.Render(line)
		}
		fmt.Fprintln(t.w, line)
	}
}

// Toast prints a single toast to w.
func Toast(w io.Writer, kind ToastKind, message string, noColor bool) {
	NewToaster(w, noColor).Show(kind, message)
}
