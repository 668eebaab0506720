package ux

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// loaderDoneMsg tells the loader program that the wrapped work finished.
type loaderDoneMsg struct{}

type loaderModel struct {
	spinner spinner.Model
	message string
	done    bool
}

func newLoaderModel(message string) loaderModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A90E2"))
	return loaderModel{spinner: s, message: message}
}

// Init starts the spinner animation (required by Bubble Tea)
func (m loaderModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update advances the spinner until the work reports completion
func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loaderDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the spinner line; it clears itself once done
func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.message)
}

// isTerminal reports whether w is a terminal worth animating.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// WithLoader runs fn while a spinner with message is shown on w. When w is
// not a terminal fn simply runs. fn's error is returned unchanged.
func WithLoader(ctx context.Context, w io.Writer, message string, fn func(context.Context) error) error {
	if !isTerminal(w) {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(newLoaderModel(message),
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)

	result := make(chan error, 1)
	go func() {
		result <- fn(ctx)
		program.Send(loaderDoneMsg{})
	}()

	if _, err := program.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-result
		return fmt.Errorf("loader: %w", err)
	}
	return <-result
}
