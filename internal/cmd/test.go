package cmd

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/certipro/internal/config"
	"github.com/felixgeelhaar/certipro/internal/errors"
	"github.com/felixgeelhaar/certipro/internal/platform"
	"github.com/felixgeelhaar/certipro/internal/tui"
	"github.com/felixgeelhaar/certipro/internal/ux"
)

const (
	msgTestSubmitted = "Test submitted!"
	msgTimeUp        = "Time is up! Submitting your answers."
	msgSessionEnded  = "Your session ended during the test"
)

// errSessionEnded is the cancel cause set by the session watcher.
var errSessionEnded = stderrors.New("session ended")

func newTestCmd() *cobra.Command {
	pages := config.DefaultPages()

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Take certification tests",
		Long: `Take certification tests.

'certipro test take <skillId>' runs a whole test: it starts a session, asks
every question, saves each answer and submits when done or when time runs
out. Without a terminal, answers are read from stdin one per line (an option
value or its 1-based number; an empty line skips the question).`,
		Annotations: protectedPage(pages.Dashboard),
	}

	cmd.AddCommand(
		testCmd("status <skillId>", "Show your test status for a skill", "Loading status...", "",
			func(app *App) func(context.Context, string) (platform.Payload, error) { return app.Client.TestStatus }),
		testCmd("start <skillId>", "Start a test session", "Starting test...", "Test started!",
			func(app *App) func(context.Context, string) (platform.Payload, error) { return app.Client.StartTest }),
		testCmd("session <sessionId>", "Show a test session and its questions", "Loading session...", "",
			func(app *App) func(context.Context, string) (platform.Payload, error) { return app.Client.TestSession }),
		testCmd("submit <sessionId>", "Submit a test session", "Submitting test...", msgTestSubmitted,
			func(app *App) func(context.Context, string) (platform.Payload, error) { return app.Client.SubmitTest }),
		testCmd("history <skillId>", "Show your past attempts at a skill", "Loading history...", "",
			func(app *App) func(context.Context, string) (platform.Payload, error) { return app.Client.TestHistory }),
		newAnswerCmd(),
		newTakeCmd(),
	)
	return cmd
}

func testCmd(use, short, loading, done string, endpoint func(*App) func(context.Context, string) (platform.Payload, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			fetch := endpoint(app)
			resp, err := app.call(cmd.Context(), loading, func(ctx context.Context) (platform.Payload, error) {
				return fetch(ctx, args[0])
			})
			if err != nil {
				return err
			}
			return app.render(resp, done)
		},
	}
}

func newAnswerCmd() *cobra.Command {
	var answer platform.Answer
	var value string

	cmd := &cobra.Command{
		Use:   "answer <sessionId>",
		Short: "Save one answer into a test session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if err := requireValue(answer.QuestionID, "question"); err != nil {
				return err
			}
			answer.Answer = value
			resp, err := app.call(cmd.Context(), "Saving answer...", func(ctx context.Context) (platform.Payload, error) {
				return app.Client.SaveAnswer(ctx, args[0], answer)
			})
			if err != nil {
				return err
			}
			return app.render(resp, "Answer saved")
		},
	}

	cmd.Flags().StringVar(&answer.QuestionID, "question", "", "question id")
	cmd.Flags().StringVar(&value, "answer", "", "answer value")
	return cmd
}

func newTakeCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "take <skillId>",
		Short: "Take a test from start to submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTake(cmd.Context(), appFrom(cmd), args[0], sessionID)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "resume an already started session")
	return cmd
}

// answerFunc asks one question; "" skips it.
type answerFunc func(ctx context.Context, q tui.Question, header string) (string, error)

func runTake(ctx context.Context, app *App, skillID, sessionID string) error {
	if sessionID == "" {
		resp, err := app.call(ctx, "Starting test...", func(ctx context.Context) (platform.Payload, error) {
			return app.Client.StartTest(ctx, skillID)
		})
		if err != nil {
			return err
		}
		if resp.Has("success") && !resp.Success() {
			return unsuccessful(resp)
		}
		if sessionID = tui.SessionIDFrom(resp); sessionID == "" {
			return errors.NewMalformedResponseError(http.StatusOK, stderrors.New("start response has no session id"))
		}
	}

	resp, err := app.call(ctx, "Loading questions...", func(ctx context.Context) (platform.Payload, error) {
		return app.Client.TestSession(ctx, sessionID)
	})
	if err != nil {
		return err
	}
	started := time.Now()
	exam, err := tui.ParseExam(sessionID, resp, started)
	if err != nil {
		return errors.NewMalformedResponseError(http.StatusOK, err)
	}

	app.Logger.Info("test started", "skill_id", skillID, "session_id", sessionID,
		"questions", len(exam.Questions), "remaining", exam.Remaining)
	fmt.Fprintln(app.ErrOut, app.Styles.Border.Render(examBanner(exam)))

	watchCtx, stopWatch := context.WithCancelCause(ctx)
	defer stopWatch(nil)
	go app.Auth.WatchSession(watchCtx, app.Config.Session.TokenCheckInterval, func() {
		app.Router.Navigate(app.Pages.Login)
		stopWatch(errSessionEnded)
	})

	examCtx := context.Context(watchCtx)
	deadline := exam.Deadline(started)
	if !deadline.IsZero() {
		var cancel context.CancelFunc
		examCtx, cancel = context.WithDeadline(watchCtx, deadline)
		defer cancel()
	}

	ask := app.promptAnswer
	if !app.Interactive {
		ask = app.readAnswer(exam)
	}

	if err := answerAll(examCtx, app, exam, deadline, ask); err != nil {
		return err
	}

	switch {
	case stderrors.Is(context.Cause(watchCtx), errSessionEnded):
		return errors.NewUnauthorizedError(msgSessionEnded, nil)
	case ctx.Err() != nil:
		return ctx.Err()
	case stderrors.Is(examCtx.Err(), context.DeadlineExceeded):
		app.Toast.Warning(msgTimeUp)
	case app.Interactive && exam.Answered() < len(exam.Questions):
		left := len(exam.Questions) - exam.Answered()
		ok, err := tui.PromptForConfirmation(ctx, fmt.Sprintf("%d of %d questions unanswered. Submit anyway?", left, len(exam.Questions)), false)
		if err != nil {
			return err
		}
		if !ok {
			app.Toast.Info("Answers saved, test not submitted.")
			app.Toast.Hints([]string{fmt.Sprintf("Resume with 'certipro test take %s --session %s'", skillID, sessionID)})
			return nil
		}
	}

	resp, err = app.call(ctx, "Submitting test...", func(ctx context.Context) (platform.Payload, error) {
		return app.Client.SubmitTest(ctx, sessionID)
	})
	if err != nil {
		return err
	}
	app.Logger.Info("test submitted", "session_id", sessionID, "answered", exam.Answered())
	return app.render(resp, msgTestSubmitted)
}

func examBanner(exam *tui.Exam) string {
	title := exam.Title
	if title == "" {
		title = "Certification test"
	}
	lines := []string{title, fmt.Sprintf("%d questions", len(exam.Questions))}
	if n := exam.Answered(); n > 0 {
		lines = append(lines, fmt.Sprintf("%d already answered", n))
	}
	if exam.Remaining > 0 {
		lines = append(lines, "Time limit: "+ux.FormatCountdown(int(exam.Remaining/time.Second)))
	}
	return strings.Join(lines, "\n")
}

// answerAll walks the questions until all are asked, input ends, or ctx is
// done. Only errors unrelated to ctx are returned.
func answerAll(ctx context.Context, app *App, exam *tui.Exam, deadline time.Time, ask answerFunc) error {
	for i := range exam.Questions {
		q := &exam.Questions[i]

		var left time.Duration
		if !deadline.IsZero() {
			left = time.Until(deadline)
		}
		header := tui.ExamHeader(app.Styles, exam, i, left)

		answer, err := ask(ctx, *q, header)
		if ctx.Err() != nil || stderrors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if answer == "" || answer == q.Answer {
			continue
		}

		_, err = app.Client.SaveAnswer(ctx, exam.SessionID, platform.Answer{QuestionID: q.ID, Answer: answer})
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		q.Answer = answer
	}
	return nil
}

func (a *App) promptAnswer(ctx context.Context, q tui.Question, header string) (string, error) {
	var answer string
	if err := tui.QuestionForm(q, header, &answer).RunWithContext(ctx); err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// readAnswer returns an answerFunc reading one line of stdin per question.
func (a *App) readAnswer(exam *tui.Exam) answerFunc {
	in, ok := a.In.(*bufio.Reader)
	if !ok {
		in = bufio.NewReader(a.In)
	}

	return func(ctx context.Context, q tui.Question, header string) (string, error) {
		fmt.Fprintln(a.ErrOut, header)
		fmt.Fprintln(a.ErrOut, q.Text)
		for i, opt := range q.Options {
			fmt.Fprintf(a.ErrOut, "  %d) %s\n", i+1, opt.Label)
		}

		line, err := readLine(ctx, in)
		if err != nil {
			return "", err
		}
		return matchOption(q, line)
	}
}

// readLine reads one line, giving up when ctx ends first.
func readLine(ctx context.Context, in *bufio.Reader) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := in.ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		line := strings.TrimRight(r.line, "\r\n")
		if r.err != nil && (line == "" || !stderrors.Is(r.err, io.EOF)) {
			return "", r.err
		}
		return line, nil
	}
}

// matchOption maps typed input to an option value: a 1-based number, a
// value, or a label. Free-text questions take the input as is.
func matchOption(q tui.Question, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" || len(q.Options) == 0 {
		return input, nil
	}

	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(q.Options) {
		return q.Options[n-1].Value, nil
	}
	for _, opt := range q.Options {
		if opt.Value == input || strings.EqualFold(opt.Label, input) {
			return opt.Value, nil
		}
	}
	return "", errors.NewPreconditionError(fmt.Sprintf("%q is not an option of %q", input, q.Text))
}
