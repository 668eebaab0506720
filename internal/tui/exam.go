package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/certipro/internal/platform"
	"github.com/felixgeelhaar/certipro/internal/ux"
)

// Option is one choice of a multiple-choice question. Value is what gets
// saved as the answer.
type Option struct {
	Label string
	Value string
}

// Question is one item of a test session
type Question struct {
	ID      string
	Text    string
	Options []Option
	// Answer is the answer already saved on the server, if any.
	Answer string
}

// Exam is the client view of a running test session
type Exam struct {
	SessionID string
	Title     string
	Questions []Question
	// Remaining is the time left; zero means the server reported no limit.
	Remaining time.Duration
}

// Answered counts questions that already have an answer
func (e *Exam) Answered() int {
	n := 0
	for _, q := range e.Questions {
		if q.Answer != "" {
			n++
		}
	}
	return n
}

// Deadline returns the moment the session ends, or the zero time when the
// session has no limit.
func (e *Exam) Deadline(start time.Time) time.Time {
	if e.Remaining <= 0 {
		return time.Time{}
	}
	return start.Add(e.Remaining)
}

// SessionIDFrom extracts the session id from a start-test response.
func SessionIDFrom(p platform.Payload) string {
	for _, scope := range candidates(p, "session", "testSession") {
		if id := firstID(scope, "sessionId", "id", "_id"); id != "" {
			return id
		}
	}
	return ""
}

// ParseExam reads a test session response. The session object may sit at
// the top level, under "data", or under "data.session".
func ParseExam(sessionID string, p platform.Payload, now time.Time) (*Exam, error) {
	exam := &Exam{SessionID: sessionID}

	for _, scope := range candidates(p, "session", "test", "testSession") {
		raw, ok := scope["questions"].([]any)
		if !ok {
			continue
		}
		for i, item := range raw {
			q, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("question %d is not an object", i+1)
			}
			exam.Questions = append(exam.Questions, parseQuestion(platform.Payload(q), i))
		}
		exam.Title = firstString(scope, "title", "skillName", "name")
		exam.Remaining = remaining(scope, now)
		if exam.SessionID == "" {
			exam.SessionID = firstID(scope, "sessionId", "id", "_id")
		}
		break
	}

	if len(exam.Questions) == 0 {
		return nil, fmt.Errorf("test session has no questions")
	}
	return exam, nil
}

func candidates(p platform.Payload, nested ...string) []platform.Payload {
	var out []platform.Payload
	scopes := []platform.Payload{p}
	if data := p.Data(); data != nil {
		scopes = append([]platform.Payload{data}, scopes...)
	}
	for _, scope := range scopes {
		for _, key := range nested {
			if inner := scope.Map(key); inner != nil {
				out = append(out, inner)
			}
		}
		out = append(out, scope)
	}
	return out
}

func parseQuestion(q platform.Payload, index int) Question {
	question := Question{
		ID:     firstID(q, "id", "_id", "questionId"),
		Text:   firstString(q, "question", "text", "title", "prompt"),
		Answer: scalar(q["answer"]),
	}
	if question.ID == "" {
		question.ID = strconv.Itoa(index + 1)
	}
	if question.Answer == "" {
		question.Answer = scalar(q["selectedAnswer"])
	}

	raw, _ := q["options"].([]any)
	for _, item := range raw {
		switch opt := item.(type) {
		case map[string]any:
			o := platform.Payload(opt)
			label := firstString(o, "text", "label", "option", "value")
			value := firstID(o, "id", "_id", "value")
			if value == "" {
				value = label
			}
			question.Options = append(question.Options, Option{Label: label, Value: value})
		default:
			s := scalar(opt)
			question.Options = append(question.Options, Option{Label: s, Value: s})
		}
	}
	return question
}

func remaining(scope platform.Payload, now time.Time) time.Duration {
	for _, key := range []string{"timeRemaining", "remainingTime", "remainingSeconds"} {
		if secs, ok := scope[key].(float64); ok && secs > 0 {
			return time.Duration(math.Round(secs)) * time.Second
		}
	}
	for _, key := range []string{"endTime", "expiresAt", "endsAt"} {
		if end, ok := ux.ParseDate(scope.String(key)); ok {
			if left := end.Sub(now); left > 0 {
				return left.Truncate(time.Second)
			}
			// Already over; stays positive so the limit still applies.
			return time.Nanosecond
		}
	}
	return 0
}

func firstString(p platform.Payload, keys ...string) string {
	for _, key := range keys {
		if s := strings.TrimSpace(p.String(key)); s != "" {
			return s
		}
	}
	return ""
}

func firstID(p platform.Payload, keys ...string) string {
	for _, key := range keys {
		if s := scalar(p[key]); s != "" {
			return s
		}
	}
	return ""
}

func scalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ExamHeader renders the position, progress and countdown line shown above
// each question.
func ExamHeader(styles Styles, exam *Exam, index int, left time.Duration) string {
	var b strings.Builder

	title := fmt.Sprintf("Question %d of %d", index+1, len(exam.Questions))
	if exam.Title != "" {
		title = exam.Title + " · " + title
	}
	b.WriteString(styles.Title.Render(title))

	if exam.Remaining > 0 {
		countdown := "⏱ " + ux.FormatCountdown(int(left/time.Second))
		style := styles.Status
		if left < time.Minute {
			style = styles.Warning
		}
		b.WriteString("  ")
		b.WriteString(style.Render(countdown))
	}

	b.WriteString("\n")
	b.WriteString(styles.Muted.Render(ProgressBar(exam.Answered(), len(exam.Questions), 30)))
	return b.String()
}

// QuestionForm asks q, writing the chosen value to answer. Questions without
// options take free text.
func QuestionForm(q Question, header string, answer *string) *huh.Form {
	*answer = q.Answer

	if len(q.Options) == 0 {
		return huh.NewForm(huh.NewGroup(
			huh.NewText().Title(q.Text).Description(header).
				Value(answer).Validate(required("Answer")),
		))
	}

	options := make([]huh.Option[string], len(q.Options))
	for i, opt := range q.Options {
		options[i] = huh.NewOption(opt.Label, opt.Value)
	}

	return huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title(q.Text).Description(header).
			Options(options...).Value(answer),
	))
}
