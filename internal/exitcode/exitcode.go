package exitcode

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"strings"

	"github.com/felixgeelhaar/certipro/internal/errors"
)

// Process exit codes of the certipro binary.
const (
	Success      = 0
	GeneralError = 1
	// UsageError covers bad flags and input the API or CLI rejected.
	UsageError   = 2
	NotFound     = 3
	ServerError  = 4
	AuthError    = 5
	NetworkError = 6
	// Interrupted is 128+SIGINT.
	Interrupted = 130
)

func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with the code DetermineExitCode picks for err.
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode classifies RequestErrors by code and status, and
// anything else by its message.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if reqErr, ok := errors.AsRequestError(err); ok {
		return fromRequestError(reqErr)
	}
	if stderrors.Is(err, context.Canceled) {
		return Interrupted
	}

	msg := strings.ToLower(err.Error())
	for _, h := range messageHints {
		for _, fragment := range h.fragments {
			if strings.Contains(msg, fragment) {
				return h.code
			}
		}
	}
	return GeneralError
}

// messageHints classifies errors that never became RequestErrors, mostly
// cobra's argument and flag failures.
var messageHints = []struct {
	code      int
	fragments []string
}{
	{UsageError, []string{"invalid flag", "unknown flag", "unknown command", "required flag", "missing argument", "accepts "}},
	{NetworkError, []string{"connection refused", "no such host", "timeout", "unreachable"}},
	{AuthError, []string{"not logged in", "unauthorized"}},
}

func fromRequestError(e *errors.RequestError) int {
	switch e.Code {
	case errors.ErrCodeNetwork:
		return NetworkError
	case errors.ErrCodeConfigInvalid, errors.ErrCodeFileUnmarshal:
		return UsageError
	case errors.ErrCodeMalformedResponse:
		return ServerError
	}

	switch {
	case e.StatusCode == 0:
		return GeneralError
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return AuthError
	case e.StatusCode == http.StatusNotFound:
		return NotFound
	case e.StatusCode >= 500:
		return ServerError
	case e.StatusCode >= 400:
		return UsageError
	default:
		return GeneralError
	}
}

var descriptions = map[int]string{
	Success:      "Success",
	GeneralError: "General error",
	UsageError:   "Usage error (invalid flags, arguments or input)",
	NotFound:     "Not found",
	ServerError:  "Server error",
	AuthError:    "Authentication error",
	NetworkError: "Network error",
	Interrupted:  "Interrupted",
}

// GetExitCodeDescription names an exit code for help output and logs.
func GetExitCodeDescription(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return "Unknown error"
}
