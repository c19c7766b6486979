package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/msageha/wfinterop/internal/report"
)

// Exit codes for CLI commands.
const (
	ExitSuccess       = 0
	ExitCommandError  = 1 // bad flags, missing workspace, unreadable input
	ExitDataIntegrity = 2 // the snapshot itself is inconsistent
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err. Errors that are not
// ExitErrors map to ExitCommandError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// reportExitCode picks the exit code for a report generation error.
func reportExitCode(err error) int {
	if report.IsDataIntegrity(err) {
		return ExitDataIntegrity
	}
	return ExitCommandError
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
