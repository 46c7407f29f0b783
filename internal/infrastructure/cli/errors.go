package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/compaudit/pkg/application"
	"github.com/felixgeelhaar/compaudit/pkg/domain/document"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
	"github.com/felixgeelhaar/compaudit/pkg/domain/settings"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var unknown *settings.UnknownKeyError
	if errors.As(err, &unknown) {
		return NewCLIError(unknown.Error(), "Run 'compaudit settings' to list the keys", err)
	}

	var invalid *document.ValidationError
	if errors.As(err, &invalid) {
		return NewCLIError("document export is invalid", "Re-export the document and check it has a pages array", err)
	}

	switch {
	case errors.Is(err, scan.ErrScanInProgress):
		return NewCLIError("a scan is already running", "Wait for it to finish, then retry", err)
	case errors.Is(err, application.ErrNothingToRescan):
		return NewCLIError("nothing to rescan", "Run 'compaudit scan quick' or 'compaudit scan deep' first", err)
	case errors.Is(err, application.ErrNodeNotFound):
		return NewCLIError(application.NavigationFailedMessage, "Check the id with 'compaudit results --json'", err)
	case strings.Contains(err.Error(), "no document export configured"):
		return NewCLIError("no document export configured", "Run 'compaudit init --document <export.json>' or pass --document", err)
	}

	return err
}
