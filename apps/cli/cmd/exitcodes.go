package cmd

import "errors"

// Exit codes for paychain CLI
const (
	// ExitSuccess indicates every step passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more steps failed
	ExitTestFailure = 1

	// ExitParseError indicates a scenario file could not be loaded
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCode maps an error returned by a command to a process exit code.
// Errors raised by cobra itself, such as a wrong argument count, are
// usage errors.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsageError
}
