package harness

import "fmt"

// InitError marks failures that happen before any scenario runs, such as
// unreadable or invalid settings. The CLI maps it to exit status 2, the
// runner's convention for "could not even start".
type InitError struct {
	Err error
}

func NewInitError(err error) InitError {
	return InitError{Err: err}
}

func (e InitError) Error() string {
	return e.Err.Error()
}

// SuiteError reports a completed run whose scenarios did not all pass,
// carrying the runner status for the process exit code.
type SuiteError struct {
	Status int
}

func NewSuiteError(status int) SuiteError {
	return SuiteError{Status: status}
}

func (e SuiteError) Error() string {
	return fmt.Sprintf("test suite failed with status %d", e.Status)
}
