package tools

import (
	"fmt"
	"strings"
)

// MissingError reports an executable that could not be found.
type MissingError struct {
	Tool string
	Err  error
}

func (e *MissingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s is not installed!", e.Tool)
	}
	return fmt.Sprintf("%v: %s is not installed!", e.Err, e.Tool)
}

func (e *MissingError) Unwrap() error { return e.Err }

// ExitError reports a command that ran but did not succeed.
type ExitError struct {
	Tool   string
	Action string
	Input  string
	Code   int
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	var b strings.Builder
	if e.Action != "" {
		fmt.Fprintf(&b, "failed to %s", e.Action)
	} else {
		fmt.Fprintf(&b, "%s failed", e.Tool)
	}
	if e.Input != "" {
		fmt.Fprintf(&b, ": %s", e.Input)
	}
	fmt.Fprintf(&b, " (%s exit %d)", e.Tool, e.Code)
	if e.Stderr != "" {
		fmt.Fprintf(&b, ": %s", e.Stderr)
	}
	return b.String()
}

func (e *ExitError) Unwrap() error { return e.Err }
