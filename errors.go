package parsim

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage marks malformed invocations: the wrong number of inputs or
	// inputs which cannot be parsed.
	ErrUsage = errors.New("usage error")
	// ErrParameter marks inputs which parse but cannot describe a run.
	ErrParameter = errors.New("invalid parameter")
	// ErrAllocation marks runs whose particles or collision memo cannot be
	// materialized.
	ErrAllocation = errors.New("allocation failure")
)

// Error is the error type returned for every fatal condition. Kind is one of
// ErrUsage, ErrParameter, or ErrAllocation, so callers can test for it with
// errors.Is.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

// UsageErrorf creates an ErrUsage error. It is exported for the command-line
// front end, which is the only place usage errors can originate.
func UsageErrorf(format string, args ...interface{}) error {
	return &Error{Kind: ErrUsage, Msg: fmt.Sprintf(format, args...)}
}

func paramErrorf(format string, args ...interface{}) error {
	return &Error{Kind: ErrParameter, Msg: fmt.Sprintf(format, args...)}
}

func allocErrorf(format string, args ...interface{}) error {
	return &Error{Kind: ErrAllocation, Msg: fmt.Sprintf(format, args...)}
}
