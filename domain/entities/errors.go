package entities

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnknownInstruction - line matches none of the instruction prefixes
	ErrUnknownInstruction = errors.New("unknown instruction")
	// ErrInvalidDelay - job delay is negative
	ErrInvalidDelay = errors.New("invalid delay")

	ErrInvalidEnabledFlag = errors.New("invalid enabled flag")
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrMalformedDocument  = errors.New("malformed workflow document")

	// ErrNoCurrentElement - @send or @click ran before any element was located
	ErrNoCurrentElement = errors.New("no current element")
	// ErrBrowserCallFailed - the browser rejected a send or click
	ErrBrowserCallFailed = errors.New("browser call failed")
)

// ParseError is returned by ParseInstruction for lines outside the grammar
type ParseError struct {
	Line string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unknown instruction %q", e.Line)
}

func (e *ParseError) Unwrap() error {
	return ErrUnknownInstruction
}

// ConfigError reports an invalid job setting
type ConfigError struct {
	Delay time.Duration
	// Seconds is set when the delay was rejected before conversion to a Duration
	Seconds int64
}

func (e *ConfigError) Error() string {
	switch {
	case e.Seconds < 0:
		return fmt.Sprintf("invalid delay %ds: must not be negative", e.Seconds)
	case e.Seconds > 0:
		return fmt.Sprintf("invalid delay %ds: exceeds the maximum of %ds", e.Seconds, MaxDelaySeconds)
	}
	return fmt.Sprintf("invalid delay %s: must not be negative", e.Delay)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidDelay
}

// LoadErrorKind classifies why a workflow document was rejected
type LoadErrorKind int

const (
	LoadInvalidEnabledFlag LoadErrorKind = iota
	LoadInvalidInstruction
	LoadMalformedDocument
)

// LoadError is returned when a workflow document cannot be loaded. Every
// kind is fatal to the whole document.
type LoadError struct {
	Kind   LoadErrorKind
	Job    string
	Line   string
	Value  string
	Detail string
	Err    error
}

func (e *LoadError) Error() string {
	switch e.Kind {
	case LoadInvalidEnabledFlag:
		return fmt.Sprintf("job %q: invalid enable value %q (expected \"on\" or \"off\")", e.Job, e.Value)
	case LoadInvalidInstruction:
		return fmt.Sprintf("job %q: invalid instruction %q", e.Job, e.Line)
	default:
		if e.Job != "" {
			return fmt.Sprintf("malformed workflow document: job %q: %s", e.Job, e.Detail)
		}
		return fmt.Sprintf("malformed workflow document: %s", e.Detail)
	}
}

func (e *LoadError) Unwrap() []error {
	var kind error
	switch e.Kind {
	case LoadInvalidEnabledFlag:
		kind = ErrInvalidEnabledFlag
	case LoadInvalidInstruction:
		kind = ErrInvalidInstruction
	default:
		kind = ErrMalformedDocument
	}
	if e.Err == nil {
		return []error{kind}
	}
	return []error{kind, e.Err}
}

// ExecutionError is a job-fatal failure raised while interpreting an
// instruction. It never aborts sibling jobs on its own.
type ExecutionError struct {
	Job   string
	Index int
	Line  string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("job %q: instruction %d (%q): %v", e.Job, e.Index+1, e.Line, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
