package roster

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
)

// Kind classifies why a roster could not be produced. The set is closed.
type Kind int

const (
	// SourceUnavailable means the roster file could not be opened or read.
	SourceUnavailable Kind = iota + 1
	// MalformedInput means the header or a row broke the id,name contract.
	MalformedInput
	// EmptyRoster means the source parsed cleanly but held no data rows.
	EmptyRoster
	// InsufficientRoster means there are fewer rows than roles to fill.
	InsufficientRoster
)

func (k Kind) String() string {
	switch k {
	case SourceUnavailable:
		return "source-unavailable"
	case MalformedInput:
		return "malformed-input"
	case EmptyRoster:
		return "empty-roster"
	case InsufficientRoster:
		return "insufficient-roster"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrSourceUnavailable  = &Error{Kind: SourceUnavailable}
	ErrMalformedInput     = &Error{Kind: MalformedInput}
	ErrEmptyRoster        = &Error{Kind: EmptyRoster}
	ErrInsufficientRoster = &Error{Kind: InsufficientRoster}
)

// Error is the single error type returned by the loader. Its text is the
// user-facing message, including the leading "Error:".
type Error struct {
	Kind   Kind
	Source string
	// Found and Need are set for InsufficientRoster.
	Found int
	Need  int
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case SourceUnavailable:
		return fmt.Sprintf("Error: Could not open file '%s': %s", e.Source, causeText(e.Err))
	case MalformedInput:
		return fmt.Sprintf("Error: Failed to parse CSV file '%s': %s", e.Source, causeText(e.Err))
	case EmptyRoster:
		return fmt.Sprintf("Error: The student list in '%s' is empty.", e.Source)
	case InsufficientRoster:
		return fmt.Sprintf("Error: Not enough students in '%s' to select %s. Found %d.", e.Source, countWord(e.Need), e.Found)
	default:
		return fmt.Sprintf("Error: roster '%s': %s", e.Source, causeText(e.Err))
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so the package sentinels work with
// errors.Is regardless of source or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind carried by err, or 0 when err is not a roster error.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return 0
}

// causeText drops the op/path prefix of fs errors; the path is already part
// of the message.
func causeText(err error) string {
	if err == nil {
		return "unknown cause"
	}
	var perr *fs.PathError
	if errors.As(err, &perr) && perr.Err != nil {
		return perr.Err.Error()
	}
	return err.Error()
}

func countWord(n int) string {
	switch n {
	case 1:
		return "one"
	case 2:
		return "two"
	case 3:
		return "three"
	default:
		return strconv.Itoa(n)
	}
}
