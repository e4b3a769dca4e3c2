package rotation

import (
	"errors"
	"fmt"
)

// Kinds of validation failure.  A ValidationError always wraps one of
// these so callers can branch with errors.Is.
var (
	ErrInvalidRange     = errors.New("invalid range")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ValidationError reports the specific constraint a generation request
// violated.  It is produced before any state is touched.
type ValidationError struct {
	Field      string
	Constraint string
	Err        error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Constraint
	}
	return e.Field + ": " + e.Constraint
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError of the given kind.
func Invalid(kind error, field, constraint string) error {
	return &ValidationError{Field: field, Constraint: constraint, Err: kind}
}

// CursorInconsistencyError is raised when the catalog reports fewer
// episodes than a cursor has already consumed.  It is never fatal: the
// cursor is clamped and the item treated as exhausted.
type CursorInconsistencyError struct {
	ContentID     uint64
	Aired         int
	TotalEpisodes int
}

func (e *CursorInconsistencyError) Error() string {
	return fmt.Sprintf("content %d: cursor consumed %d episodes but catalog reports %d",
		e.ContentID, e.Aired, e.TotalEpisodes)
}
