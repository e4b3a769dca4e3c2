// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to use a resource owned by someone else, while ErrConflict
// signals that a write lost a race against a concurrent transaction and
// may simply be retried.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a requested row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a transaction was aborted by the
// database because of a concurrent writer (deadlock or lock wait
// timeout).  The whole unit of work can be retried.
var ErrConflict = errors.New("conflict")

// MySQL error numbers that mean "another transaction got in the way".
const (
	mysqlLockWaitTimeout uint16 = 1205
	mysqlDeadlock        uint16 = 1213
)

// classify wraps lock contention errors with ErrConflict so callers can
// tell them apart from hard failures.  Other errors pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && (me.Number == mysqlDeadlock || me.Number == mysqlLockWaitTimeout) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
