package store

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrConflict reports a uniqueness violation that get-or-create could not
// reconcile, e.g. an existing row with the same name but a blank external id.
// Callers recover via a disambiguation lookup.
var ErrConflict = errors.New("uniqueness conflict")

// ErrValidation reports a scalar field that failed validation at write time.
var ErrValidation = errors.New("validation failed")

// isUniqueViolation reports whether err is a SQLite uniqueness or primary
// key constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
