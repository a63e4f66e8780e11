package store

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// primaryCode returns the primary SQLite result code carried by err.
// Extended codes keep the primary code in the low byte.
func primaryCode(err error) (int, bool) {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return 0, false
	}
	return se.Code() & 0xff, true
}

// IsBusyError reports whether err is SQLITE_BUSY.
func IsBusyError(err error) bool {
	code, ok := primaryCode(err)
	return ok && code == sqlite3.SQLITE_BUSY
}

// IsLockedError reports whether err is SQLITE_LOCKED.
func IsLockedError(err error) bool {
	code, ok := primaryCode(err)
	return ok && code == sqlite3.SQLITE_LOCKED
}

// IsConflictError reports whether err is a concurrency error worth retrying.
func IsConflictError(err error) bool {
	return IsBusyError(err) || IsLockedError(err)
}
