package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sentinel errors for constraint failures reported by the storage engine
var (
	ErrConflict  = errors.New("unique constraint violation")
	ErrReference = errors.New("foreign key constraint violation")
)

const (
	pqUniqueViolation     = pq.ErrorCode("23505")
	pqForeignKeyViolation = pq.ErrorCode("23503")
)

// Translate maps driver-specific constraint errors onto ErrConflict or
// ErrReference, keeping the driver error as context. Other errors are
// returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return errors.Wrap(ErrConflict, pqErr.Message)
		case pqForeignKeyViolation:
			return errors.Wrap(ErrReference, pqErr.Message)
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return errors.Wrap(ErrConflict, liteErr.Error())
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return errors.Wrap(ErrReference, liteErr.Error())
		}
		// without extended result codes only the message tells them apart
		msg := liteErr.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed"):
			return errors.Wrap(ErrConflict, msg)
		case strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return errors.Wrap(ErrReference, msg)
		}
	}
	return err
}
