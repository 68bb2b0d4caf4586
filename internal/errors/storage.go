package errors

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Storage wraps a persistence failure as a StorageError tagged with op.
// The driver error is kept as the internal cause but its text, which may
// contain statement fragments, never reaches the message.
func Storage(op string, err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	sentinel := classify(err)
	return &AppError{
		Kind:     sentinel.Kind,
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Op:       op,
		Internal: err,
	}
}

func classify(err error) *AppError {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return ErrConstraintViolation
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return ErrStoreUnavailable
		}
		return ErrStorage
	}

	var connErr *pgconn.ConnectError
	if stderrors.As(err, &connErr) {
		return ErrStoreUnavailable
	}

	var liteErr sqlite3.Error
	if stderrors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrConstraint:
			return ErrConstraintViolation
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen:
			return ErrStoreUnavailable
		}
		return ErrStorage
	}

	if stderrors.Is(err, sql.ErrConnDone) ||
		stderrors.Is(err, context.DeadlineExceeded) ||
		stderrors.Is(err, context.Canceled) {
		return ErrStoreUnavailable
	}
	return ErrStorage
}
