// Package errors provides the ledger's closed error taxonomy.
// Every service-layer error is an AppError so that the HTTP and CLI
// adapters can translate failures without inspecting driver errors or
// leaking query text.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is the coarse class of an AppError. Transport layers map kinds
// to protocol responses; the set is closed.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindStorage         Kind = "storage_error"
)

// AppError represents a structured application error with a kind, an
// error code, a human-readable message, the failing operation and an
// optional internal error.
type AppError struct {
	Kind     Kind   `json:"-"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Op       string `json:"-"`
	Internal error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError carrying the same code, so
// that wrapped copies still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same kind/code/message but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Kind:     sentinel.Kind,
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Op:       sentinel.Op,
		Internal: internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Kind:     sentinel.Kind,
		Code:     sentinel.Code,
		Message:  message,
		Op:       sentinel.Op,
		Internal: sentinel.Internal,
	}
}

// WithOp creates a new AppError tagged with the operation that failed.
func WithOp(sentinel *AppError, op string) *AppError {
	return &AppError{
		Kind:     sentinel.Kind,
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Op:       op,
		Internal: sentinel.Internal,
	}
}

// KindOf returns the kind of err, treating anything that is not an
// AppError as a storage failure.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

// Invalid argument errors.
var (
	ErrInvalidArgument  = &AppError{Kind: KindInvalidArgument, Code: "INVALID_ARGUMENT", Message: "Invalid argument"}
	ErrInvalidPeriod    = &AppError{Kind: KindInvalidArgument, Code: "INVALID_PERIOD", Message: "Month must be between 1 and 12"}
	ErrInvalidAmount    = &AppError{Kind: KindInvalidArgument, Code: "INVALID_AMOUNT", Message: "Amount must be a positive number"}
	ErrInvalidDate      = &AppError{Kind: KindInvalidArgument, Code: "INVALID_DATE", Message: "Date must use the YYYY-MM-DD format"}
	ErrInvalidType      = &AppError{Kind: KindInvalidArgument, Code: "INVALID_TYPE", Message: "Type must be income or expense"}
	ErrTypeMismatch     = &AppError{Kind: KindInvalidArgument, Code: "TYPE_MISMATCH", Message: "Transaction type does not match the category type"}
	ErrCategoryInactive = &AppError{Kind: KindInvalidArgument, Code: "CATEGORY_INACTIVE", Message: "Category has been deleted"}
	ErrSelfParent       = &AppError{Kind: KindInvalidArgument, Code: "SELF_PARENT_CATEGORY", Message: "A category cannot be its own parent"}
)

// Not found errors.
var (
	ErrNotFound            = &AppError{Kind: KindNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrCategoryNotFound    = &AppError{Kind: KindNotFound, Code: "CATEGORY_NOT_FOUND", Message: "Category not found"}
	ErrTransactionNotFound = &AppError{Kind: KindNotFound, Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found"}
)

// Storage errors.
var (
	ErrStorage             = &AppError{Kind: KindStorage, Code: "STORAGE_ERROR", Message: "Storage failure"}
	ErrConstraintViolation = &AppError{Kind: KindStorage, Code: "CONSTRAINT_VIOLATION", Message: "Storage constraint violated"}
	ErrStoreUnavailable    = &AppError{Kind: KindStorage, Code: "STORE_UNAVAILABLE", Message: "Storage is unavailable"}
)
