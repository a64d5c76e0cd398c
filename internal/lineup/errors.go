package lineup

import (
	"errors"
	"fmt"
)

// Code is a machine-readable rejection reason.  The set is closed; the
// HTTP layer maps each code to a status.
type Code string

const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidState       Code = "INVALID_STATE"
	CodeLineupLocked       Code = "LINEUP_LOCKED"
	CodeInsufficientLineup Code = "INSUFFICIENT_LINEUP"
	CodeValidation         Code = "VALIDATION"
)

// Error is a rejected lineup operation.  When an operation returns an
// *Error its unit of work has been rolled back: no state changed and no
// audit entry was written.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error carrying the same code, so callers can test
// with errors.Is(err, lineup.ErrLineupLocked).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnauthorized       = &Error{Code: CodeUnauthorized, Message: "not authorized"}
	ErrInvalidState       = &Error{Code: CodeInvalidState, Message: "invalid state"}
	ErrLineupLocked       = &Error{Code: CodeLineupLocked, Message: "lineup locked"}
	ErrInsufficientLineup = &Error{Code: CodeInsufficientLineup, Message: "insufficient lineup"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation failed"}
)

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first *Error in err's chain, or "" when
// err is not a lineup rejection.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
