package planerr

import (
	goerrors "gopkg.in/src-d/go-errors.v1"
)

// SQLError is the single carrier type for SQLSTATE + native code + message
// that Wrap and the New* helpers in this package build around a Kind.New
// result (a bare Kind.New call is not wrapped), mirroring the
// teacher's "one error type, many kinds" shape around *errors.Kind
// (SPEC_FULL.md "Ambient stack — Errors").
type SQLError struct {
	SQLState string
	Native   int
	cause    error
}

func (e *SQLError) Error() string {
	if e.cause == nil {
		return e.SQLState
	}
	return e.SQLState + ": " + e.cause.Error()
}

func (e *SQLError) Unwrap() error { return e.cause }

// Wrap builds a SQLError around an *errors.Kind instance (the result of a
// Kind.New(...) call), tagging it with the SQLSTATE class it belongs to
// per spec.md §7. Kind.Is does not look through the wrapper; test a
// wrapped error with planerr.Is, which unwraps it first.
func Wrap(sqlstate string, native int, cause error) *SQLError {
	return &SQLError{SQLState: sqlstate, Native: native, cause: cause}
}

// Is reports whether err was produced by kind, looking through any
// SQLError wrapper (mirrors auth.ErrNotAuthorized.Is(err) usage in the
// teacher).
func Is(kind *goerrors.Kind, err error) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(*SQLError); ok {
		return kind.Is(se.cause)
	}
	return kind.Is(err)
}
