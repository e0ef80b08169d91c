// Package planerr defines the error kinds raised by the planner and PSM
// compiler, each tagged with the SQLSTATE classes from spec.md §7.
package planerr

import (
	"fmt"

	"gopkg.in/src-d/go-errors.v1"
)

// SQLState is a 5-character SQLSTATE code plus an engine-local native code.
type SQLState struct {
	Code   string
	Native int
}

func (s SQLState) String() string {
	return fmt.Sprintf("%s(%d)", s.Code, s.Native)
}

var (
	// ResourceLimit: query too complex, too many bound parameters, memory exhaustion.
	ErrTooComplex = errors.NewKind("Query too complex: running out of stack space")

	// SyntacticRejection: a statement construct is not permitted in the current mode.
	ErrReturnInProcedure  = errors.NewKind("RETURN not allowed in a procedure")
	ErrMissingReturn      = errors.NewKind("function %q is missing a RETURN on some control path")
	ErrReturnNotLast      = errors.NewKind("RETURN must be the last statement of a block")
	ErrRelationalInWhile  = errors.NewKind("WHILE condition may not contain a relational subquery")
	ErrBareScalarCall     = errors.NewKind("CALL of a scalar-returning function may not stand alone")
	ErrDuplicateDeclare   = errors.NewKind("redeclaration of %q in the same frame")

	// NameResolution: variable/function/column/table unknown or ambiguous.
	ErrUnknownVariable = errors.NewKind("variable %q unknown")
	ErrUnknownColumn   = errors.NewKind("column %q not found")
	ErrUnknownTable    = errors.NewKind("table %q not found")
	ErrSchemaNotFound  = errors.NewKind("3F000: schema %q not found")

	// SyntacticRejection: an outer reference is read by an aggregate after
	// its owning scope was already marked grouped (spec.md §4.5).
	ErrGroupedAggregateConflict = errors.NewKind("aggregate over an outer reference whose scope is already grouped")

	// TypeMismatch: an expression cannot be coerced to the declared target.
	ErrTypeMismatch = errors.NewKind("cannot convert %s to %s")

	// PrivilegeDenied: the current user lacks rights for a catalog operation.
	ErrPrivilegeDenied = errors.NewKind("insufficient privileges for %s")

	// ConflictingObject: creating an object whose name is in use.
	ErrFunctionExists = errors.NewKind("function %s already exists")
	ErrObjectExists    = errors.NewKind("object %q already exists")

	// IntegrityViolation: compiled as st_exception, not raised at compile time,
	// but the Kind is still used to format the exception message.
	ErrUniqueViolation    = errors.NewKind("00001: INSERT INTO: UNIQUE constraint %q violated")
	ErrNotNullViolation   = errors.NewKind("40002: INSERT INTO: NOT NULL constraint violated for column %q")
	ErrForeignKeyViolation = errors.NewKind("40002: %s: FOREIGN KEY constraint %q violated")

	// InternalInvariant: a planner invariant violated.
	ErrInternal = errors.NewKind("internal planner invariant violated: %s")

	// ResourceLimit: schema statement issued on a read-only session.
	ErrReadOnly = errors.NewKind("06: schema statement not allowed on a read-only session")
)

// New42000 raises the canonical "query too complex" resource-limit error:
// ErrTooComplex (whose message carries no code) wrapped in a SQLError
// tagged with SQLSTATE 42000 (spec.md §5).
func New42000() error {
	return Wrap("42000", 0, ErrTooComplex.New())
}

// NewUniqueViolation builds the st_exception payload (message only; the
// guard itself is an int compiled into the plan, not raised here) for a
// violated UK/PK named constraint (spec.md §4.3.10 insert_check_ukey).
func NewUniqueViolation(constraint string) *SQLError {
	return Wrap("00001", 0, ErrUniqueViolation.New(constraint))
}

// NewNotNullViolation builds the guard message for a violated NOT NULL
// column (spec.md §4.3.10 "Null check").
func NewNotNullViolation(column string) *SQLError {
	return Wrap("40002", 0, ErrNotNullViolation.New(column))
}

// NewForeignKeyViolation builds the guard message for a violated FK
// (spec.md §4.3.10 insert_check_fkey / update_check_fkey).
func NewForeignKeyViolation(op, constraint string) *SQLError {
	return Wrap("40002", 0, ErrForeignKeyViolation.New(op, constraint))
}

// NewSchemaNotFound wraps the 3F000 class (spec.md §6).
func NewSchemaNotFound(name string) *SQLError {
	return Wrap("3F000", 0, ErrSchemaNotFound.New(name))
}

// NewReadOnly wraps the "06" schema-statement-on-read-only class
// (spec.md §6).
func NewReadOnly() *SQLError {
	return Wrap("06", 0, ErrReadOnly.New())
}
