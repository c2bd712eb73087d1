package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrForeignKey = errors.New("foreign key violation")
	ErrOverlap    = errors.New("overlapping booking")
)

// Constraint names from the migrations that callers branch on.
const (
	UsersEmailKey = "users_email_key"
	UsersNameKey  = "users_name_key"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgExclusionViolation  = "23P01"
)

// ConstraintError is a constraint violation reported by Postgres. It matches
// its store sentinel under errors.Is and unwraps to the driver error.
type ConstraintError struct {
	Kind       error
	Constraint string
	Err        *pgconn.PgError
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Constraint)
}

func (e *ConstraintError) Is(target error) bool {
	return target == e.Kind
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// Constraint returns the name of the violated constraint, or "" when err is
// not a constraint violation.
func Constraint(err error) string {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Constraint
	}
	return ""
}

// classify maps driver errors onto the store sentinels, keeping the original
// error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	var kind error
	switch pgErr.Code {
	case pgUniqueViolation:
		kind = ErrDuplicate
	case pgForeignKeyViolation:
		kind = ErrForeignKey
	case pgExclusionViolation:
		kind = ErrOverlap
	default:
		return err
	}
	return &ConstraintError{Kind: kind, Constraint: pgErr.ConstraintName, Err: pgErr}
}
