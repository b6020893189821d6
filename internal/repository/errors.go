package repository

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrUniqueViolation is returned when an insert or update collides with a
// unique constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

const pqUniqueViolation = "23505"

// UniqueViolationError names the constraint that rejected the write.
type UniqueViolationError struct {
	Constraint string
	Err        error
}

func (e *UniqueViolationError) Error() string {
	return "unique constraint " + e.Constraint + " violated"
}

func (e *UniqueViolationError) Unwrap() error { return e.Err }

func (e *UniqueViolationError) Is(target error) bool { return target == ErrUniqueViolation }

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return &UniqueViolationError{Constraint: pqErr.Constraint, Err: err}
	}
	return err
}

type executor struct {
	db *sqlx.DB
}

// pick returns the transaction when one is supplied and the pool otherwise.
func (e executor) pick(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return e.db
}
