package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether the provided error is a Postgres unique
// violation. When a constraint name is provided, the violation must reference
// that constraint.
func IsUniqueViolation(err error, constraintName ...string) bool {
	if err == nil {
		return false
	}
	name := ""
	if len(constraintName) > 0 {
		name = constraintName[0]
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		if pgxErr.Code != uniqueViolationCode {
			return false
		}
		return name == "" || pgxErr.ConstraintName == name
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if string(pqErr.Code) != uniqueViolationCode {
			return false
		}
		return name == "" || pqErr.Constraint == name
	}

	return false
}
