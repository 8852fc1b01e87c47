package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// uniqueConstraint returns the name of the violated unique constraint for
// SQLSTATE 23505 errors, or "" when the error is something else.
func uniqueConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName
	}
	return ""
}

// isSlugViolation reports whether the unique violation hit a slug constraint.
func isSlugViolation(err error) bool {
	return strings.HasSuffix(uniqueConstraint(err), "_slug_key")
}
