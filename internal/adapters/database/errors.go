package database

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

const pqUniqueViolation = "23505"

// isUniqueViolation reports a unique or primary key constraint failure from
// either driver
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// writeError maps a failed write to a ConflictError on field for unique
// violations and a PersistenceError otherwise
func writeError(err error, field, conflictMsg, msg string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return apperrors.NewConflictError(field, conflictMsg)
	}
	return apperrors.NewPersistenceError(msg, err)
}
