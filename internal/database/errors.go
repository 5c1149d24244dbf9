package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"

	"github.com/everestcap/skillforge/internal/models"
)

// Postgres error codes relevant to the store's constraint mapping
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// mapWriteError translates driver errors into the store's error taxonomy.
// Constraint violations become ValidationError; connection-level failures
// become UnavailableError. Anything else passes through for wrapping.
func mapWriteError(err error, field string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return &models.ValidationError{Field: field, Message: "duplicate key"}
		case pqForeignKeyViolation:
			return &models.ValidationError{Field: field, Message: "references a nonexistent record"}
		case pqCheckViolation:
			return &models.ValidationError{Field: field, Message: "constraint violated: " + pqErr.Message}
		}
	}

	if isUnavailable(err) {
		return &models.UnavailableError{Op: "store write", Err: err}
	}

	return err
}

// mapReadError translates driver errors on the read path
func mapReadError(err error) error {
	if err == nil {
		return nil
	}
	if isUnavailable(err) {
		return &models.UnavailableError{Op: "store read", Err: err}
	}
	return err
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
