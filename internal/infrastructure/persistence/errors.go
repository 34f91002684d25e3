package persistence

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ErrOptimisticLock is returned when a versioned update matched no row
var ErrOptimisticLock = shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")

// TranslateError maps driver errors onto domain errors so handlers can
// answer with a stable code. Unknown errors are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return shared.ErrHasDependencies
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return shared.ErrAlreadyExists
		case pgForeignKeyViolation:
			return shared.ErrHasDependencies
		}
	}

	// sqlite reports constraint failures only through the message
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return shared.ErrAlreadyExists
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return shared.ErrHasDependencies
	}
	return err
}
