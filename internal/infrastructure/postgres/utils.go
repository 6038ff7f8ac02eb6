package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/rollpos-api/internal/domain"
)

// Códigos SQLSTATE que el motor traduce a errores de dominio.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerialization       = "40001"
	codeDeadlock            = "40P01"
	codeLockNotAvailable    = "55P03"
	codeQueryCanceled       = "57014"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// classify traduce un error del driver al sentinel de dominio correspondiente.
// Los errores que ya son de dominio se devuelven tal cual.
func classify(err error) error {
	for _, known := range []error{
		domain.ErrNotFound, domain.ErrInvalidInput, domain.ErrDuplicate,
		domain.ErrInsufficientStock, domain.ErrOverReceipt, domain.ErrInvalidStateTransition,
		domain.ErrConcurrencyConflict, domain.ErrPersistenceFailure,
	} {
		if errors.Is(err, known) {
			return known
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return domain.ErrDuplicate
		case codeForeignKeyViolation:
			return domain.ErrNotFound
		case codeCheckViolation:
			return domain.ErrInvalidInput
		case codeSerialization, codeDeadlock, codeLockNotAvailable:
			return domain.ErrConcurrencyConflict
		case codeQueryCanceled:
			return domain.ErrPersistenceFailure
		}
	}
	// timeouts, conexión caída y cualquier otra falla del driver
	return domain.ErrPersistenceFailure
}

// wrap agrega contexto a un error del driver conservando el original y el sentinel de dominio,
// de modo que errors.Is funcione con ambos.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	kind := classify(err)
	if errors.Is(err, kind) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// isTimeout indica si el error viene de un contexto vencido o de un timeout de red.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err)
}
