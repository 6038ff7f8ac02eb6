package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrOverReceipt            = errors.New("cantidad recibida supera lo pendiente de la orden")
	ErrInvalidStateTransition = errors.New("transición de estado no permitida")
	ErrConcurrencyConflict    = errors.New("conflicto de concurrencia, reintente la operación")
	ErrPersistenceFailure     = errors.New("almacenamiento no disponible")
)

// LineViolation describe por qué una línea de venta u orden fue rechazada.
// Line es el índice (base 0) de la línea dentro de la petición.
type LineViolation struct {
	Line      int
	Reference string // stock unit o línea de orden afectada
	Requested decimal.Decimal
	Available decimal.Decimal
	Reason    string
}

// LineError agrupa todas las líneas rechazadas de una petición.
// errors.Is(err, ErrInsufficientStock) etc. funciona a través de Unwrap.
type LineError struct {
	Kind       error
	Violations []LineViolation
}

// NewLineError construye el error; Kind debe ser uno de los sentinels del paquete.
func NewLineError(kind error, violations ...LineViolation) *LineError {
	return &LineError{Kind: kind, Violations: violations}
}

// Add agrega una violación.
func (e *LineError) Add(v LineViolation) {
	e.Violations = append(e.Violations, v)
}

// HasViolations indica si hay líneas rechazadas.
func (e *LineError) HasViolations() bool {
	return e != nil && len(e.Violations) > 0
}

func (e *LineError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("línea %d (%s): %s", v.Line, v.Reference, v.Reason))
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), strings.Join(parts, "; "))
}

func (e *LineError) Unwrap() error { return e.Kind }

// IsRetryable indica si el caller puede reintentar la operación completa.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict) || errors.Is(err, ErrPersistenceFailure)
}
