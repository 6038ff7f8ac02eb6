package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/rollpos-api/internal/application/dto"
	"github.com/jhoicas/rollpos-api/internal/domain"
)

// errorMapping código HTTP y código de negocio por sentinel, en orden de prioridad.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrOverReceipt, fiber.StatusConflict, "OVER_RECEIPT"},
	{domain.ErrInvalidStateTransition, fiber.StatusConflict, "INVALID_STATE_TRANSITION"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConcurrencyConflict, fiber.StatusConflict, "CONCURRENCY_CONFLICT"},
	{domain.ErrPersistenceFailure, fiber.StatusServiceUnavailable, "PERSISTENCE_FAILURE"},
}

// errorResponse traduce un error de caso de uso a (status, cuerpo).
func errorResponse(err error) (int, dto.ErrorResponse) {
	resp := dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()}
	status := fiber.StatusInternalServerError
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			status, resp.Code = m.status, m.code
			break
		}
	}
	var lineErr *domain.LineError
	if errors.As(err, &lineErr) {
		resp.Message = lineErr.Kind.Error()
		for _, v := range lineErr.Violations {
			resp.Details = append(resp.Details, lineDetail(v))
		}
	}
	return status, resp
}

func lineDetail(v domain.LineViolation) dto.ErrorDetail {
	line := v.Line
	d := dto.ErrorDetail{Line: &line, Reference: v.Reference, Reason: v.Reason}
	if !v.Requested.IsZero() {
		req := v.Requested
		d.Requested = &req
	}
	if !v.Available.IsZero() || !v.Requested.IsZero() {
		avail := v.Available
		d.Available = &avail
	}
	return d
}

// writeError responde con el mapeo estándar de errores de dominio.
func writeError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, resp *dto.ErrorResponse) error {
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}
