package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/rollpos-api/internal/application/dto"
	"github.com/jhoicas/rollpos-api/internal/application/sales"
)

// SaleHandler ventas de mostrador (protegido).
type SaleHandler struct {
	uc *sales.Service
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.Service) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Valida todas las líneas antes de tocar inventario; si alguna falla responde 409 con el detalle por línea.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "líneas, pago y descuentos"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateSaleRequest
	if resp := bindBody(c, &in); resp != nil {
		return badRequest(c, resp)
	}
	if key := c.Get("Idempotency-Key"); key != "" && in.IdempotencyKey == "" {
		in.IdempotencyKey = key
	}
	out, err := h.uc.CreateSale(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Anular venta
// @Description  Devuelve cada corte a su rollo y reversa el asiento del cliente. Una venta ya anulada responde 409.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la venta"
// @Param        body  body  dto.CancelSaleRequest   false  "motivo (opcional)"
// @Success      200   {object}  dto.SaleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	return h.reverse(c, h.uc.CancelSale)
}

// Refund godoc
// @Summary      Devolución de venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la venta"
// @Param        body  body  dto.CancelSaleRequest   false  "motivo (opcional)"
// @Success      200   {object}  dto.SaleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/refund [post]
func (h *SaleHandler) Refund(c *fiber.Ctx) error {
	return h.reverse(c, h.uc.RefundSale)
}

type reverseFunc func(ctx context.Context, userID, saleID string, in dto.CancelSaleRequest) (*dto.SaleResponse, error)

func (h *SaleHandler) reverse(c *fiber.Ctx, fn reverseFunc) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CancelSaleRequest
	if len(c.Body()) > 0 {
		if resp := bindBody(c, &in); resp != nil {
			return badRequest(c, resp)
		}
	}
	out, err := fn(c.UserContext(), userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Recibo PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.ReceiptPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}
