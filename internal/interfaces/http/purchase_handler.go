package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/rollpos-api/internal/application/dto"
	"github.com/jhoicas/rollpos-api/internal/application/purchasing"
)

// PurchaseHandler órdenes de compra y recepción (protegido).
type PurchaseHandler struct {
	uc *purchasing.Service
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *purchasing.Service) *PurchaseHandler {
	return &PurchaseHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "proveedor y líneas"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreatePurchaseOrderRequest
	if resp := bindBody(c, &in); resp != nil {
		return badRequest(c, resp)
	}
	out, err := h.uc.CreateOrder(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar orden de compra
// @Description  Solo órdenes sin mercancía recibida en estado Created o Cancelled.
// @Tags         purchase-orders
// @Security     Bearer
// @Param        id   path  string  true  "ID de la orden"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [delete]
func (h *PurchaseHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Receive godoc
// @Summary      Recibir mercancía
// @Description  Crea un rollo por línea recibida. Si alguna línea excede lo pendiente responde 409 con todas las líneas rechazadas.
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                           true  "ID de la orden"
// @Param        body  body  dto.ReceivePurchaseOrderRequest  true  "líneas recibidas"
// @Success      200   {object}  dto.ReceiptResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receive [post]
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.ReceivePurchaseOrderRequest
	if resp := bindBody(c, &in); resp != nil {
		return badRequest(c, resp)
	}
	out, err := h.uc.Receive(c.UserContext(), userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Order godoc
// @Summary      Marcar orden como pedida
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/order [post]
func (h *PurchaseHandler) Order(c *fiber.Ctx) error {
	return h.transition(c, h.uc.MarkOrdered)
}

// Close godoc
// @Summary      Cerrar orden recibida
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/close [post]
func (h *PurchaseHandler) Close(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Close)
}

// Cancel godoc
// @Summary      Cancelar orden sin recepciones
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/cancel [post]
func (h *PurchaseHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Cancel)
}

func (h *PurchaseHandler) transition(c *fiber.Ctx, fn func(ctx context.Context, orderID string) (*dto.PurchaseOrderResponse, error)) error {
	out, err := fn(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
