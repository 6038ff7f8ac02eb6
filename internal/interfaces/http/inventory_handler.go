package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/rollpos-api/internal/application/dto"
	"github.com/jhoicas/rollpos-api/internal/application/inventory"
)

// InventoryHandler rollos, disponibilidad y ledger de movimientos (protegido).
type InventoryHandler struct {
	uc *inventory.Service
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.Service) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Availability godoc
// @Summary      Disponibilidad por producto
// @Description  Rollos vendibles en orden FIFO con total disponible y costo promedio ponderado.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "ID del producto"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/availability [get]
func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	out, err := h.uc.Availability(c.UserContext(), c.Query("product_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetUnit godoc
// @Summary      Obtener rollo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del rollo"
// @Success      200  {object}  dto.StockUnitResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/units/{id} [get]
func (h *InventoryHandler) GetUnit(c *fiber.Ctx) error {
	out, err := h.uc.GetUnit(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajuste de inventario sobre un rollo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del rollo"
// @Param        body  body  dto.AdjustUnitRequest  true  "delta (+/-) y motivo"
// @Success      200   {object}  dto.StockUnitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/units/{id}/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustUnitRequest
	if resp := bindBody(c, &in); resp != nil {
		return badRequest(c, resp)
	}
	out, err := h.uc.AdjustUnit(c.UserContext(), userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Dispose godoc
// @Summary      Dar de baja un rollo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del rollo"
// @Param        body  body  dto.DisposeUnitRequest  true  "motivo"
// @Success      200   {object}  dto.StockUnitResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/units/{id}/dispose [post]
func (h *InventoryHandler) Dispose(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.DisposeUnitRequest
	if resp := bindBody(c, &in); resp != nil {
		return badRequest(c, resp)
	}
	out, err := h.uc.DisposeUnit(c.UserContext(), userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Transfer godoc
// @Summary      Trasladar rollo de ubicación
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del rollo"
// @Param        body  body  dto.TransferUnitRequest  true  "ubicación destino"
// @Success      200   {object}  dto.StockUnitResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/units/{id}/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.TransferUnitRequest
	if resp := bindBody(c, &in); resp != nil {
		return badRequest(c, resp)
	}
	out, err := h.uc.TransferUnit(c.UserContext(), userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Damage godoc
// @Summary      Marcar rollo como averiado
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del rollo"
// @Success      200  {object}  dto.StockUnitResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/units/{id}/damage [post]
func (h *InventoryHandler) Damage(c *fiber.Ctx) error {
	out, err := h.uc.MarkDamaged(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Restore godoc
// @Summary      Restaurar rollo averiado
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del rollo"
// @Success      200  {object}  dto.StockUnitResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/units/{id}/restore [post]
func (h *InventoryHandler) Restore(c *fiber.Ctx) error {
	out, err := h.uc.RestoreUnit(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        stock_unit_id   query  string  false  "Filtrar por rollo"
// @Param        product_id      query  string  false  "Filtrar por producto"
// @Param        type            query  string  false  "IN, OUT, ADJUST, DISPOSAL, RETURN, TRANSFER"
// @Param        reference_type  query  string  false  "SALE, PURCHASE, ADJUSTMENT, SEED, TRANSFER"
// @Param        from            query  string  false  "RFC3339"
// @Param        to              query  string  false  "RFC3339"
// @Param        limit           query  int     false  "máx 500"
// @Param        offset          query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var in dto.MovementFilterRequest
	if resp := bindQuery(c, &in); resp != nil {
		return badRequest(c, resp)
	}
	out, err := h.uc.ListMovements(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar rollo contra su historial
// @Description  Reproduce los movimientos del rollo y compara con la cantidad restante registrada.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del rollo"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/units/{id}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.uc.Reconcile(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
