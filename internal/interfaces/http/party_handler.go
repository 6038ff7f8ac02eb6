package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/rollpos-api/internal/application/dto"
	"github.com/jhoicas/rollpos-api/internal/application/party"
)

// PartyHandler consulta del ledger de clientes, proveedores y empleados.
type PartyHandler struct {
	uc *party.Service
}

// NewPartyHandler construye el handler.
func NewPartyHandler(uc *party.Service) *PartyHandler {
	return &PartyHandler{uc: uc}
}

// Ledger godoc
// @Summary      Saldo y asientos de un tercero
// @Tags         parties
// @Security     Bearer
// @Produce      json
// @Param        type    path   string  true   "customer, supplier o employee"
// @Param        id      path   string  true   "ID del tercero"
// @Param        limit   query  int     false  "máx 100"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.PartyLedgerResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/parties/{type}/{id}/ledger [get]
func (h *PartyHandler) Ledger(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, &dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	if resp := validateStruct(&page); resp != nil {
		return badRequest(c, resp)
	}
	out, err := h.uc.Ledger(c.UserContext(), c.Params("type"), c.Params("id"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
