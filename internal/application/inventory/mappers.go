package inventory

import (
	"github.com/jhoicas/rollpos-api/internal/application/dto"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// ToStockUnitResponse convierte un rollo a DTO.
func ToStockUnitResponse(u *entity.StockUnit) dto.StockUnitResponse {
	return dto.StockUnitResponse{
		ID:                u.ID,
		UnitNumber:        u.UnitNumber,
		ScanCode:          u.ScanCode,
		BatchCode:         u.BatchCode,
		ProductID:         u.ProductID,
		SupplierID:        u.SupplierID,
		PurchaseOrderID:   u.PurchaseOrderID,
		InitialQuantity:   u.InitialQuantity,
		RemainingQuantity: u.RemainingQuantity,
		Unit:              u.Unit,
		UnitCost:          u.UnitCost,
		MinCutLength:      u.MinCutLength,
		LocationID:        u.LocationID,
		IsTail:            u.IsTail,
		Status:            string(u.Status),
		ReceivedAt:        u.ReceivedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

// ToStockMovementResponse convierte un movimiento a DTO.
func ToStockMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:             m.ID,
		Sequence:       m.Sequence,
		StockUnitID:    m.StockUnitID,
		ProductID:      m.ProductID,
		Type:           m.Type,
		Quantity:       m.Quantity,
		Unit:           m.Unit,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		Reason:         m.Reason,
		BeforeQuantity: m.BeforeQuantity,
		AfterQuantity:  m.AfterQuantity,
		CreatedAt:      m.CreatedAt,
		CreatedBy:      m.CreatedBy,
	}
}
