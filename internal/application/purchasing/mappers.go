package purchasing

import (
	"github.com/jhoicas/rollpos-api/internal/application/dto"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// ToPurchaseOrderResponse convierte una orden a DTO.
func ToPurchaseOrderResponse(po *entity.PurchaseOrder) dto.PurchaseOrderResponse {
	lines := make([]dto.PurchaseOrderLineResponse, 0, len(po.Lines))
	for _, l := range po.Lines {
		lines = append(lines, dto.PurchaseOrderLineResponse{
			ID:                l.ID,
			ProductID:         l.ProductID,
			OrderedQuantity:   l.OrderedQuantity,
			UnitPrice:         l.UnitPrice,
			ReceivedQuantity:  l.ReceivedQuantity,
			RemainingQuantity: l.RemainingQuantity,
			LineTotal:         l.LineTotal,
		})
	}
	return dto.PurchaseOrderResponse{
		ID:            po.ID,
		OrderNumber:   po.OrderNumber,
		SupplierID:    po.SupplierID,
		Status:        string(po.Status),
		Lines:         lines,
		OrderDate:     po.OrderDate,
		ExpectedDate:  po.ExpectedDate,
		DeliveredAt:   po.DeliveredAt,
		Total:         po.Total,
		ReceivedTotal: po.ReceivedTotal,
		Notes:         po.Notes,
		CreatedAt:     po.CreatedAt,
	}
}
