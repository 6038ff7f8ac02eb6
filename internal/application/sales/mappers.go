package sales

import (
	"github.com/jhoicas/rollpos-api/internal/application/dto"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// ToSaleResponse convierte una venta a DTO.
func ToSaleResponse(s *entity.Sale) dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			StockUnitID: it.StockUnitID,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return dto.SaleResponse{
		ID:              s.ID,
		SaleNumber:      s.SaleNumber,
		ReceiptNumber:   s.ReceiptNumber,
		ScanCode:        s.ScanCode,
		CustomerID:      s.CustomerID,
		EmployeeID:      s.EmployeeID,
		Items:           items,
		Subtotal:        s.Subtotal,
		Discount:        s.Discount,
		BargainDiscount: s.BargainDiscount,
		TaxRate:         s.TaxRate,
		Tax:             s.Tax,
		GrandTotal:      s.GrandTotal,
		PaymentMethod:   s.PaymentMethod,
		AmountReceived:  s.AmountReceived,
		Change:          s.Change,
		Status:          s.Status,
		CancelReason:    s.CancelReason,
		CancelledAt:     s.CancelledAt,
		CancelledBy:     s.CancelledBy,
		CreatedAt:       s.CreatedAt,
	}
}
