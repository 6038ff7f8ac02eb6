package purchasing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// orderTransitions transiciones permitidas de una orden de compra.
var orderTransitions = map[entity.PurchaseOrderStatus][]entity.PurchaseOrderStatus{
	entity.POStatusCreated: {
		entity.POStatusOrdered, entity.POStatusPartiallyReceived, entity.POStatusReceived, entity.POStatusCancelled,
	},
	entity.POStatusOrdered: {
		entity.POStatusPartiallyReceived, entity.POStatusReceived, entity.POStatusCancelled,
	},
	entity.POStatusPartiallyReceived: {
		entity.POStatusPartiallyReceived, entity.POStatusReceived,
	},
	entity.POStatusReceived:  {entity.POStatusClosed},
	entity.POStatusClosed:    {},
	entity.POStatusCancelled: {},
}

// CanTransition indica si la orden puede pasar de from a to.
func CanTransition(from, to entity.PurchaseOrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition aplica el cambio de estado o devuelve ErrInvalidStateTransition.
func Transition(po *entity.PurchaseOrder, to entity.PurchaseOrderStatus) error {
	if !CanTransition(po.Status, to) {
		return fmt.Errorf("%w: orden %s %s -> %s", domain.ErrInvalidStateTransition, po.OrderNumber, po.Status, to)
	}
	po.Status = to
	return nil
}

// CanReceive indica si la orden admite recepciones en su estado actual.
func CanReceive(status entity.PurchaseOrderStatus) bool {
	switch status {
	case entity.POStatusCreated, entity.POStatusOrdered, entity.POStatusPartiallyReceived:
		return true
	}
	return false
}

// CanDelete solo sin recepciones y en Created, Ordered o Cancelled.
func CanDelete(po *entity.PurchaseOrder) bool {
	if po.HasReceipts() {
		return false
	}
	switch po.Status {
	case entity.POStatusCreated, entity.POStatusOrdered, entity.POStatusCancelled:
		return true
	}
	return false
}

// DeriveReceiptStatus estado que corresponde tras una recepción:
// todas las líneas completas -> Received; alguna con recibido > 0 -> Partially Received.
func DeriveReceiptStatus(po *entity.PurchaseOrder) entity.PurchaseOrderStatus {
	complete, started := true, false
	for _, l := range po.Lines {
		if l.ReceivedQuantity.GreaterThan(decimal.Zero) {
			started = true
		}
		if l.RemainingQuantity.GreaterThan(decimal.Zero) {
			complete = false
		}
	}
	switch {
	case complete && len(po.Lines) > 0:
		return entity.POStatusReceived
	case started:
		return entity.POStatusPartiallyReceived
	default:
		return po.Status
	}
}

// ApplyReceipt suma la cantidad recibida a la línea manteniendo received + remaining = ordered.
func ApplyReceipt(line *entity.PurchaseOrderLine, qty decimal.Decimal) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if qty.GreaterThan(line.RemainingQuantity) {
		return domain.ErrOverReceipt
	}
	line.ReceivedQuantity = line.ReceivedQuantity.Add(qty)
	line.RemainingQuantity = line.OrderedQuantity.Sub(line.ReceivedQuantity)
	return nil
}
