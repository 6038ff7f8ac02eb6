package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	"github.com/jhoicas/rollpos-api/internal/domain/inventory"
)

func mov(qty, before, after string) *entity.StockMovement {
	return &entity.StockMovement{Quantity: d(qty), BeforeQuantity: d(before), AfterQuantity: d(after)}
}

func TestReconcile_Consistente(t *testing.T) {
	u := newUnit("100", "100", "5")
	movs := []*entity.StockMovement{
		mov("100", "0", "100"), // apertura
		mov("-97", "100", "3"), // venta
		mov("97", "3", "100"),  // anulación
	}
	rep := inventory.Reconcile(u, movs)
	assert.True(t, rep.Consistent, "issues: %v", rep.Issues)
	assert.True(t, rep.Replayed.Equal(d("100")))
	assert.True(t, rep.Consumed().IsZero())
}

func TestReconcile_DetectaDescuadre(t *testing.T) {
	u := newUnit("100", "50", "5")
	movs := []*entity.StockMovement{
		mov("100", "0", "100"),
		mov("-40", "100", "60"),
	}
	rep := inventory.Reconcile(u, movs)
	assert.False(t, rep.Consistent)
	assert.True(t, rep.Replayed.Equal(d("60")))
	assert.NotEmpty(t, rep.Issues)
}

func TestReconcile_CadenaRota(t *testing.T) {
	u := newUnit("10", "7", "1")
	movs := []*entity.StockMovement{
		mov("10", "0", "10"),
		mov("-3", "9", "6"), // before no encadena
	}
	rep := inventory.Reconcile(u, movs)
	assert.False(t, rep.Consistent)
}

func TestReconcile_SinApertura(t *testing.T) {
	rep := inventory.Reconcile(newUnit("10", "10", "1"), nil)
	assert.False(t, rep.Consistent)
}
