package purchasing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rollpos-api/internal/application/apptest"
	"github.com/jhoicas/rollpos-api/internal/application/dto"
	"github.com/jhoicas/rollpos-api/internal/application/purchasing"
	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	"github.com/jhoicas/rollpos-api/internal/domain/numbering"
)

var d = apptest.D

func newService(env *apptest.Env) *purchasing.Service {
	return purchasing.NewService(env.Store, nil, env.Lifecycle, env.Log, env.Metrics)
}

// orden de 100 m de lino a 8000 y 20 m de seda a 20000
func newOrder(t *testing.T, svc *purchasing.Service) *dto.PurchaseOrderResponse {
	t.Helper()
	po, err := svc.CreateOrder(context.Background(), apptest.UserID, dto.CreatePurchaseOrderRequest{
		SupplierID: apptest.SupplierID,
		Lines: []dto.PurchaseOrderLineRequest{
			{ProductID: apptest.ProductID, OrderedQuantity: d("100"), UnitPrice: d("8000")},
			{ProductID: apptest.Product2ID, OrderedQuantity: d("20"), UnitPrice: d("20000")},
		},
	})
	require.NoError(t, err)
	return po
}

func receive(lines ...dto.ReceiveLineRequest) dto.ReceivePurchaseOrderRequest {
	return dto.ReceivePurchaseOrderRequest{Lines: lines}
}

func line(id, qty string) dto.ReceiveLineRequest {
	return dto.ReceiveLineRequest{LineID: id, Quantity: d(qty), LocationID: apptest.LocationA}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateOrder
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_NumeracionYTotales(t *testing.T) {
	env := apptest.New(t)
	po := newOrder(t, newService(env))

	assert.Equal(t, "PO-000001", po.OrderNumber)
	assert.Equal(t, string(entity.POStatusCreated), po.Status)
	require.Len(t, po.Lines, 2)
	assert.Equal(t, apptest.ProductID, po.Lines[0].ProductID)
	assert.True(t, po.Lines[0].RemainingQuantity.Equal(d("100")))
	assert.True(t, po.Total.Equal(d("1200000")))
	assert.True(t, po.ReceivedTotal.IsZero())
}

func TestCreateOrder_Validaciones(t *testing.T) {
	env := apptest.New(t)
	svc := newService(env)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, apptest.UserID, dto.CreatePurchaseOrderRequest{SupplierID: apptest.SupplierID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CreateOrder(ctx, apptest.UserID, dto.CreatePurchaseOrderRequest{
		SupplierID: apptest.SupplierID,
		Lines:      []dto.PurchaseOrderLineRequest{{ProductID: apptest.ProductID, OrderedQuantity: d("0"), UnitPrice: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CreateOrder(ctx, apptest.UserID, dto.CreatePurchaseOrderRequest{
		SupplierID: apptest.SupplierID,
		Lines: []dto.PurchaseOrderLineRequest{
			{ProductID: apptest.ProductID, OrderedQuantity: d("10.0001"), UnitPrice: d("1")},
			{ProductID: apptest.ProductID, OrderedQuantity: d("10"), UnitPrice: d("1.005")},
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	var lineErr *domain.LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Len(t, lineErr.Violations, 2)

	_, err = svc.CreateOrder(ctx, apptest.UserID, dto.CreatePurchaseOrderRequest{
		SupplierID: apptest.CustomerID,
		Lines:      []dto.PurchaseOrderLineRequest{{ProductID: apptest.ProductID, OrderedQuantity: d("1"), UnitPrice: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "un cliente no es proveedor")

	_, err = svc.CreateOrder(ctx, apptest.UserID, dto.CreatePurchaseOrderRequest{
		SupplierID: apptest.SupplierID,
		Lines:      []dto.PurchaseOrderLineRequest{{ProductID: "nope", OrderedQuantity: d("1"), UnitPrice: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Receive
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_ParcialYLuegoTotal(t *testing.T) {
	env := apptest.New(t)
	svc := newService(env)
	ctx := context.Background()
	po := newOrder(t, svc)
	lino, seda := po.Lines[0].ID, po.Lines[1].ID

	out, err := svc.Receive(ctx, apptest.UserID, po.ID, receive(line(lino, "60"), line(lino, "15")))
	require.NoError(t, err)
	assert.Equal(t, string(entity.POStatusPartiallyReceived), out.Order.Status)
	require.Len(t, out.Units, 2, "un rollo por línea recibida")
	assert.True(t, out.Order.Lines[0].ReceivedQuantity.Equal(d("75")))
	assert.True(t, out.Order.Lines[0].RemainingQuantity.Equal(d("25")))
	for _, u := range out.Units {
		assert.Equal(t, po.ID, u.PurchaseOrderID)
		assert.Equal(t, apptest.SupplierID, u.SupplierID)
		assert.True(t, u.UnitCost.Equal(d("8000")))
		assert.True(t, numbering.ValidEAN13(u.ScanCode))
	}
	assert.Nil(t, out.Order.DeliveredAt)

	out, err = svc.Receive(ctx, apptest.UserID, po.ID, receive(line(lino, "25"), line(seda, "20")))
	require.NoError(t, err)
	assert.Equal(t, string(entity.POStatusReceived), out.Order.Status)
	assert.NotNil(t, out.Order.DeliveredAt)
	assert.True(t, out.Order.ReceivedTotal.Equal(out.Order.Total))

	avail, err := env.Inventory.Availability(ctx, apptest.ProductID)
	require.NoError(t, err)
	assert.True(t, avail.TotalRemaining.Equal(d("100")))

	list, err := env.Inventory.ListMovements(ctx, dto.MovementFilterRequest{ReferenceType: entity.ReferencePurchase, ReferenceID: po.ID})
	require.NoError(t, err)
	assert.Len(t, list.Items, 4)

	// asiento por recepción: 75*8000, luego 25*8000 + 20*20000
	bal, err := env.Store.Read().Ledger.Balance(ctx, entity.PartySupplier, apptest.SupplierID)
	require.NoError(t, err)
	assert.True(t, bal.Equal(d("1200000")), "saldo %s", bal)

	_, err = svc.Receive(ctx, apptest.UserID, po.ID, receive(line(lino, "1")))
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "orden recibida no admite más")
}

func TestReceive_SobreRecepcionNoDejaRastro(t *testing.T) {
	env := apptest.New(t)
	svc := newService(env)
	ctx := context.Background()
	po := newOrder(t, svc)

	_, err := svc.Receive(ctx, apptest.UserID, po.ID, receive(line(po.Lines[0].ID, "70"), line(po.Lines[0].ID, "31")))
	require.ErrorIs(t, err, domain.ErrOverReceipt)
	var lineErr *domain.LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Len(t, lineErr.Violations, 2)

	got, err := svc.GetOrder(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.POStatusCreated), got.Status)
	assert.True(t, got.Lines[0].ReceivedQuantity.IsZero())

	avail, err := env.Inventory.Availability(ctx, apptest.ProductID)
	require.NoError(t, err)
	assert.Empty(t, avail.Units)
}

func TestReceive_LineaAjenaYCantidadInvalida(t *testing.T) {
	env := apptest.New(t)
	svc := newService(env)
	ctx := context.Background()
	po := newOrder(t, svc)

	_, err := svc.Receive(ctx, apptest.UserID, po.ID, receive(line("otra", "1")))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Receive(ctx, apptest.UserID, po.ID, receive(line(po.Lines[0].ID, "0")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Receive(ctx, apptest.UserID, "nope", receive(line(po.Lines[0].ID, "1")))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceive_DecimalesFueraDeEscala(t *testing.T) {
	env := apptest.New(t)
	svc := newService(env)
	ctx := context.Background()
	po := newOrder(t, svc)

	_, err := svc.Receive(ctx, apptest.UserID, po.ID, receive(line(po.Lines[0].ID, "10"), line(po.Lines[1].ID, "2.0005")))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	var lineErr *domain.LineError
	require.True(t, errors.As(err, &lineErr))
	require.Len(t, lineErr.Violations, 1)
	assert.Equal(t, 1, lineErr.Violations[0].Line)

	mc := d("0.0001")
	l := line(po.Lines[0].ID, "10")
	l.MinCutLength = &mc
	_, err = svc.Receive(ctx, apptest.UserID, po.ID, receive(l))
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := svc.GetOrder(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.POStatusCreated), got.Status)
	assert.True(t, got.Lines[0].ReceivedQuantity.IsZero())
	assert.True(t, got.Lines[1].ReceivedQuantity.IsZero())
}

func TestReceive_CodigoDeBarrasDuplicado(t *testing.T) {
	env := apptest.New(t)
	svc := newService(env)
	ctx := context.Background()
	po := newOrder(t, svc)
	scan := numbering.EAN13("77", 1)

	a := line(po.Lines[0].ID, "10")
	a.ScanCode = scan
	_, err := svc.Receive(ctx, apptest.UserID, po.ID, receive(a))
	require.NoError(t, err)

	b := line(po.Lines[0].ID, "10")
	b.ScanCode = scan
	_, err = svc.Receive(ctx, apptest.UserID, po.ID, receive(b))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestReceive_CorteMinimoExplicito(t *testing.T) {
	env := apptest.New(t)
	svc := newService(env)
	po := newOrder(t, svc)

	l := line(po.Lines[0].ID, "4")
	mc := d("10")
	l.MinCutLength = &mc
	out, err := svc.Receive(context.Background(), apptest.UserID, po.ID, receive(l))
	require.NoError(t, err)
	require.Len(t, out.Units, 1)
	assert.True(t, out.Units[0].IsTail)
	assert.Equal(t, string(entity.StockUnitReserved), out.Units[0].Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Estados
// ──────────────────────────────────────────────────────────────────────────────

func TestEstados_CerrarCancelarEliminar(t *testing.T) {
	env := apptest.New(t)
	svc := newService(env)
	ctx := context.Background()

	po := newOrder(t, svc)
	got, err := svc.MarkOrdered(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.POStatusOrdered), got.Status)

	_, err = svc.Close(ctx, po.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "solo se cierra una orden recibida")

	got, err = svc.Cancel(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.POStatusCancelled), got.Status)
	_, err = svc.Receive(ctx, apptest.UserID, po.ID, receive(line(po.Lines[0].ID, "1")))
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	require.NoError(t, svc.Delete(ctx, po.ID))
	_, err = svc.GetOrder(ctx, po.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEstados_ConRecepcionesNoSeCancelaNiElimina(t *testing.T) {
	env := apptest.New(t)
	svc := newService(env)
	ctx := context.Background()
	po := newOrder(t, svc)

	_, err := svc.Receive(ctx, apptest.UserID, po.ID, receive(line(po.Lines[0].ID, "1")))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, po.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.ErrorIs(t, svc.Delete(ctx, po.ID), domain.ErrInvalidStateTransition)

	_, err = svc.Receive(ctx, apptest.UserID, po.ID, receive(line(po.Lines[0].ID, "99"), line(po.Lines[1].ID, "20")))
	require.NoError(t, err)
	got, err := svc.Close(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.POStatusClosed), got.Status)

	_, err = svc.Cancel(ctx, po.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}
