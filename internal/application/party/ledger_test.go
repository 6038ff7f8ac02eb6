package party_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rollpos-api/internal/application/apptest"
	"github.com/jhoicas/rollpos-api/internal/application/dto"
	"github.com/jhoicas/rollpos-api/internal/application/party"
	"github.com/jhoicas/rollpos-api/internal/application/ports"
	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

var d = apptest.D

func post(t *testing.T, env *apptest.Env, e *entity.PartyLedgerEntry) *entity.PartyLedgerEntry {
	t.Helper()
	require.NoError(t, env.Store.Run(context.Background(), func(r ports.Repos) error {
		return party.Post(context.Background(), r, e)
	}))
	return e
}

func TestPost_SaldoCorrido(t *testing.T) {
	env := apptest.New(t)
	sale := post(t, env, &entity.PartyLedgerEntry{
		PartyType: entity.PartyCustomer, PartyID: apptest.CustomerID, EntryType: entity.PartyEntrySale,
		Debit: d("50000"), Credit: d("20000"),
	})
	assert.NotEmpty(t, sale.ID)
	assert.True(t, sale.Balance.Equal(d("30000")))

	pay := post(t, env, &entity.PartyLedgerEntry{
		PartyType: entity.PartyCustomer, PartyID: apptest.CustomerID, EntryType: entity.PartyEntryPayment,
		Credit: d("10000"),
	})
	assert.True(t, pay.Balance.Equal(d("20000")))

	rev := post(t, env, party.Reverse(sale, entity.PartyEntryRefund, "anulación"))
	assert.True(t, rev.Debit.Equal(d("20000")))
	assert.True(t, rev.Credit.Equal(d("50000")))
	assert.True(t, rev.Balance.Equal(d("-10000")), "queda saldo a favor del cliente")
	assert.NotEqual(t, sale.ID, rev.ID)
}

func TestPost_Validaciones(t *testing.T) {
	env := apptest.New(t)
	err := env.Store.Run(context.Background(), func(r ports.Repos) error {
		return party.Post(context.Background(), r, &entity.PartyLedgerEntry{
			PartyType: "vecino", PartyID: "x", EntryType: entity.PartyEntrySale, Debit: d("1"),
		})
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = env.Store.Run(context.Background(), func(r ports.Repos) error {
		return party.Post(context.Background(), r, &entity.PartyLedgerEntry{
			PartyType: entity.PartyCustomer, PartyID: apptest.CustomerID, EntryType: entity.PartyEntrySale, Debit: d("-1"),
		})
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLedger_Consulta(t *testing.T) {
	env := apptest.New(t)
	svc := party.NewService(env.Store)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		post(t, env, &entity.PartyLedgerEntry{
			PartyType: entity.PartyEmployee, PartyID: apptest.EmployeeID, EntryType: entity.PartyEntryCommission, Credit: d("1000"),
		})
	}

	out, err := svc.Ledger(ctx, entity.PartyEmployee, apptest.EmployeeID, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.True(t, out.Balance.Equal(d("-3000")))
	require.Len(t, out.Entries, 2)
	assert.Less(t, out.Entries[0].Sequence, out.Entries[1].Sequence)

	_, err = svc.Ledger(ctx, entity.PartyEmployee, "nadie", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Ledger(ctx, "vecino", apptest.EmployeeID, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
