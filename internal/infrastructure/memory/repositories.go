package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	"github.com/jhoicas/rollpos-api/internal/domain/repository"
)

var (
	_ repository.StockUnitRepository     = (*stockUnitRepo)(nil)
	_ repository.StockMovementRepository = (*movementRepo)(nil)
	_ repository.PartyLedgerRepository   = (*partyLedgerRepo)(nil)
	_ repository.SaleRepository          = (*saleRepo)(nil)
	_ repository.PurchaseOrderRepository = (*purchaseOrderRepo)(nil)
	_ repository.SequenceRepository      = (*sequenceRepo)(nil)
	_ repository.ProductRepository       = (*productRepo)(nil)
	_ repository.LocationRepository      = (*locationRepo)(nil)
	_ repository.PartyRepository         = (*partyRepo)(nil)
)

// ── Stock units ─────────────────────────────────────────────────────────────

type stockUnitRepo struct{ v *view }

func (r *stockUnitRepo) Create(_ context.Context, u *entity.StockUnit) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.units[u.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.units {
			if other.UnitNumber == u.UnitNumber || (u.ScanCode != "" && other.ScanCode == u.ScanCode) {
				return domain.ErrDuplicate
			}
		}
		st.units[u.ID] = u.Clone()
		return nil
	})
}

func (r *stockUnitRepo) GetByID(_ context.Context, id string) (*entity.StockUnit, error) {
	var out *entity.StockUnit
	r.v.read(func(st *state) {
		if u, ok := st.units[id]; ok {
			out = u.Clone()
		}
	})
	return out, nil
}

// GetForUpdate en memoria el mutex de la transacción ya da exclusión.
func (r *stockUnitRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockUnit, error) {
	return r.GetByID(ctx, id)
}

func (r *stockUnitRepo) Update(_ context.Context, u *entity.StockUnit) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.units[u.ID]; !ok {
			return domain.ErrNotFound
		}
		st.units[u.ID] = u.Clone()
		return nil
	})
}

func (r *stockUnitRepo) ListEligibleByProduct(_ context.Context, productID string) ([]*entity.StockUnit, error) {
	var out []*entity.StockUnit
	r.v.read(func(st *state) {
		for _, u := range st.units {
			if u.ProductID == productID && u.Eligible() {
				out = append(out, u.Clone())
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedAt.Equal(out[j].ReceivedAt) {
			return out[i].ReceivedAt.Before(out[j].ReceivedAt)
		}
		return out[i].UnitNumber < out[j].UnitNumber
	})
	return out, nil
}

// ── Stock movements ─────────────────────────────────────────────────────────

type movementRepo struct{ v *view }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.v.write(func(st *state) error {
		st.movementSeq++
		m.Sequence = st.movementSeq
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		c := *m
		st.movements = append(st.movements, &c)
		return nil
	})
}

func (r *movementRepo) List(_ context.Context, f entity.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	r.v.read(func(st *state) {
		for _, m := range st.movements {
			if matchMovement(m, f) {
				c := *m
				out = append(out, &c)
			}
		}
	})
	return page(out, f.Offset, f.Limit), nil
}

func (r *movementRepo) ListByUnit(ctx context.Context, stockUnitID string) ([]*entity.StockMovement, error) {
	return r.List(ctx, entity.MovementFilter{StockUnitID: stockUnitID})
}

func matchMovement(m *entity.StockMovement, f entity.MovementFilter) bool {
	switch {
	case f.StockUnitID != "" && m.StockUnitID != f.StockUnitID,
		f.ProductID != "" && m.ProductID != f.ProductID,
		f.Type != "" && m.Type != f.Type,
		f.ReferenceType != "" && m.ReferenceType != f.ReferenceType,
		f.ReferenceID != "" && m.ReferenceID != f.ReferenceID,
		f.From != nil && m.CreatedAt.Before(*f.From),
		f.To != nil && m.CreatedAt.After(*f.To):
		return false
	}
	return true
}

// page aplica offset/limit; limit <= 0 devuelve todo desde offset.
func page[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ── Party ledger ────────────────────────────────────────────────────────────

type partyLedgerRepo struct{ v *view }

func (r *partyLedgerRepo) LockBalance(_ context.Context, partyType, partyID string) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := r.v.write(func(st *state) error {
		key := partyKey(partyType, partyID)
		if _, ok := st.balances[key]; !ok {
			st.balances[key] = decimal.Zero
		}
		bal = st.balances[key]
		return nil
	})
	return bal, err
}

func (r *partyLedgerRepo) Create(_ context.Context, e *entity.PartyLedgerEntry) error {
	return r.v.write(func(st *state) error {
		st.entrySeq++
		e.Sequence = st.entrySeq
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now()
		}
		c := *e
		st.entries = append(st.entries, &c)
		st.balances[partyKey(e.PartyType, e.PartyID)] = e.Balance
		return nil
	})
}

func (r *partyLedgerRepo) ListByParty(_ context.Context, partyType, partyID string, limit, offset int) ([]*entity.PartyLedgerEntry, error) {
	var out []*entity.PartyLedgerEntry
	r.v.read(func(st *state) {
		for _, e := range st.entries {
			if e.PartyType == partyType && e.PartyID == partyID {
				c := *e
				out = append(out, &c)
			}
		}
	})
	return page(out, offset, limit), nil
}

func (r *partyLedgerRepo) Balance(_ context.Context, partyType, partyID string) (decimal.Decimal, error) {
	var bal decimal.Decimal
	r.v.read(func(st *state) {
		bal = st.balances[partyKey(partyType, partyID)]
	})
	return bal, nil
}

// ── Sales ───────────────────────────────────────────────────────────────────

type saleRepo struct{ v *view }

func (r *saleRepo) Create(_ context.Context, s *entity.Sale) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.sales[s.ID]; ok {
			return domain.ErrDuplicate
		}
		if s.IdempotencyKey != "" {
			if _, ok := st.salesByKey[s.IdempotencyKey]; ok {
				return domain.ErrDuplicate
			}
			st.salesByKey[s.IdempotencyKey] = s.ID
		}
		st.sales[s.ID] = s.Clone()
		return nil
	})
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	r.v.read(func(st *state) {
		if s, ok := st.sales[id]; ok {
			out = s.Clone()
		}
	})
	return out, nil
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error) {
	var id string
	r.v.read(func(st *state) { id = st.salesByKey[key] })
	if id == "" {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *saleRepo) UpdateStatus(_ context.Context, s *entity.Sale, fromStatus string) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.sales[s.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if cur.Status != fromStatus {
			return fmt.Errorf("%w: venta %s en estado %s", domain.ErrInvalidStateTransition, cur.SaleNumber, cur.Status)
		}
		cur.Status = s.Status
		cur.CancelReason = s.CancelReason
		cur.CancelledBy = s.CancelledBy
		if s.CancelledAt != nil {
			t := *s.CancelledAt
			cur.CancelledAt = &t
		}
		cur.UpdatedAt = s.UpdatedAt
		return nil
	})
}

// ── Purchase orders ─────────────────────────────────────────────────────────

type purchaseOrderRepo struct{ v *view }

func (r *purchaseOrderRepo) Create(_ context.Context, po *entity.PurchaseOrder) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.orders[po.ID]; ok {
			return domain.ErrDuplicate
		}
		st.orders[po.ID] = po.Clone()
		return nil
	})
}

func (r *purchaseOrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	r.v.read(func(st *state) {
		if po, ok := st.orders[id]; ok {
			out = po.Clone()
		}
	})
	return out, nil
}

func (r *purchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *purchaseOrderRepo) Update(_ context.Context, po *entity.PurchaseOrder) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.orders[po.ID]; !ok {
			return domain.ErrNotFound
		}
		st.orders[po.ID] = po.Clone()
		return nil
	})
}

func (r *purchaseOrderRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.orders[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.orders, id)
		return nil
	})
}

// ── Sequences y catálogos ───────────────────────────────────────────────────

type sequenceRepo struct{ v *view }

func (r *sequenceRepo) Next(_ context.Context, name string) (int64, error) {
	var n int64
	err := r.v.write(func(st *state) error {
		st.sequences[name]++
		n = st.sequences[name]
		return nil
	})
	return n, err
}

type productRepo struct{ v *view }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *p
		st.products[p.ID] = &c
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.v.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			c := *p
			out = &c
		}
	})
	return out, nil
}

type locationRepo struct{ v *view }

func (r *locationRepo) Create(_ context.Context, l *entity.Location) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.locations[l.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *l
		st.locations[l.ID] = &c
		return nil
	})
}

func (r *locationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	r.v.read(func(st *state) {
		if l, ok := st.locations[id]; ok {
			c := *l
			out = &c
		}
	})
	return out, nil
}

type partyRepo struct{ v *view }

func (r *partyRepo) Create(_ context.Context, p *entity.Party) error {
	return r.v.write(func(st *state) error {
		key := partyKey(p.Type, p.ID)
		if _, ok := st.parties[key]; ok {
			return domain.ErrDuplicate
		}
		c := *p
		st.parties[key] = &c
		return nil
	})
}

func (r *partyRepo) GetByID(_ context.Context, partyType, id string) (*entity.Party, error) {
	var out *entity.Party
	r.v.read(func(st *state) {
		if p, ok := st.parties[partyKey(partyType, id)]; ok {
			c := *p
			out = &c
		}
	})
	return out, nil
}
