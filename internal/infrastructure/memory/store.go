// Package memory implementa los repositorios en memoria para desarrollo y tests.
// Un único mutex serializa las transacciones; cada Run trabaja sobre una copia del
// estado que solo reemplaza al original si fn termina sin error.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/internal/application/ports"
	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

// Store almacenamiento en memoria que cumple ports.TxRunner.
type Store struct {
	mu        sync.RWMutex
	state     *state
	txTimeout time.Duration
}

// Option configura el Store.
type Option func(*Store)

// WithTxTimeout tope de duración de cada transacción.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Store) { s.txTimeout = d }
}

// New crea un store vacío.
func New(opts ...Option) *Store {
	s := &Store{state: newState()}
	for _, o := range opts {
		o(s)
	}
	return s
}

type state struct {
	units       map[string]*entity.StockUnit
	movements   []*entity.StockMovement
	entries     []*entity.PartyLedgerEntry
	balances    map[string]decimal.Decimal
	sales       map[string]*entity.Sale
	salesByKey  map[string]string
	orders      map[string]*entity.PurchaseOrder
	sequences   map[string]int64
	products    map[string]*entity.Product
	locations   map[string]*entity.Location
	parties     map[string]*entity.Party
	movementSeq int64
	entrySeq    int64
}

func newState() *state {
	return &state{
		units:      map[string]*entity.StockUnit{},
		balances:   map[string]decimal.Decimal{},
		sales:      map[string]*entity.Sale{},
		salesByKey: map[string]string{},
		orders:     map[string]*entity.PurchaseOrder{},
		sequences:  map[string]int64{},
		products:   map[string]*entity.Product{},
		locations:  map[string]*entity.Location{},
		parties:    map[string]*entity.Party{},
	}
}

// clone copia profunda de lo mutable. Movimientos y asientos son inmutables:
// basta con copiar el slice.
func (st *state) clone() *state {
	c := &state{
		units:       make(map[string]*entity.StockUnit, len(st.units)),
		movements:   append([]*entity.StockMovement(nil), st.movements...),
		entries:     append([]*entity.PartyLedgerEntry(nil), st.entries...),
		balances:    make(map[string]decimal.Decimal, len(st.balances)),
		sales:       make(map[string]*entity.Sale, len(st.sales)),
		salesByKey:  make(map[string]string, len(st.salesByKey)),
		orders:      make(map[string]*entity.PurchaseOrder, len(st.orders)),
		sequences:   make(map[string]int64, len(st.sequences)),
		movementSeq: st.movementSeq,
		entrySeq:    st.entrySeq,
	}
	for k, v := range st.units {
		c.units[k] = v.Clone()
	}
	for k, v := range st.balances {
		c.balances[k] = v
	}
	for k, v := range st.sales {
		c.sales[k] = v.Clone()
	}
	for k, v := range st.salesByKey {
		c.salesByKey[k] = v
	}
	for k, v := range st.orders {
		c.orders[k] = v.Clone()
	}
	for k, v := range st.sequences {
		c.sequences[k] = v
	}
	// catálogos: los valores no se mutan in situ, basta copiar el mapa
	c.products = make(map[string]*entity.Product, len(st.products))
	for k, v := range st.products {
		c.products[k] = v
	}
	c.locations = make(map[string]*entity.Location, len(st.locations))
	for k, v := range st.locations {
		c.locations[k] = v
	}
	c.parties = make(map[string]*entity.Party, len(st.parties))
	for k, v := range st.parties {
		c.parties[k] = v
	}
	return c
}

// Run ejecuta fn con repos sobre una copia del estado y la publica solo si fn devuelve nil.
// Un panic en fn deja el estado intacto.
// Los repos de Read() no deben usarse dentro de fn: el mutex ya está tomado.
func (s *Store) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(reposFor(&view{st: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	s.state = work
	return nil
}

// Read repos fuera de transacción (lecturas con RLock por llamada).
func (s *Store) Read() ports.Repos {
	return reposFor(&view{s: s})
}

func reposFor(v *view) ports.Repos {
	return ports.Repos{
		Units:     &stockUnitRepo{v},
		Movements: &movementRepo{v},
		Ledger:    &partyLedgerRepo{v},
		Sales:     &saleRepo{v},
		Orders:    &purchaseOrderRepo{v},
		Sequences: &sequenceRepo{v},
		Products:  &productRepo{v},
		Locations: &locationRepo{v},
		Parties:   &partyRepo{v},
	}
}

// view da acceso al estado: dentro de Run apunta a la copia de trabajo;
// fuera, toma el mutex en cada operación.
type view struct {
	s  *Store
	st *state
}

func (v *view) read(fn func(st *state)) {
	if v.st != nil {
		fn(v.st)
		return
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	fn(v.s.state)
}

func (v *view) write(fn func(st *state) error) error {
	if v.st != nil {
		return fn(v.st)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.state)
}

func partyKey(partyType, partyID string) string { return partyType + "/" + partyID }
