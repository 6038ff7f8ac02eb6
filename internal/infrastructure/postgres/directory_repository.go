package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	"github.com/jhoicas/rollpos-api/internal/domain/repository"
)

var (
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.PartyRepository    = (*PartyRepo)(nil)
)

// LocationRepo ubicaciones físicas sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Create persiste una ubicación.
func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO locations (id, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.Name, l.Address, l.CreatedAt, l.UpdatedAt)
	return wrap("insert location", err)
}

// GetByID obtiene una ubicación; (nil, nil) si no existe.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	var l entity.Location
	err := r.q.QueryRow(ctx, `
		SELECT id, name, address, created_at, updated_at FROM locations WHERE id = $1`, id,
	).Scan(&l.ID, &l.Name, &l.Address, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get location", err)
	}
	return &l, nil
}

// PartyRepo directorio de terceros sobre PostgreSQL.
type PartyRepo struct {
	q Querier
}

// NewPartyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

// Create persiste un tercero.
func (r *PartyRepo) Create(ctx context.Context, p *entity.Party) error {
	_, err := r.q.Exec(ctx, `INSERT INTO parties (party_type, id, name) VALUES ($1, $2, $3)`, p.Type, p.ID, p.Name)
	return wrap("insert party", err)
}

// GetByID obtiene un tercero por tipo e id; (nil, nil) si no existe.
func (r *PartyRepo) GetByID(ctx context.Context, partyType, id string) (*entity.Party, error) {
	var p entity.Party
	err := r.q.QueryRow(ctx, `
		SELECT id, party_type, name FROM parties WHERE party_type = $1 AND id = $2`, partyType, id,
	).Scan(&p.ID, &p.Type, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get party", err)
	}
	return &p, nil
}
