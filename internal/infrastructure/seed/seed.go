// Package seed carga catálogo y rollos de apertura desde un archivo (yaml, json o toml).
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	appinv "github.com/jhoicas/rollpos-api/internal/application/inventory"
	"github.com/jhoicas/rollpos-api/internal/application/ports"
	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	"github.com/jhoicas/rollpos-api/pkg/logger"
)

// Catalog contenido del archivo. Cantidades y precios como texto para no perder precisión.
type Catalog struct {
	Products  []Product  `mapstructure:"products"`
	Locations []Location `mapstructure:"locations"`
	Parties   []Party    `mapstructure:"parties"`
	Rolls     []Roll     `mapstructure:"rolls"`
}

type Product struct {
	ID            string `mapstructure:"id"`
	SKU           string `mapstructure:"sku"`
	Name          string `mapstructure:"name"`
	Unit          string `mapstructure:"unit"`
	Price         string `mapstructure:"price"`
	MinPrice      string `mapstructure:"min_price"`
	MaxPrice      string `mapstructure:"max_price"`
	DefaultMinCut string `mapstructure:"default_min_cut"`
}

type Location struct {
	ID      string `mapstructure:"id"`
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
}

type Party struct {
	ID   string `mapstructure:"id"`
	Type string `mapstructure:"type"`
	Name string `mapstructure:"name"`
}

// Roll rollo de apertura; entra con movimiento IN de referencia SEED.
type Roll struct {
	ProductID    string `mapstructure:"product_id"`
	SupplierID   string `mapstructure:"supplier_id"`
	LocationID   string `mapstructure:"location_id"`
	BatchCode    string `mapstructure:"batch_code"`
	ScanCode     string `mapstructure:"scan_code"`
	Quantity     string `mapstructure:"quantity"`
	UnitCost     string `mapstructure:"unit_cost"`
	MinCutLength string `mapstructure:"min_cut_length"`
}

// Result conteo de lo creado y lo omitido por existir ya.
type Result struct {
	Products, Locations, Parties, Rolls int
	Skipped                             int
}

// Load lee el archivo; el formato se deduce de la extensión.
func Load(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("seed: leer %s: %w", path, err)
	}
	var cat Catalog
	if err := v.Unmarshal(&cat); err != nil {
		return nil, fmt.Errorf("seed: decodificar %s: %w", path, err)
	}
	return &cat, nil
}

// Apply crea el catálogo en una transacción y luego cada rollo en la suya.
// Es idempotente para catálogo; un rollo con scan_code repetido se omite.
func Apply(ctx context.Context, tx ports.TxRunner, inv *appinv.Service, cat *Catalog, userID string, log *logger.Logger) (Result, error) {
	var res Result
	now := time.Now()
	err := tx.Run(ctx, func(r ports.Repos) error {
		for _, p := range cat.Products {
			existing, err := r.Products.GetByID(ctx, p.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				res.Skipped++
				continue
			}
			prod, err := p.entity(now)
			if err != nil {
				return err
			}
			if err := r.Products.Create(ctx, prod); err != nil {
				return err
			}
			res.Products++
		}
		for _, l := range cat.Locations {
			existing, err := r.Locations.GetByID(ctx, l.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				res.Skipped++
				continue
			}
			if err := r.Locations.Create(ctx, &entity.Location{ID: l.ID, Name: l.Name, Address: l.Address, CreatedAt: now, UpdatedAt: now}); err != nil {
				return err
			}
			res.Locations++
		}
		for _, p := range cat.Parties {
			existing, err := r.Parties.GetByID(ctx, p.Type, p.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				res.Skipped++
				continue
			}
			if err := r.Parties.Create(ctx, &entity.Party{ID: p.ID, Type: p.Type, Name: p.Name}); err != nil {
				return err
			}
			res.Parties++
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("seed: catálogo: %w", err)
	}

	for i, roll := range cat.Rolls {
		in, err := roll.input()
		if err != nil {
			return res, fmt.Errorf("seed: rollo %d: %w", i, err)
		}
		unit, err := inv.SeedUnit(ctx, userID, in)
		if errors.Is(err, domain.ErrDuplicate) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed: rollo %d: %w", i, err)
		}
		log.Debug().Str("unit", unit.UnitNumber).Str("product_id", unit.ProductID).Msg("rollo de apertura creado")
		res.Rolls++
	}
	return res, nil
}

func (p Product) entity(now time.Time) (*entity.Product, error) {
	prod := &entity.Product{ID: p.ID, SKU: p.SKU, Name: p.Name, Unit: p.Unit, CreatedAt: now, UpdatedAt: now}
	if prod.Unit == "" {
		prod.Unit = "m"
	}
	var err error
	for _, f := range []struct {
		dst   *decimal.Decimal
		src   string
		scale int32
	}{
		{&prod.Price, p.Price, domain.MoneyScale},
		{&prod.MinPrice, p.MinPrice, domain.MoneyScale},
		{&prod.MaxPrice, p.MaxPrice, domain.MoneyScale},
		{&prod.DefaultMinCut, p.DefaultMinCut, domain.QuantityScale},
	} {
		if *f.dst, err = parseDecimal(f.src); err != nil {
			return nil, fmt.Errorf("producto %s: %w", p.ID, err)
		}
		if !domain.FitsScale(*f.dst, f.scale) {
			return nil, fmt.Errorf("producto %s: %w: %q admite hasta %d decimales", p.ID, domain.ErrInvalidInput, f.src, f.scale)
		}
	}
	return prod, nil
}

func (r Roll) input() (appinv.AllocateInput, error) {
	qty, err := parseDecimal(r.Quantity)
	if err != nil {
		return appinv.AllocateInput{}, err
	}
	cost, err := parseDecimal(r.UnitCost)
	if err != nil {
		return appinv.AllocateInput{}, err
	}
	in := appinv.AllocateInput{
		ProductID:  r.ProductID,
		SupplierID: r.SupplierID,
		LocationID: r.LocationID,
		BatchCode:  r.BatchCode,
		ScanCode:   r.ScanCode,
		Quantity:   qty,
		UnitCost:   cost,
	}
	if r.MinCutLength != "" {
		mc, err := parseDecimal(r.MinCutLength)
		if err != nil {
			return appinv.AllocateInput{}, err
		}
		in.MinCutLength = &mc
	}
	return in, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: número %q", domain.ErrInvalidInput, s)
	}
	return d, nil
}
