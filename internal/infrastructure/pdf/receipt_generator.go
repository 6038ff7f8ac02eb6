// Package pdf genera el recibo impreso de una venta de mostrador.
//
// Layout de la página A5:
//
//	┌───────────────────────────────────────────────┐
//	│  HEADER: N° Recibo + N° Venta  │  Fecha        │
//	│  CLIENTE / PAGO                                │
//	│  ───────────────────────────────────────────── │
//	│  TABLA: SKU | Producto | Rollo | Cant | Total  │
//	│  ───────────────────────────────────────────── │
//	│  TOTALES: Subtotal / Descuentos / IVA / TOTAL  │
//	│  FOOTER: código de barras del código de venta  │
//	└───────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/internal/application/sales"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var _ sales.ReceiptPDFGenerator = (*ReceiptGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// ReceiptGenerator implementa sales.ReceiptPDFGenerator usando Maroto v2.
type ReceiptGenerator struct {
	storeName string
}

// NewReceiptGenerator construye el generador; storeName encabeza el recibo.
func NewReceiptGenerator(storeName string) *ReceiptGenerator {
	return &ReceiptGenerator{storeName: nonEmpty(storeName, "RollPOS")}
}

// GenerateReceiptPDF genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) GenerateReceiptPDF(
	_ context.Context,
	sale *entity.Sale,
	customer *entity.Party,
	lines []sales.ReceiptLine,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Recibo "+sale.ReceiptNumber, true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.storeName, sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(sale, customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(sale))

	if sale.ScanCode != "" {
		m.AddRows(line.NewRow(3))
		m.AddRows(barcodeRow(sale.ScanCode))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar recibo: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(storeName string, sale *entity.Sale) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(storeName, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New("Venta: "+sale.SaleNumber, props.Text{
				Size: 8, Top: 8, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("RECIBO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(sale.ReceiptNumber, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 5,
			}),
			text.New("Fecha: "+sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 7, Align: align.Right, Top: 11, Color: colorGray,
			}),
		),
	)
}

func customerRow(sale *entity.Sale, customer *entity.Party) core.Row {
	name := "Cliente de mostrador"
	if customer != nil {
		name = customer.Name
	}
	status := ""
	if sale.Status != entity.SaleStatusCompleted {
		status = "   |   Estado: " + sale.Status
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 9, Top: 1}),
			text.New(fmt.Sprintf("Pago: %s   |   Recibido: $%s   |   Cambio: $%s%s",
				sale.PaymentMethod,
				money(sale.AmountReceived),
				money(sale.Change),
				status,
			), props.Text{Size: 7, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(7).Add(
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Rollo", 2, align.Left),
		h("Cant.", 2, align.Right),
		h("Total", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableDetailRows(lines []sales.ReceiptLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(l.SKU, props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.ProductName, props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(2).Add(text.New(l.UnitNumber, props.Text{Size: 7, Top: 1, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New(
				l.Quantity.String()+" "+l.Unit,
				props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"$"+money(l.LineTotal),
				props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

func totalsRow(sale *entity.Sale) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 8, Align: align.Right, Right: 1})
	}
	discounts := sale.Discount.Add(sale.BargainDiscount)

	return row.New(24).Add(
		col.New(4),
		col.New(4).Add(
			label("Subtotal:"),
			label("Descuentos:"),
			label(fmt.Sprintf("IVA (%s%%):", sale.TaxRate.Mul(decimal.NewFromInt(100)).String())),
			text.New("TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 12,
			}),
		),
		col.New(4).Add(
			value("$"+money(sale.Subtotal)),
			value("-$"+money(discounts)),
			value("$"+money(sale.Tax)),
			text.New("$"+money(sale.GrandTotal), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 12,
			}),
		),
	)
}

func barcodeRow(scanCode string) core.Row {
	return row.New(18).Add(
		col.New(3),
		col.New(6).Add(code.NewBar(scanCode, props.Barcode{Percent: 90, Center: true})),
		col.New(3),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func money(d decimal.Decimal) string {
	return formatMoney(d.StringFixed(0))
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	sign := ""
	if len(s) > 0 && s[0] == '-' {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
