// Package pdf genera el comprobante imprimible de una orden confirmada.
//
// Layout (ticket A5):
//
//	┌───────────────────────────────────────────┐
//	│  ORDEN #1042          │  Mesa 4 / Fecha   │
//	│  Comensal + método de pago                │
//	│  ───────────────────────────────────────  │
//	│  Cant | Descripción         | Importe     │
//	│  ───────────────────────────────────────  │
//	│  Subtotal / Servicio 10% / TOTAL          │
//	│  QR con código de recolección + notas     │
//	└───────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

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

	"github.com/jhoicas/mesa-api/internal/application/ports"
	"github.com/jhoicas/mesa-api/internal/domain/entity"
	"github.com/jhoicas/mesa-api/pkg/money"
)

var _ ports.ReceiptPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 176, Green: 58, Blue: 46}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa ports.ReceiptPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	restaurant string
}

// NewMarotoPDFGenerator construye el generador; restaurant es el encabezado del ticket.
func NewMarotoPDFGenerator(restaurant string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{restaurant: restaurant}
}

// GenerateReceiptPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateReceiptPDF(_ context.Context, r *entity.Receipt) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("pdf: comprobante nulo")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Orden #%d", r.OrderNumber), true).
		WithAuthor(g.restaurant, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.restaurant, r))
	m.AddRows(customerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.4}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableLineRows(r.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(r))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRows(r)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(restaurant string, r *entity.Receipt) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(nonEmpty(restaurant, "Restaurante"), props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New("Orden #"+strconv.FormatInt(r.OrderNumber, 10), props.Text{
				Style: fontstyle.Bold, Size: 11, Top: 8,
			}),
		),
		col.New(5).Add(
			text.New("Mesa "+r.TableID, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New(r.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func customerRow(r *entity.Receipt) core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New(nonEmpty(r.UserName, "—"), props.Text{Style: fontstyle.Bold, Size: 9, Top: 1}),
			text.New("Método de pago: "+entity.PaymentMethodLabel(r.PaymentMethod), props.Text{
				Size: 8, Top: 5, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 1.5, Left: 1, Right: 1,
		}))
	}
	return row.New(7).Add(
		h("Cant.", 2, align.Center),
		h("Descripción", 7, align.Left),
		h("Importe", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableLineRows(lines []entity.ReceiptLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		name := l.Name
		if l.IsOffer {
			name = "Promo: " + name
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(strconv.Itoa(l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(7).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(money.Format(l.Amount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(r *entity.Receipt) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(20).Add(
		col.New(4),
		col.New(4).Add(
			label("Subtotal:", 1),
			label("Servicio (10%):", 6),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Right: 2, Top: 12}),
		),
		col.New(4).Add(
			value(money.Format(r.Subtotal), 1),
			value(money.Format(r.ServiceCharge), 6),
			text.New(money.Format(r.Total), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Right: 1, Top: 12}),
		),
	)
}

// footerRows: QR con el código de recolección y notas del pedido.
func footerRows(r *entity.Receipt) []core.Row {
	var rows []core.Row
	if r.TakeAwayCode != "" {
		rows = append(rows, row.New(40).Add(
			col.New(5).Add(code.NewQr(r.TakeAwayCode, props.Rect{Percent: 95, Center: true})),
			col.New(7).Add(
				text.New("Código de recolección", props.Text{Size: 8, Top: 6, Left: 3, Color: colorGray}),
				text.New(r.TakeAwayCode, props.Text{Style: fontstyle.Bold, Size: 16, Top: 12, Left: 3, Color: colorPrimary}),
				text.New("Presenta este código al recoger tu pedido.", props.Text{Size: 7, Top: 24, Left: 3, Color: colorGray}),
			),
		))
	}
	if r.Notes != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Notas: "+r.Notes, props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
