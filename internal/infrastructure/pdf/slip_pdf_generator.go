// Package pdf genera la hoja de recolección de un envío interno.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Código del envío + referencia │ Estado              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Origen | Destino | Cant. | Escan. | UdM   │
//	│         código de barras Code128 del producto bajo cada fila │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: Total de líneas y firma del operario                │
//	└─────────────────────────────────────────────────────────────┘
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

	"github.com/jhoicas/Inventario-shipments/internal/application/fulfillment"
	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ fulfillment.SlipGenerator = (*SlipGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// SlipGenerator implementa fulfillment.SlipGenerator usando Maroto v2.
type SlipGenerator struct {
	author string
}

// NewSlipGenerator construye el generador; author aparece en los metadatos del PDF.
func NewSlipGenerator(author string) *SlipGenerator { return &SlipGenerator{author: author} }

// GenerateSlip genera el PDF y devuelve sus bytes.
func (g *SlipGenerator) GenerateSlip(_ context.Context, s *entity.Shipment) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Hoja de recolección "+s.Code, true).
		WithAuthor(nonEmpty(g.author, "Inventario"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(s))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range moveRows(s.Moves) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(footerRow(s))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(s *entity.Shipment) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("HOJA DE RECOLECCIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(s.Code, fmt.Sprintf("#%d", s.ID)), props.Text{
				Style: fontstyle.Bold, Size: 13, Top: 6,
			}),
		),
		col.New(4).Add(
			text.New("Referencia: "+nonEmpty(s.Reference, "—"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Estado: "+string(s.State), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 8,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 4, align.Left),
		h("Origen", 2, align.Left),
		h("Destino", 2, align.Left),
		h("Cant.", 1, align.Right),
		h("Escan.", 2, align.Right),
		h("UdM", 1, align.Center),
	)
}

// moveRows una fila por línea y, si el producto tiene código, su código de barras.
func moveRows(moves []*entity.Move) []core.Row {
	out := make([]core.Row, 0, len(moves)*2)
	for _, mv := range moves {
		name := mv.ProductName
		if mv.IsDone() {
			name = "[x] " + name
		}
		out = append(out, row.New(7).Add(
			col.New(4).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(mv.FromLocation, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(mv.ToLocation, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(mv.Quantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(mv.ScannedQuantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(mv.UOM, props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
		if mv.ProductCode != "" {
			out = append(out, row.New(12).Add(
				col.New(4).Add(code.NewBar(mv.ProductCode, props.Barcode{Percent: 90, Left: 1})),
				col.New(8).Add(text.New(mv.ProductCode, props.Text{Size: 7, Top: 4, Left: 2, Color: colorGray})),
			))
		}
	}
	return out
}

func footerRow(s *entity.Shipment) core.Row {
	done := 0
	for _, mv := range s.Moves {
		if mv.IsDone() {
			done++
		}
	}
	return row.New(20).Add(
		col.New(6).Add(
			text.New(fmt.Sprintf("Líneas: %d   |   Completas: %d", len(s.Moves), done), props.Text{
				Size: 8, Top: 3, Color: colorGray,
			}),
		),
		col.New(6).Add(
			text.New("Firma del operario: ______________________", props.Text{
				Size: 8, Align: align.Right, Top: 12,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
