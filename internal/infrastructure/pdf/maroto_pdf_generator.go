// Package pdf genera el reporte imprimible de un cierre de caja.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Clínica + serie       │  N° Cierre + Fecha         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ESTADO: cerrado por / reabierto por                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Categoría | Total                                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Calculado / Contado / DIFERENCIA                  │
//	│  JUSTIFICACIÓN (si hay diferencia)                          │
//	│  FIRMAS                                                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"sort"

	maroto "github.com/johnfercher/maroto/v2"
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
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Clinica-api/internal/application/ports"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 94, Blue: 110}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var locale = language.MustParse("es-CO")

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ports.ClosingReportGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa ports.ClosingReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	clinicName string
}

// NewMarotoPDFGenerator construye el generador con el nombre que encabeza el reporte.
func NewMarotoPDFGenerator(clinicName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{clinicName: clinicName}
}

// GenerateClosingPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateClosingPDF(_ context.Context, c *entity.Closing) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Cierre de caja "+c.Number, true).
		WithAuthor(g.clinicName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.clinicName, c))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(stateRow(c))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(breakdownRows(c.Breakdown)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(c))
	if c.VarianceJustification != "" {
		m.AddRows(noteRow("JUSTIFICACIÓN DE LA DIFERENCIA", c.VarianceJustification))
	}
	if c.ReopenJustification != "" {
		m.AddRows(noteRow("MOTIVO DE LA REAPERTURA", c.ReopenJustification))
	}
	m.AddRows(line.NewRow(12))
	m.AddRows(signaturesRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(clinicName string, c *entity.Closing) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(clinicName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Caja "+seriesLabel(c.Series), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("CIERRE DE CAJA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(c.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Periodo: "+c.PeriodKey, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func stateRow(c *entity.Closing) core.Row {
	detail := fmt.Sprintf("Cerrado por %s el %s   |   Movimientos: %d",
		c.ClosedBy, c.ClosedAt.Format("02/01/2006 15:04"), c.MovementCount)
	if c.ReopenedAt != nil {
		detail += fmt.Sprintf("\nReabierto por %s el %s", c.ReopenedBy, c.ReopenedAt.Format("02/01/2006 15:04"))
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("ESTADO: "+stateLabel(c.State), props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(detail, props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Categoría", 8, align.Left),
		h("Total", 4, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// breakdownRows una fila por categoría, en orden alfabético para que el reporte sea estable.
func breakdownRows(breakdown map[string]decimal.Decimal) []core.Row {
	cats := make([]string, 0, len(breakdown))
	for k := range breakdown {
		cats = append(cats, k)
	}
	sort.Strings(cats)

	rows := make([]core.Row, 0, len(cats))
	for _, cat := range cats {
		rows = append(rows, row.New(7).Add(
			col.New(8).Add(text.New(seriesLabel(cat), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(formatMoney(breakdown[cat]), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	if len(rows) == 0 {
		rows = append(rows, row.New(7).Add(col.New(12).Add(
			text.New("Sin movimientos en el periodo", props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray}),
		)))
	}
	return rows
}

func totalsRow(c *entity.Closing) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	varianceColor := colorPrimary
	if !c.Variance.IsZero() {
		varianceColor = colorAlert
	}
	return row.New(20).Add(
		col.New(4),
		col.New(4).Add(
			label("Total calculado:"),
			text.New("Total contado:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 6}),
			text.New("DIFERENCIA:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: 12, Color: varianceColor}),
		),
		col.New(4).Add(
			text.New(formatMoney(c.ComputedTotal), props.Text{Size: 9, Align: align.Right, Right: 1}),
			text.New(formatMoney(c.CountedTotal), props.Text{Size: 9, Align: align.Right, Right: 1, Top: 6}),
			text.New(formatMoney(c.Variance), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 1, Top: 12, Color: varianceColor}),
		),
	)
}

func noteRow(title, body string) core.Row {
	return row.New(16).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
		text.New(body, props.Text{Size: 8, Top: 7}),
	))
}

func signaturesRow() core.Row {
	sig := func(label string) core.Col {
		return col.New(6).Add(
			text.New("______________________________", props.Text{Size: 9, Align: align.Center}),
			text.New(label, props.Text{Size: 8, Align: align.Center, Top: 5, Color: colorGray}),
		)
	}
	return row.New(14).Add(sig("Responsable de caja"), sig("Administración"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney formatea pesos colombianos sin decimales: 1250000 → "$1.250.000", -1000 → "-$1.000".
func formatMoney(d decimal.Decimal) string {
	n := d.Round(0).IntPart()
	p := message.NewPrinter(locale)
	if n < 0 {
		return p.Sprintf("-$%d", -n)
	}
	return p.Sprintf("$%d", n)
}

func seriesLabel(s string) string {
	if s == entity.SeriesClinic {
		return "Clínica"
	}
	return cases.Title(language.Spanish).String(s)
}

func stateLabel(state string) string {
	switch state {
	case entity.ClosingStateClosed:
		return "CERRADO"
	case entity.ClosingStateReopened:
		return "REABIERTO"
	}
	return state
}
