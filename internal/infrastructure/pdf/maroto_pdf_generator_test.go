package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$80.000", formatMoney(decimal.NewFromInt(80000)))
	assert.Equal(t, "$1.250.000", formatMoney(decimal.NewFromInt(1250000)))
	assert.Equal(t, "-$1.000", formatMoney(decimal.NewFromInt(-1000)))
	assert.Equal(t, "$0", formatMoney(decimal.Zero))
}

func TestSeriesLabel(t *testing.T) {
	assert.Equal(t, "Clínica", seriesLabel(entity.SeriesClinic))
	assert.Equal(t, "Medias", seriesLabel(entity.SeriesMedias))
	assert.Equal(t, "Efectivo", seriesLabel("efectivo"))
}

func TestGenerateClosingPDF(t *testing.T) {
	reopened := time.Date(2026, 1, 30, 8, 0, 0, 0, time.UTC)
	c := &entity.Closing{
		ID:            "c-1",
		Number:        "CM-000001",
		Series:        entity.SeriesMedias,
		PeriodKey:     "2026-01-29",
		ComputedTotal: decimal.NewFromInt(120000),
		CountedTotal:  decimal.NewFromInt(119000),
		Variance:      decimal.NewFromInt(-1000),
		Breakdown: map[string]decimal.Decimal{
			"efectivo": decimal.NewFromInt(60000),
			"tarjeta":  decimal.NewFromInt(60000),
		},
		MovementCount:         2,
		VarianceJustification: "Se entregó cambio de más en una venta",
		State:                 entity.ClosingStateReopened,
		ClosedBy:              "u-secretaria",
		ClosedAt:              time.Date(2026, 1, 29, 19, 0, 0, 0, time.UTC),
		ReopenedBy:            "u-admin",
		ReopenedAt:            &reopened,
		ReopenJustification:   "Revisión de una venta duplicada",
	}

	out, err := NewMarotoPDFGenerator("Clínica Vascular").GenerateClosingPDF(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "debe ser un documento PDF")
}
