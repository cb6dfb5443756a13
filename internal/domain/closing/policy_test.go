package closing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/closing"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

func TestRequiresJustification(t *testing.T) {
	d := decimal.NewFromInt
	assert.False(t, closing.RequiresJustification(d(0), d(0)))
	assert.True(t, closing.RequiresJustification(d(-1), d(0)), "tolerancia cero: cualquier diferencia")
	assert.False(t, closing.RequiresJustification(d(500), d(1000)))
	assert.False(t, closing.RequiresJustification(d(-1000), d(1000)), "el límite es inclusivo")
	assert.True(t, closing.RequiresJustification(d(-1001), d(1000)))
}

func TestCheckVariance_MediasToleranciaCero(t *testing.T) {
	p := closing.Policy{Series: entity.SeriesMedias, Tolerance: decimal.Zero}
	variance := closing.Variance(decimal.NewFromInt(119000), decimal.NewFromInt(120000))
	assert.True(t, variance.Equal(decimal.NewFromInt(-1000)))

	err := p.CheckVariance(variance, "")
	assert.ErrorIs(t, err, domain.ErrJustificationRequired)
	assert.Contains(t, domain.Reason(err), "10 caracteres")

	assert.NoError(t, p.CheckVariance(variance, "conteo manual con faltante de una media"))
}

func TestCheckVariance_ClinicaDentroDeTolerancia(t *testing.T) {
	p := closing.Policy{Series: entity.SeriesClinic, Tolerance: decimal.NewFromInt(1000)}
	assert.NoError(t, p.CheckVariance(decimal.NewFromInt(-800), ""))
	assert.ErrorIs(t, p.CheckVariance(decimal.NewFromInt(-800), "corto"), domain.ErrJustificationRequired,
		"una justificación enviada debe cumplir el mínimo")
	assert.ErrorIs(t, p.CheckVariance(decimal.NewFromInt(2000), ""), domain.ErrJustificationRequired)
}

func TestNormalizeJustification(t *testing.T) {
	assert.Equal(t, "", closing.NormalizeJustification(" \t\n "))
	assert.Equal(t, "faltó un billete", closing.NormalizeJustification("  faltó un billete  "))
}

func TestValidateJustification_CuentaRunas(t *testing.T) {
	assert.NoError(t, closing.ValidateJustification("j", "corrección"), "10 runas con tilde")
	assert.ErrorIs(t, closing.ValidateJustification("j", "   nueve c   "), domain.ErrJustificationRequired)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "CC-000001", closing.FormatNumber("CC", 1))
	assert.Equal(t, "CM-001234", closing.FormatNumber("CM", 1234))
}

func TestTransiciones(t *testing.T) {
	assert.NoError(t, closing.CanReopen(entity.ClosingStateClosed))
	assert.ErrorIs(t, closing.CanReopen(entity.ClosingStateReopened), domain.ErrConflict)
	assert.NoError(t, closing.CanDelete(entity.ClosingStateClosed))
	assert.NoError(t, closing.CanDelete(entity.ClosingStateReopened))
	assert.ErrorIs(t, closing.CanDelete(entity.ClosingStateOpen), domain.ErrConflict)
}
