// Package closing contiene las reglas puras del cierre de caja: tolerancia de diferencias,
// justificaciones, transiciones de estado y formato del consecutivo.
package closing

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// MinJustificationLen mínimo de caracteres de cualquier justificación.
const MinJustificationLen = 10

// Policy parámetros de una serie de cierre. La tolerancia es configuración, no un camino de código distinto.
type Policy struct {
	Series    string
	Ledger    string
	Prefix    string
	Tolerance decimal.Decimal
}

// RequiresJustification indica si la diferencia supera la tolerancia.
func RequiresJustification(variance, tolerance decimal.Decimal) bool {
	return variance.Abs().GreaterThan(tolerance)
}

// ValidateJustification exige al menos MinJustificationLen caracteres (sin contar espacios en los extremos).
func ValidateJustification(field, text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinJustificationLen {
		return domain.Invalid(domain.ErrJustificationRequired, field,
			"la justificación debe tener al menos %d caracteres", MinJustificationLen)
	}
	return nil
}

// NormalizeJustification quita los espacios de los extremos; una justificación solo de espacios
// se guarda vacía.
func NormalizeJustification(text string) string {
	return strings.TrimSpace(text)
}

// CheckVariance aplica la política de la serie a una diferencia. Una justificación enviada
// siempre debe cumplir el mínimo, aunque la diferencia esté dentro de la tolerancia.
func (p Policy) CheckVariance(variance decimal.Decimal, justification string) error {
	if RequiresJustification(variance, p.Tolerance) || strings.TrimSpace(justification) != "" {
		if err := ValidateJustification("variance_justification", justification); err != nil {
			if strings.TrimSpace(justification) == "" {
				return domain.Invalid(domain.ErrJustificationRequired, "variance_justification",
					"la diferencia de %s supera la tolerancia de %s y requiere justificación de al menos %d caracteres",
					variance.StringFixed(2), p.Tolerance.StringFixed(2), MinJustificationLen)
			}
			return err
		}
	}
	return nil
}

// FormatNumber arma el consecutivo legible: prefijo + contador con ceros a la izquierda.
func FormatNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%06d", prefix, seq)
}

// CanReopen solo un cierre vigente puede reabrirse.
func CanReopen(state string) error {
	if state != entity.ClosingStateClosed {
		return domain.Invalid(domain.ErrConflict, "state", "solo un cierre vigente puede reabrirse (estado actual: %s)", state)
	}
	return nil
}

// CanDelete un cierre vigente o reabierto puede eliminarse.
func CanDelete(state string) error {
	switch state {
	case entity.ClosingStateClosed, entity.ClosingStateReopened:
		return nil
	}
	return domain.Invalid(domain.ErrConflict, "state", "estado de cierre inválido: %s", state)
}

// Variance contado menos calculado.
func Variance(counted, computed decimal.Decimal) decimal.Decimal {
	return counted.Sub(computed)
}
