// Package ledger contiene las reglas puras del libro de movimientos: consistencia de signo
// por tipo y el cálculo de totales como suma de los movimientos.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

type sign int

const (
	positive sign = iota + 1
	negative
	either
)

// Signo esperado por tipo en los libros de caja: lo que entra a caja es positivo.
var cashSigns = map[string]sign{
	entity.KindEntrada:    positive,
	entity.KindVenta:      positive,
	entity.KindSalida:     negative,
	entity.KindCompra:     negative,
	entity.KindDevolucion: negative,
	entity.KindAjuste:     either,
}

// Signo esperado por tipo en el libro de inventario: lo que entra a bodega es positivo.
var inventorySigns = map[string]sign{
	entity.KindEntrada:    positive,
	entity.KindCompra:     positive,
	entity.KindDevolucion: positive,
	entity.KindSalida:     negative,
	entity.KindVenta:      negative,
	entity.KindAjuste:     either,
}

// ValidateMovement verifica que el libro y el tipo existan y que el signo del monto corresponda al tipo.
func ValidateMovement(ledgerName, kind string, amount decimal.Decimal) error {
	var signs map[string]sign
	switch {
	case entity.IsCashLedger(ledgerName):
		signs = cashSigns
	case ledgerName == entity.LedgerMediasInventory:
		signs = inventorySigns
	default:
		return domain.Invalid(domain.ErrInvalidInput, "ledger", "libro desconocido %q", ledgerName)
	}
	want, ok := signs[kind]
	if !ok {
		return domain.Invalid(domain.ErrInvalidInput, "kind", "tipo de movimiento desconocido %q", kind)
	}
	if amount.IsZero() {
		return domain.Invalid(domain.ErrInvalidAmount, "amount", "el monto no puede ser cero")
	}
	switch {
	case want == positive && amount.IsNegative():
		return domain.Invalid(domain.ErrInvalidAmount, "amount", "un movimiento de tipo %s debe aumentar el saldo", kind)
	case want == negative && amount.IsPositive():
		return domain.Invalid(domain.ErrInvalidAmount, "amount", "un movimiento de tipo %s debe disminuir el saldo", kind)
	}
	return nil
}

// CategoryOf devuelve la categoría con la que el movimiento suma en los totales.
func CategoryOf(m *entity.Movement) string {
	if m.Category != "" {
		return m.Category
	}
	return m.Kind
}

// Fold suma los movimientos con CreatedAt <= asOf. No depende del orden de entrada.
func Fold(ledgerName, key string, movements []*entity.Movement, asOf time.Time) entity.Aggregate {
	agg := entity.Aggregate{
		Ledger:           ledgerName,
		Key:              key,
		AsOf:             asOf,
		TotalsByCategory: make(map[string]decimal.Decimal),
		GrandTotal:       decimal.Zero,
	}
	for _, m := range movements {
		if m.CreatedAt.After(asOf) {
			continue
		}
		cat := CategoryOf(m)
		agg.TotalsByCategory[cat] = agg.TotalsByCategory[cat].Add(m.Amount)
		agg.GrandTotal = agg.GrandTotal.Add(m.Amount)
		agg.MovementCount++
	}
	return agg
}

// ValidateCashKey verifica que la clave de un libro de caja sea una fecha de calendario.
func ValidateCashKey(key string) error {
	t, err := time.Parse(entity.PeriodKeyLayout, key)
	if err != nil || t.Format(entity.PeriodKeyLayout) != key {
		return domain.Invalid(domain.ErrUnknownKey, "key", "%q no es una fecha válida (YYYY-MM-DD)", key)
	}
	return nil
}
