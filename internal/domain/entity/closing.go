package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Series de cierre. Cada serie tiene su libro de caja, su tolerancia y su consecutivo.
const (
	SeriesClinic = "clinica"
	SeriesMedias = "medias"
)

// Estados persistidos de un cierre. "open" es la ausencia de fila para el periodo.
const (
	ClosingStateOpen     = "open"
	ClosingStateClosed   = "closed"
	ClosingStateReopened = "reopened"
)

// Closing es el registro que bloquea un periodo tras conciliar el total calculado contra el contado.
type Closing struct {
	ID            string
	Number        string // consecutivo legible, ej. CC-000042
	Series        string
	PeriodKey     string
	ComputedTotal decimal.Decimal
	CountedTotal  decimal.Decimal
	Variance      decimal.Decimal // contado - calculado
	Breakdown     map[string]decimal.Decimal
	MovementCount int

	VarianceJustification string
	State                 string

	ClosedBy            string
	ClosedAt            time.Time
	ReopenedBy          string
	ReopenedAt          *time.Time
	ReopenJustification string

	// SupersedesID apunta al cierre reabierto que este reemplaza (si lo hay).
	SupersedesID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LedgerForSeries devuelve el libro de caja que concilia la serie.
func LedgerForSeries(series string) (string, bool) {
	switch series {
	case SeriesClinic:
		return LedgerClinicCash, true
	case SeriesMedias:
		return LedgerMediasCash, true
	}
	return "", false
}

// SeriesForLedger devuelve la serie de cierre que bloquea el libro de caja.
func SeriesForLedger(ledger string) (string, bool) {
	switch ledger {
	case LedgerClinicCash:
		return SeriesClinic, true
	case LedgerMediasCash:
		return SeriesMedias, true
	}
	return "", false
}
