package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Libros de movimientos. Los libros de caja usan como clave la fecha (YYYY-MM-DD);
// el de inventario usa el ID del producto.
const (
	LedgerClinicCash      = "caja_clinica"
	LedgerMediasCash      = "caja_medias"
	LedgerMediasInventory = "inventario_medias"
)

// Tipos de movimiento.
const (
	KindEntrada    = "entrada"
	KindSalida     = "salida"
	KindVenta      = "venta"
	KindCompra     = "compra"
	KindDevolucion = "devolucion"
	KindAjuste     = "ajuste"
)

// PeriodKeyLayout formato de la clave de periodo en los libros de caja.
const PeriodKeyLayout = "2006-01-02"

// Movement es una entrada inmutable del libro. El saldo nunca se guarda: se deriva sumando movimientos.
type Movement struct {
	ID        string
	Ledger    string
	Key       string // fecha (libros de caja) o product_id (inventario)
	Kind      string
	Category  string          // método de pago en caja; por defecto el tipo
	Amount    decimal.Decimal // con signo: positivo suma, negativo resta
	Reference string          // pago, venta u otra transacción de origen (opcional)
	CreatedAt time.Time
	CreatedBy string
}

// IsCashLedger indica si el libro es de caja (clave = fecha).
func IsCashLedger(ledger string) bool {
	return ledger == LedgerClinicCash || ledger == LedgerMediasCash
}

// IsKnownLedger indica si el libro existe.
func IsKnownLedger(ledger string) bool {
	return IsCashLedger(ledger) || ledger == LedgerMediasInventory
}

// Aggregate totales derivados de un libro para una clave.
type Aggregate struct {
	Ledger           string
	Key              string
	AsOf             time.Time
	TotalsByCategory map[string]decimal.Decimal
	GrandTotal       decimal.Decimal
	MovementCount    int
}
