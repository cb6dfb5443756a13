package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pago de la clínica.
const (
	PaymentStatusActive = "activo"
	PaymentStatusVoided = "anulado"
)

// Métodos de pago aceptados (son las categorías de los libros de caja).
const (
	MethodEfectivo      = "efectivo"
	MethodTarjeta       = "tarjeta"
	MethodTransferencia = "transferencia"
)

// IsValidMethod indica si el método de pago es aceptado.
func IsValidMethod(m string) bool {
	switch m {
	case MethodEfectivo, MethodTarjeta, MethodTransferencia:
		return true
	}
	return false
}

// Payment pago recibido en la clínica. Genera una entrada en caja_clinica para su fecha.
type Payment struct {
	ID         string
	PeriodKey  string
	PatientID  string
	Concept    string
	Amount     decimal.Decimal
	Method     string
	Status     string
	VoidReason string
	VoidedBy   string
	VoidedAt   *time.Time
	CreatedBy  string
	CreatedAt  time.Time
}
