package entity

import "time"

// Acciones auditadas.
const (
	AuditClose       = "close"
	AuditReopen      = "reopen"
	AuditDelete      = "delete"
	AuditVoidPayment = "void_payment"
)

// AlertVariance alerta de diferencia de caja. Solo se notifica, no se guarda en el historial.
const AlertVariance = "variance"

// AuditEvent registra quién hizo qué sobre un cierre o un pago. Solo se inserta.
type AuditEvent struct {
	ID            string
	ActorID       string
	ActorRole     string
	Action        string
	TargetID      string
	Series        string
	PeriodKey     string
	Justification string
	Details       map[string]string
	CreatedAt     time.Time
}
