package ports

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// Notifier superficie de alertas: recibe los eventos de auditoría ya confirmados
// (cierres, reaperturas, eliminaciones, pagos anulados, diferencias de caja).
// Un fallo al notificar no revierte la operación.
type Notifier interface {
	Notify(ctx context.Context, event *entity.AuditEvent) error
}

// PeriodLocker exclusión mutua entre instancias para operaciones sobre un mismo periodo.
// La restricción única de la BD sigue siendo la garantía final.
type PeriodLocker interface {
	// Acquire devuelve una función para liberar el candado.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// ClosingMetrics observa los resultados de las operaciones de cierre.
type ClosingMetrics interface {
	ObserveClosing(series, action string, variance float64)
	ObserveRejected(series, action, reason string)
}

// NoopLocker no bloquea (una sola instancia).
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

// NoopMetrics descarta las métricas.
type NoopMetrics struct{}

func (NoopMetrics) ObserveClosing(string, string, float64) {}
func (NoopMetrics) ObserveRejected(string, string, string) {}
