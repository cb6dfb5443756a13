// Package alerts es la superficie de auditoría: entrega de alertas tras el commit y consulta
// del historial de eventos.
package alerts

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Clinica-api/internal/application/ports"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// LogNotifier escribe cada alerta en el log estructurado. Siempre está activo.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier construye el notificador de log.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify registra el evento; las diferencias de caja y las acciones destructivas salen en nivel warn.
func (n *LogNotifier) Notify(_ context.Context, e *entity.AuditEvent) error {
	level := zerolog.InfoLevel
	switch e.Action {
	case entity.AlertVariance, entity.AuditReopen, entity.AuditDelete, entity.AuditVoidPayment:
		level = zerolog.WarnLevel
	}
	ev := n.log.WithLevel(level).
		Str("action", e.Action).
		Str("target_id", e.TargetID).
		Str("actor_id", e.ActorID).
		Str("actor_role", e.ActorRole)
	if e.Series != "" {
		ev = ev.Str("series", e.Series).Str("period_key", e.PeriodKey)
	}
	if e.Justification != "" {
		ev = ev.Str("justification", e.Justification)
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev = ev.Str(k, e.Details[k])
	}
	ev.Msg("alerta")
	return nil
}

// Fanout entrega el evento a todos los notificadores; uno que falla no impide a los demás.
type Fanout []ports.Notifier

// Notify devuelve la unión de los errores de los notificadores.
func (f Fanout) Notify(ctx context.Context, e *entity.AuditEvent) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
