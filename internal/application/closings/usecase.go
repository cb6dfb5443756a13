// Package closings implementa el controlador de cierres de caja: conciliar el total calculado
// del libro contra el contado, bloquear el periodo, reabrirlo y eliminar cierres.
package closings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Clinica-api/internal/application/movements"
	"github.com/jhoicas/Clinica-api/internal/application/ports"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/closing"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/ledger"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

// Acciones observadas en métricas.
const (
	actionClose  = "close"
	actionReopen = "reopen"
	actionDelete = "delete"
)

// CloseInput datos para cerrar un periodo.
type CloseInput struct {
	Series        string
	PeriodKey     string
	CountedTotal  decimal.Decimal
	Justification string
}

// UseCase controlador de cierres. Close, Reopen y Delete son cada uno una única transacción;
// las alertas y métricas se emiten solo después del commit.
type UseCase struct {
	txRunner  ports.TxRunner
	policies  map[string]closing.Policy
	locker    ports.PeriodLocker
	notifier  ports.Notifier
	metrics   ports.ClosingMetrics
	generator ports.ClosingReportGenerator
	now       func() time.Time
	log       zerolog.Logger
}

// NewUseCase construye el caso de uso con una política por serie.
// Sin locker, notifier ni métricas configurados se usan implementaciones nulas.
func NewUseCase(txRunner ports.TxRunner, policies []closing.Policy, log zerolog.Logger) *UseCase {
	byseries := make(map[string]closing.Policy, len(policies))
	for _, p := range policies {
		byseries[p.Series] = p
	}
	return &UseCase{
		txRunner: txRunner,
		policies: byseries,
		locker:   ports.NoopLocker{},
		metrics:  ports.NoopMetrics{},
		now:      time.Now,
		log:      log,
	}
}

// WithLocker agrega exclusión mutua entre instancias por periodo.
func (uc *UseCase) WithLocker(l ports.PeriodLocker) *UseCase {
	if l != nil {
		uc.locker = l
	}
	return uc
}

// WithNotifier configura la superficie de alertas.
func (uc *UseCase) WithNotifier(n ports.Notifier) *UseCase {
	uc.notifier = n
	return uc
}

// WithMetrics configura las métricas.
func (uc *UseCase) WithMetrics(m ports.ClosingMetrics) *UseCase {
	if m != nil {
		uc.metrics = m
	}
	return uc
}

// WithReportGenerator configura el generador del reporte PDF.
func (uc *UseCase) WithReportGenerator(g ports.ClosingReportGenerator) *UseCase {
	uc.generator = g
	return uc
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Close concilia el periodo y lo bloquea.
//
// Retorna:
//   - domain.ErrAlreadyClosed         si el periodo ya tiene un cierre vigente (también al perder una carrera).
//   - domain.ErrJustificationRequired si la diferencia supera la tolerancia sin justificación válida.
//   - domain.ErrUnknownKey            si el periodo no es una fecha válida.
func (uc *UseCase) Close(ctx context.Context, actor entity.Actor, in CloseInput) (*entity.Closing, error) {
	c, event, err := uc.close(ctx, actor, in)
	if err != nil {
		uc.reject(in.Series, actionClose, err)
		return nil, err
	}

	variance, _ := c.Variance.Float64()
	uc.metrics.ObserveClosing(c.Series, actionClose, variance)
	uc.notify(ctx, event)
	if !c.Variance.IsZero() {
		uc.notify(ctx, &entity.AuditEvent{
			ID:            uuid.New().String(),
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        entity.AlertVariance,
			TargetID:      c.ID,
			Series:        c.Series,
			PeriodKey:     c.PeriodKey,
			Justification: c.VarianceJustification,
			Details: map[string]string{
				"number":   c.Number,
				"variance": c.Variance.String(),
			},
			CreatedAt: c.ClosedAt,
		})
	}
	uc.log.Info().
		Str("number", c.Number).
		Str("series", c.Series).
		Str("period_key", c.PeriodKey).
		Str("variance", c.Variance.String()).
		Str("actor", actor.ID).
		Msg("periodo cerrado")
	return c, nil
}

func (uc *UseCase) close(ctx context.Context, actor entity.Actor, in CloseInput) (*entity.Closing, *entity.AuditEvent, error) {
	if !entity.IsValidRole(actor.Role) {
		return nil, nil, domain.ErrForbidden
	}
	policy, err := uc.policy(in.Series)
	if err != nil {
		return nil, nil, err
	}
	if err := ledger.ValidateCashKey(in.PeriodKey); err != nil {
		return nil, nil, err
	}
	in.Justification = closing.NormalizeJustification(in.Justification)
	if in.CountedTotal.IsNegative() {
		return nil, nil, domain.Invalid(domain.ErrInvalidAmount, "counted_total", "el total contado no puede ser negativo")
	}

	release, err := uc.locker.Acquire(ctx, lockKey(in.Series, in.PeriodKey))
	if err != nil {
		return nil, nil, err
	}
	defer release()

	var (
		c     *entity.Closing
		event *entity.AuditEvent
	)
	err = uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if err := repos.Closings.LockPeriod(ctx, in.Series, in.PeriodKey, true); err != nil {
			return err
		}
		active, err := repos.Closings.GetActive(ctx, in.Series, in.PeriodKey)
		if err != nil {
			return err
		}
		if active != nil {
			return domain.Invalid(domain.ErrAlreadyClosed, "period_key",
				"el periodo %s ya fue cerrado con el consecutivo %s", in.PeriodKey, active.Number)
		}

		now := uc.now().UTC()
		agg, err := movements.AggregateInTx(ctx, repos, policy.Ledger, in.PeriodKey, now)
		if err != nil {
			return err
		}
		variance := closing.Variance(in.CountedTotal, agg.GrandTotal)
		if err := policy.CheckVariance(variance, in.Justification); err != nil {
			return err
		}

		seq, err := repos.Closings.NextNumber(ctx, in.Series)
		if err != nil {
			return err
		}
		c = &entity.Closing{
			ID:                    uuid.New().String(),
			Number:                closing.FormatNumber(policy.Prefix, seq),
			Series:                in.Series,
			PeriodKey:             in.PeriodKey,
			ComputedTotal:         agg.GrandTotal,
			CountedTotal:          in.CountedTotal,
			Variance:              variance,
			Breakdown:             agg.TotalsByCategory,
			MovementCount:         agg.MovementCount,
			VarianceJustification: in.Justification,
			State:                 entity.ClosingStateClosed,
			ClosedBy:              actor.ID,
			ClosedAt:              now,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		prev, err := repos.Closings.GetLatestReopened(ctx, in.Series, in.PeriodKey)
		if err != nil {
			return err
		}
		if prev != nil {
			c.SupersedesID = prev.ID
		}
		if err := repos.Closings.Create(ctx, c); err != nil {
			return err
		}

		event = &entity.AuditEvent{
			ID:            uuid.New().String(),
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        entity.AuditClose,
			TargetID:      c.ID,
			Series:        c.Series,
			PeriodKey:     c.PeriodKey,
			Justification: c.VarianceJustification,
			Details: map[string]string{
				"number":         c.Number,
				"computed_total": c.ComputedTotal.String(),
				"counted_total":  c.CountedTotal.String(),
				"variance":       c.Variance.String(),
			},
			CreatedAt: now,
		}
		return repos.Audit.Create(ctx, event)
	})
	if err != nil {
		return nil, nil, err
	}
	return c, event, nil
}

// Reopen desbloquea un cierre vigente. Solo admin, con justificación de al menos 10 caracteres.
// El cierre queda en estado reopened como rastro de auditoría.
func (uc *UseCase) Reopen(ctx context.Context, actor entity.Actor, closingID, justification string) (*entity.Closing, error) {
	justification = closing.NormalizeJustification(justification)
	var c *entity.Closing
	event, err := uc.mutate(ctx, actor, closingID, justification, actionReopen,
		func(repos repository.Repositories, current *entity.Closing, now time.Time) (*entity.AuditEvent, error) {
			if err := closing.CanReopen(current.State); err != nil {
				return nil, err
			}
			current.State = entity.ClosingStateReopened
			current.ReopenedBy = actor.ID
			current.ReopenedAt = &now
			current.ReopenJustification = justification
			current.UpdatedAt = now
			if err := repos.Closings.MarkReopened(ctx, current); err != nil {
				return nil, err
			}
			c = current
			return uc.auditFor(actor, entity.AuditReopen, current, justification, now), nil
		})
	if err != nil {
		return nil, err
	}
	uc.notify(ctx, event)
	uc.log.Warn().
		Str("number", c.Number).
		Str("period_key", c.PeriodKey).
		Str("actor", actor.ID).
		Msg("cierre reabierto")
	return c, nil
}

// Delete elimina el cierre (vigente o reabierto) y libera el periodo. Es irreversible;
// el evento de auditoría conserva el consecutivo y los totales.
func (uc *UseCase) Delete(ctx context.Context, actor entity.Actor, closingID, justification string) error {
	justification = closing.NormalizeJustification(justification)
	var deleted *entity.Closing
	event, err := uc.mutate(ctx, actor, closingID, justification, actionDelete,
		func(repos repository.Repositories, current *entity.Closing, now time.Time) (*entity.AuditEvent, error) {
			if err := closing.CanDelete(current.State); err != nil {
				return nil, err
			}
			if err := repos.Closings.Delete(ctx, current.ID); err != nil {
				return nil, err
			}
			deleted = current
			e := uc.auditFor(actor, entity.AuditDelete, current, justification, now)
			e.Details["state"] = current.State
			e.Details["computed_total"] = current.ComputedTotal.String()
			e.Details["counted_total"] = current.CountedTotal.String()
			return e, nil
		})
	if err != nil {
		return err
	}
	uc.notify(ctx, event)
	uc.log.Warn().
		Str("number", deleted.Number).
		Str("period_key", deleted.PeriodKey).
		Str("actor", actor.ID).
		Msg("cierre eliminado")
	return nil
}

type mutation func(repos repository.Repositories, current *entity.Closing, now time.Time) (*entity.AuditEvent, error)

// mutate aplica las validaciones comunes de reabrir y eliminar y ejecuta fn con la fila bloqueada.
func (uc *UseCase) mutate(ctx context.Context, actor entity.Actor, closingID, justification, action string, fn mutation) (*entity.AuditEvent, error) {
	event, series, err := uc.doMutate(ctx, actor, closingID, justification, fn)
	if err != nil {
		uc.reject(series, action, err)
		return nil, err
	}
	uc.metrics.ObserveClosing(series, action, 0)
	return event, nil
}

func (uc *UseCase) doMutate(ctx context.Context, actor entity.Actor, closingID, justification string, fn mutation) (*entity.AuditEvent, string, error) {
	if err := closing.ValidateJustification("justification", justification); err != nil {
		return nil, "", err
	}
	if !actor.IsAdmin() {
		return nil, "", domain.Invalid(domain.ErrForbidden, "role", "solo un administrador puede modificar un cierre")
	}

	// Lectura previa para conocer el periodo y tomar su candado antes de la transacción.
	target, err := uc.Get(ctx, closingID)
	if err != nil {
		return nil, "", err
	}
	release, err := uc.locker.Acquire(ctx, lockKey(target.Series, target.PeriodKey))
	if err != nil {
		return nil, target.Series, err
	}
	defer release()

	var event *entity.AuditEvent
	err = uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if err := repos.Closings.LockPeriod(ctx, target.Series, target.PeriodKey, true); err != nil {
			return err
		}
		current, err := repos.Closings.GetForUpdate(ctx, closingID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		event, err = fn(repos, current, uc.now().UTC())
		if err != nil {
			return err
		}
		return repos.Audit.Create(ctx, event)
	})
	return event, target.Series, err
}

func (uc *UseCase) auditFor(actor entity.Actor, action string, c *entity.Closing, justification string, now time.Time) *entity.AuditEvent {
	return &entity.AuditEvent{
		ID:            uuid.New().String(),
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
		Action:        action,
		TargetID:      c.ID,
		Series:        c.Series,
		PeriodKey:     c.PeriodKey,
		Justification: justification,
		Details:       map[string]string{"number": c.Number},
		CreatedAt:     now,
	}
}

// IsLocked indica si el periodo tiene un cierre vigente.
func (uc *UseCase) IsLocked(ctx context.Context, series, periodKey string) (bool, error) {
	if _, err := uc.policy(series); err != nil {
		return false, err
	}
	if err := ledger.ValidateCashKey(periodKey); err != nil {
		return false, err
	}
	locked := false
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		active, err := repos.Closings.GetActive(ctx, series, periodKey)
		locked = active != nil
		return err
	})
	return locked, err
}

// Get devuelve un cierre por ID o domain.ErrNotFound.
func (uc *UseCase) Get(ctx context.Context, closingID string) (*entity.Closing, error) {
	var c *entity.Closing
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		c, err = repos.Closings.GetByID(ctx, closingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// List devuelve los cierres de la serie (todas si series es vacío), más recientes primero.
func (uc *UseCase) List(ctx context.Context, series string, limit, offset int) ([]*entity.Closing, error) {
	if series != "" {
		if _, err := uc.policy(series); err != nil {
			return nil, err
		}
	}
	var out []*entity.Closing
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		out, err = repos.Closings.List(ctx, series, limit, offset)
		return err
	})
	return out, err
}

// Report genera el PDF del cierre y el nombre de archivo sugerido.
func (uc *UseCase) Report(ctx context.Context, closingID string) (pdfBytes []byte, filename string, err error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("cierres: generador de reportes no configurado")
	}
	c, err := uc.Get(ctx, closingID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.generator.GenerateClosingPDF(ctx, c)
	if err != nil {
		return nil, "", fmt.Errorf("cierres: generación del reporte: %w", err)
	}
	return pdfBytes, fmt.Sprintf("cierre_%s_%s.pdf", c.Number, c.PeriodKey), nil
}

func (uc *UseCase) policy(series string) (closing.Policy, error) {
	p, ok := uc.policies[series]
	if !ok {
		return closing.Policy{}, domain.Invalid(domain.ErrInvalidInput, "series", "serie de cierre desconocida %q", series)
	}
	return p, nil
}

// notify entrega el evento ya confirmado. Un fallo solo se registra: la operación no se revierte.
func (uc *UseCase) notify(ctx context.Context, event *entity.AuditEvent) {
	if uc.notifier == nil || event == nil {
		return
	}
	if err := uc.notifier.Notify(context.WithoutCancel(ctx), event); err != nil {
		uc.log.Error().Err(err).Str("action", event.Action).Str("target", event.TargetID).Msg("no se pudo notificar la alerta")
	}
}

func (uc *UseCase) reject(series, action string, err error) {
	uc.metrics.ObserveRejected(series, action, RejectReason(err))
	uc.log.Debug().Err(err).Str("series", series).Str("action", action).Msg("operación de cierre rechazada")
}

// RejectReason código corto del motivo de rechazo (etiqueta de métricas).
func RejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyClosed):
		return "already_closed"
	case errors.Is(err, domain.ErrJustificationRequired):
		return "justification_required"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrUnknownKey):
		return "unknown_key"
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	}
	return "internal"
}

func lockKey(series, periodKey string) string {
	return "cierre:" + series + ":" + periodKey
}
