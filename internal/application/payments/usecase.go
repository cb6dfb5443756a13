// Package payments registra los pagos de la clínica. Cada pago escribe su entrada en caja_clinica
// en la misma transacción; anular un pago agrega el movimiento inverso.
package payments

import (
	"context"
	"strings"
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

// CreateInput datos de un pago.
type CreateInput struct {
	PeriodKey string
	PatientID string
	Concept   string
	Amount    decimal.Decimal
	Method    string
}

// UseCase pagos de la clínica.
type UseCase struct {
	txRunner ports.TxRunner
	notifier ports.Notifier
	now      func() time.Time
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso. notifier puede ser nil.
func NewUseCase(txRunner ports.TxRunner, notifier ports.Notifier, log zerolog.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, notifier: notifier, now: time.Now, log: log}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Create registra el pago y su entrada en caja. Falla con ErrPeriodClosed si el día ya fue cerrado.
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, in CreateInput) (*entity.Payment, error) {
	if !entity.IsValidRole(actor.Role) {
		return nil, domain.ErrForbidden
	}
	if err := ledger.ValidateCashKey(in.PeriodKey); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, domain.Invalid(domain.ErrInvalidAmount, "amount", "el monto del pago debe ser mayor a cero")
	}
	if !entity.IsValidMethod(in.Method) {
		return nil, domain.Invalid(domain.ErrInvalidInput, "method", "método de pago inválido %q", in.Method)
	}
	if strings.TrimSpace(in.Concept) == "" {
		return nil, domain.Invalid(domain.ErrInvalidInput, "concept", "el concepto es requerido")
	}

	now := uc.now().UTC()
	p := &entity.Payment{
		ID:        uuid.New().String(),
		PeriodKey: in.PeriodKey,
		PatientID: in.PatientID,
		Concept:   strings.TrimSpace(in.Concept),
		Amount:    in.Amount,
		Method:    in.Method,
		Status:    entity.PaymentStatusActive,
		CreatedBy: actor.ID,
		CreatedAt: now,
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if err := repos.Payments.Create(ctx, p); err != nil {
			return err
		}
		return movements.Append(ctx, repos, &entity.Movement{
			ID:        uuid.New().String(),
			Ledger:    entity.LedgerClinicCash,
			Key:       p.PeriodKey,
			Kind:      entity.KindEntrada,
			Category:  p.Method,
			Amount:    p.Amount,
			Reference: p.ID,
			CreatedAt: now,
			CreatedBy: actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("payment_id", p.ID).Str("period_key", p.PeriodKey).Str("amount", p.Amount.String()).Msg("pago registrado")
	return p, nil
}

// Void anula un pago activo: admin o secretaria, con justificación. El libro no se edita;
// se agrega una salida por el mismo monto.
func (uc *UseCase) Void(ctx context.Context, actor entity.Actor, paymentID, justification string) (*entity.Payment, error) {
	justification = closing.NormalizeJustification(justification)
	if err := closing.ValidateJustification("justification", justification); err != nil {
		return nil, err
	}
	if !actor.HasRole(entity.RoleAdmin, entity.RoleSecretaria) {
		return nil, domain.Invalid(domain.ErrForbidden, "role", "solo admin o secretaria pueden anular pagos")
	}

	var (
		p     *entity.Payment
		event *entity.AuditEvent
	)
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		p, err = repos.Payments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if p.Status == entity.PaymentStatusVoided {
			return domain.Invalid(domain.ErrConflict, "status", "el pago ya fue anulado")
		}
		now := uc.now().UTC()
		if err := movements.Append(ctx, repos, &entity.Movement{
			ID:        uuid.New().String(),
			Ledger:    entity.LedgerClinicCash,
			Key:       p.PeriodKey,
			Kind:      entity.KindSalida,
			Category:  p.Method,
			Amount:    p.Amount.Neg(),
			Reference: p.ID,
			CreatedAt: now,
			CreatedBy: actor.ID,
		}); err != nil {
			return err
		}
		p.Status = entity.PaymentStatusVoided
		p.VoidReason = justification
		p.VoidedBy = actor.ID
		p.VoidedAt = &now
		if err := repos.Payments.MarkVoided(ctx, p); err != nil {
			return err
		}
		event = &entity.AuditEvent{
			ID:            uuid.New().String(),
			ActorID:       actor.ID,
			ActorRole:     actor.Role,
			Action:        entity.AuditVoidPayment,
			TargetID:      p.ID,
			Series:        entity.SeriesClinic,
			PeriodKey:     p.PeriodKey,
			Justification: justification,
			Details:       map[string]string{"amount": p.Amount.String(), "method": p.Method},
			CreatedAt:     now,
		}
		return repos.Audit.Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	if uc.notifier != nil {
		if err := uc.notifier.Notify(context.WithoutCancel(ctx), event); err != nil {
			uc.log.Error().Err(err).Str("payment_id", p.ID).Msg("no se pudo notificar la anulación")
		}
	}
	return p, nil
}

// ListByDate devuelve los pagos del día (activos y anulados).
func (uc *UseCase) ListByDate(ctx context.Context, periodKey string) ([]*entity.Payment, error) {
	if err := ledger.ValidateCashKey(periodKey); err != nil {
		return nil, err
	}
	var out []*entity.Payment
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		out, err = repos.Payments.ListByPeriod(ctx, periodKey)
		return err
	})
	return out, err
}
