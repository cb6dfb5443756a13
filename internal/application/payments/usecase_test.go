package payments_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Clinica-api/internal/application/movements"
	"github.com/jhoicas/Clinica-api/internal/application/payments"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
	"github.com/jhoicas/Clinica-api/internal/infrastructure/memory"
)

var (
	admin      = entity.Actor{ID: "u-admin", Role: entity.RoleAdmin}
	secretaria = entity.Actor{ID: "u-secretaria", Role: entity.RoleSecretaria}
	enfermera  = entity.Actor{ID: "u-enfermera", Role: entity.RoleEnfermera}
)

type capture struct{ events []*entity.AuditEvent }

func (c *capture) Notify(_ context.Context, e *entity.AuditEvent) error {
	c.events = append(c.events, e)
	return nil
}

func setup(t *testing.T) (*payments.UseCase, *movements.UseCase, *memory.Store, *capture) {
	t.Helper()
	store := memory.NewStore()
	now := time.Date(2026, 1, 29, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	notifier := &capture{}
	uc := payments.NewUseCase(store, notifier, zerolog.Nop()).WithClock(clock)
	return uc, movements.NewUseCase(store, zerolog.Nop()).WithClock(clock), store, notifier
}

func pago(amount int64, method string) payments.CreateInput {
	return payments.CreateInput{
		PeriodKey: "2026-01-29", PatientID: "pac-1", Concept: "Consulta de control",
		Amount: decimal.NewFromInt(amount), Method: method,
	}
}

func TestCreate_EscribeEntradaEnCaja(t *testing.T) {
	uc, ledgerUC, _, _ := setup(t)
	ctx := context.Background()

	p, err := uc.Create(ctx, secretaria, pago(50000, entity.MethodEfectivo))
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusActive, p.Status)
	_, err = uc.Create(ctx, secretaria, pago(30000, entity.MethodTarjeta))
	require.NoError(t, err)

	agg, err := ledgerUC.Aggregate(ctx, entity.LedgerClinicCash, "2026-01-29", nil)
	require.NoError(t, err)
	assert.True(t, agg.GrandTotal.Equal(decimal.NewFromInt(80000)))
	assert.True(t, agg.TotalsByCategory["efectivo"].Equal(decimal.NewFromInt(50000)))

	list, err := ledgerUC.List(ctx, entity.LedgerClinicCash, "2026-01-29")
	require.NoError(t, err)
	assert.Equal(t, p.ID, list[0].Reference)
}

func TestCreate_Validaciones(t *testing.T) {
	uc, _, _, _ := setup(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, secretaria, pago(0, entity.MethodEfectivo))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = uc.Create(ctx, secretaria, pago(1000, "cheque"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in := pago(1000, entity.MethodEfectivo)
	in.PeriodKey = "2026-02-30"
	_, err = uc.Create(ctx, secretaria, in)
	assert.ErrorIs(t, err, domain.ErrUnknownKey)
}

func TestCreate_PeriodoCerradoNoDejaPago(t *testing.T) {
	uc, _, store, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, store.Run(ctx, func(repos repository.Repositories) error {
		return repos.Closings.Create(ctx, &entity.Closing{ID: "c-1", Number: "CC-000001", Series: entity.SeriesClinic, PeriodKey: "2026-01-29", State: entity.ClosingStateClosed})
	}))

	_, err := uc.Create(ctx, secretaria, pago(1000, entity.MethodEfectivo))
	assert.ErrorIs(t, err, domain.ErrPeriodClosed)

	list, err := uc.ListByDate(ctx, "2026-01-29")
	require.NoError(t, err)
	assert.Empty(t, list, "la transacción se revierte completa")
}

func TestVoid(t *testing.T) {
	uc, ledgerUC, _, notifier := setup(t)
	ctx := context.Background()
	p, err := uc.Create(ctx, secretaria, pago(45000, entity.MethodTransferencia))
	require.NoError(t, err)

	_, err = uc.Void(ctx, enfermera, p.ID, "Pago registrado dos veces")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Void(ctx, secretaria, p.ID, "doble")
	assert.ErrorIs(t, err, domain.ErrJustificationRequired)

	voided, err := uc.Void(ctx, secretaria, p.ID, "Pago registrado dos veces")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusVoided, voided.Status)
	assert.Equal(t, secretaria.ID, voided.VoidedBy)

	agg, err := ledgerUC.Aggregate(ctx, entity.LedgerClinicCash, "2026-01-29", nil)
	require.NoError(t, err)
	assert.True(t, agg.GrandTotal.IsZero())
	assert.Equal(t, 2, agg.MovementCount, "la anulación agrega un movimiento, no borra el original")

	_, err = uc.Void(ctx, admin, p.ID, "Pago registrado dos veces")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.Void(ctx, admin, "no-existe", "Pago registrado dos veces")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, entity.AuditVoidPayment, notifier.events[0].Action)
	assert.Equal(t, p.ID, notifier.events[0].TargetID)
}

func TestVoid_PeriodoCerrado(t *testing.T) {
	uc, _, store, _ := setup(t)
	ctx := context.Background()
	p, err := uc.Create(ctx, secretaria, pago(45000, entity.MethodEfectivo))
	require.NoError(t, err)
	require.NoError(t, store.Run(ctx, func(repos repository.Repositories) error {
		return repos.Closings.Create(ctx, &entity.Closing{ID: "c-1", Number: "CC-000001", Series: entity.SeriesClinic, PeriodKey: "2026-01-29", State: entity.ClosingStateClosed})
	}))

	_, err = uc.Void(ctx, admin, p.ID, "Pago registrado dos veces")
	assert.ErrorIs(t, err, domain.ErrPeriodClosed)

	list, err := uc.ListByDate(ctx, "2026-01-29")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.PaymentStatusActive, list[0].Status)
}
