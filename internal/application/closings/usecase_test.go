package closings_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Clinica-api/internal/application/closings"
	"github.com/jhoicas/Clinica-api/internal/application/movements"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/closing"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
	"github.com/jhoicas/Clinica-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const periodo = "2026-01-29"

var (
	admin      = entity.Actor{ID: "u-admin", Role: entity.RoleAdmin}
	secretaria = entity.Actor{ID: "u-secretaria", Role: entity.RoleSecretaria}
	medico     = entity.Actor{ID: "u-medico", Role: entity.RoleMedico}
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []*entity.AuditEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, e *entity.AuditEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) actions() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Action)
	}
	return out
}

type countingMetrics struct {
	mu       sync.Mutex
	ok       map[string]int
	rejected map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{ok: map[string]int{}, rejected: map[string]int{}}
}

func (m *countingMetrics) ObserveClosing(series, action string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ok[series+"/"+action]++
}

func (m *countingMetrics) ObserveRejected(_, action, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[action+"/"+reason]++
}

type fixture struct {
	store    *memory.Store
	ledger   *movements.UseCase
	uc       *closings.UseCase
	notifier *recordingNotifier
	metrics  *countingMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	now := time.Date(2026, 1, 29, 8, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
	policies := []closing.Policy{
		{Series: entity.SeriesClinic, Ledger: entity.LedgerClinicCash, Prefix: "CC", Tolerance: decimal.NewFromInt(1000)},
		{Series: entity.SeriesMedias, Ledger: entity.LedgerMediasCash, Prefix: "CM", Tolerance: decimal.Zero},
	}
	f := &fixture{
		store:    store,
		ledger:   movements.NewUseCase(store, zerolog.Nop()).WithClock(clock),
		notifier: &recordingNotifier{},
		metrics:  newCountingMetrics(),
	}
	f.uc = closings.NewUseCase(store, policies, zerolog.Nop()).
		WithClock(clock).
		WithNotifier(f.notifier).
		WithMetrics(f.metrics)
	return f
}

func (f *fixture) record(t *testing.T, ledgerName, kind, category string, amount int64) {
	t.Helper()
	_, err := f.ledger.Record(context.Background(), secretaria, movements.Input{
		Ledger: ledgerName, Key: periodo, Kind: kind, Category: category, Amount: decimal.NewFromInt(amount),
	})
	require.NoError(t, err)
}

func (f *fixture) closeClinic(t *testing.T, counted int64, justification string) *entity.Closing {
	t.Helper()
	c, err := f.uc.Close(context.Background(), secretaria, closings.CloseInput{
		Series: entity.SeriesClinic, PeriodKey: periodo, CountedTotal: decimal.NewFromInt(counted), Justification: justification,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) auditActions(t *testing.T, targetID string) []string {
	t.Helper()
	var out []string
	require.NoError(t, f.store.Run(context.Background(), func(repos repository.Repositories) error {
		events, err := repos.Audit.List(context.Background(), repository.AuditFilter{TargetID: targetID})
		for _, e := range events {
			out = append(out, e.Action)
		}
		return err
	}))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre
// ──────────────────────────────────────────────────────────────────────────────

func TestClose_SinDiferencia(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.LedgerClinicCash, entity.KindEntrada, entity.MethodEfectivo, 50000)
	f.record(t, entity.LedgerClinicCash, entity.KindEntrada, entity.MethodTarjeta, 30000)

	c := f.closeClinic(t, 80000, "")

	assert.Equal(t, "CC-000001", c.Number)
	assert.Equal(t, entity.ClosingStateClosed, c.State)
	assert.True(t, c.Variance.IsZero())
	assert.True(t, c.ComputedTotal.Equal(decimal.NewFromInt(80000)))
	assert.True(t, c.Breakdown["efectivo"].Equal(decimal.NewFromInt(50000)))
	assert.True(t, c.Breakdown["tarjeta"].Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, 2, c.MovementCount)
	assert.Equal(t, secretaria.ID, c.ClosedBy)

	locked, err := f.uc.IsLocked(context.Background(), entity.SeriesClinic, periodo)
	require.NoError(t, err)
	assert.True(t, locked)

	assert.Equal(t, []string{entity.AuditClose}, f.notifier.actions(), "sin diferencia no hay alerta de descuadre")
	assert.Equal(t, []string{entity.AuditClose}, f.auditActions(t, c.ID))
	assert.Equal(t, 1, f.metrics.ok["clinica/close"])
}

func TestClose_BloqueaNuevosMovimientos(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.LedgerClinicCash, entity.KindEntrada, entity.MethodEfectivo, 20000)
	f.closeClinic(t, 20000, "")

	_, err := f.ledger.Record(context.Background(), secretaria, movements.Input{
		Ledger: entity.LedgerClinicCash, Key: periodo, Kind: entity.KindEntrada, Amount: decimal.NewFromInt(1000),
	})
	assert.ErrorIs(t, err, domain.ErrPeriodClosed)
}

func TestClose_DobleCierre(t *testing.T) {
	f := newFixture(t)
	f.closeClinic(t, 0, "")

	_, err := f.uc.Close(context.Background(), secretaria, closings.CloseInput{
		Series: entity.SeriesClinic, PeriodKey: periodo, CountedTotal: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)
	assert.Equal(t, 1, f.metrics.rejected["close/already_closed"])
}

func TestClose_ToleranciaClinica(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.LedgerClinicCash, entity.KindEntrada, entity.MethodEfectivo, 100000)

	// 500 de diferencia: dentro de la tolerancia de 1000.
	c := f.closeClinic(t, 100500, "")
	assert.True(t, c.Variance.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, []string{entity.AuditClose, entity.AlertVariance}, f.notifier.actions())
}

func TestClose_JustificacionSoloEspaciosSeGuardaVacia(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.LedgerClinicCash, entity.KindEntrada, entity.MethodEfectivo, 100000)

	c := f.closeClinic(t, 100500, " \t  ")
	assert.Empty(t, c.VarianceJustification)

	got, err := f.uc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.VarianceJustification)

	reopened, err := f.uc.Reopen(context.Background(), admin, c.ID, "  conteo repetido por auditoría \n")
	require.NoError(t, err)
	assert.Equal(t, "conteo repetido por auditoría", reopened.ReopenJustification)
}

func TestClose_DiferenciaExigeJustificacion(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.LedgerClinicCash, entity.KindEntrada, entity.MethodEfectivo, 100000)
	ctx := context.Background()

	in := closings.CloseInput{Series: entity.SeriesClinic, PeriodKey: periodo, CountedTotal: decimal.NewFromInt(95000)}
	_, err := f.uc.Close(ctx, secretaria, in)
	require.ErrorIs(t, err, domain.ErrJustificationRequired)
	assert.Contains(t, domain.Reason(err), "10 caracteres")

	in.Justification = "corto"
	_, err = f.uc.Close(ctx, secretaria, in)
	assert.ErrorIs(t, err, domain.ErrJustificationRequired)

	locked, err := f.uc.IsLocked(ctx, entity.SeriesClinic, periodo)
	require.NoError(t, err)
	assert.False(t, locked, "un cierre rechazado no bloquea el periodo")

	in.Justification = "Faltante por devolución en efectivo a paciente"
	c, err := f.uc.Close(ctx, secretaria, in)
	require.NoError(t, err)
	assert.True(t, c.Variance.Equal(decimal.NewFromInt(-5000)))
	assert.Equal(t, "CC-000001", c.Number, "los intentos rechazados no consumen consecutivo")
}

func TestClose_MediasSinTolerancia(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.LedgerMediasCash, entity.KindVenta, entity.MethodEfectivo, 120000)
	ctx := context.Background()

	in := closings.CloseInput{Series: entity.SeriesMedias, PeriodKey: periodo, CountedTotal: decimal.NewFromInt(119000)}
	_, err := f.uc.Close(ctx, secretaria, in)
	require.ErrorIs(t, err, domain.ErrJustificationRequired)

	in.Justification = "Se entregó cambio de más en una venta"
	c, err := f.uc.Close(ctx, secretaria, in)
	require.NoError(t, err)
	assert.Equal(t, "CM-000001", c.Number)
	assert.True(t, c.Variance.Equal(decimal.NewFromInt(-1000)))
	assert.Equal(t, in.Justification, c.VarianceJustification)
}

func TestClose_SerieDesconocida(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Close(context.Background(), admin, closings.CloseInput{Series: "farmacia", PeriodKey: periodo})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Close(context.Background(), admin, closings.CloseInput{Series: entity.SeriesClinic, PeriodKey: "ayer"})
	assert.ErrorIs(t, err, domain.ErrUnknownKey)
}

func TestClose_Concurrente(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.LedgerClinicCash, entity.KindEntrada, entity.MethodEfectivo, 40000)

	const n = 12
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Close(context.Background(), secretaria, closings.CloseInput{
				Series: entity.SeriesClinic, PeriodKey: periodo, CountedTotal: decimal.NewFromInt(40000),
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyClosed)
	}
	assert.Equal(t, 1, ok, "exactamente un cierre gana la carrera")
}

func TestClose_FalloDeNotificacionNoRevierte(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("redis caído")

	c := f.closeClinic(t, 0, "")
	got, err := f.uc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ClosingStateClosed, got.State)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reapertura y eliminación
// ──────────────────────────────────────────────────────────────────────────────

func TestReopen_SoloAdmin(t *testing.T) {
	f := newFixture(t)
	c := f.closeClinic(t, 0, "")

	_, err := f.uc.Reopen(context.Background(), medico, c.ID, "corrección de un pago mal registrado")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	locked, err := f.uc.IsLocked(context.Background(), entity.SeriesClinic, periodo)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestReopen_JustificacionCorta(t *testing.T) {
	f := newFixture(t)
	c := f.closeClinic(t, 0, "")

	_, err := f.uc.Reopen(context.Background(), admin, c.ID, "   error  ")
	assert.ErrorIs(t, err, domain.ErrJustificationRequired)
}

func TestReopen_NoExiste(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Reopen(context.Background(), admin, "no-existe", "corrección de un pago mal registrado")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReopen_LuegoCerrarAsignaConsecutivoMayor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.record(t, entity.LedgerClinicCash, entity.KindEntrada, entity.MethodEfectivo, 50000)
	first := f.closeClinic(t, 50000, "")

	reopened, err := f.uc.Reopen(ctx, admin, first.ID, "Pago de la tarde quedó por fuera del cierre")
	require.NoError(t, err)
	assert.Equal(t, entity.ClosingStateReopened, reopened.State)
	assert.Equal(t, admin.ID, reopened.ReopenedBy)
	require.NotNil(t, reopened.ReopenedAt)

	locked, err := f.uc.IsLocked(ctx, entity.SeriesClinic, periodo)
	require.NoError(t, err)
	assert.False(t, locked)

	_, err = f.uc.Reopen(ctx, admin, first.ID, "Pago de la tarde quedó por fuera del cierre")
	assert.ErrorIs(t, err, domain.ErrConflict, "un cierre reabierto no se reabre de nuevo")

	f.record(t, entity.LedgerClinicCash, entity.KindEntrada, entity.MethodTransferencia, 25000)
	second := f.closeClinic(t, 75000, "")

	assert.Equal(t, "CC-000002", second.Number)
	assert.Greater(t, second.Number, first.Number)
	assert.Equal(t, first.ID, second.SupersedesID)
	assert.True(t, second.ComputedTotal.Equal(decimal.NewFromInt(75000)))

	kept, err := f.uc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ClosingStateReopened, kept.State, "el cierre reabierto se conserva como rastro")

	assert.Equal(t, []string{entity.AuditReopen, entity.AuditClose}, f.auditActions(t, first.ID))
}

func TestDelete_LiberaElPeriodo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.closeClinic(t, 0, "")

	err := f.uc.Delete(ctx, secretaria, c.ID, "Cierre hecho sobre la fecha equivocada")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.uc.Delete(ctx, admin, c.ID, "Cierre hecho sobre la fecha equivocada"))

	locked, err := f.uc.IsLocked(ctx, entity.SeriesClinic, periodo)
	require.NoError(t, err)
	assert.False(t, locked)

	_, err = f.uc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.uc.Delete(ctx, admin, c.ID, "Cierre hecho sobre la fecha equivocada")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []string{entity.AuditDelete, entity.AuditClose}, f.auditActions(t, c.ID))
	assert.Equal(t, []string{entity.AuditClose, entity.AuditDelete}, f.notifier.actions())

	again := f.closeClinic(t, 0, "")
	assert.Equal(t, "CC-000002", again.Number, "el consecutivo nunca se reutiliza")
	assert.Empty(t, again.SupersedesID)
}

func TestDelete_CierreReabierto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.closeClinic(t, 0, "")
	_, err := f.uc.Reopen(ctx, admin, c.ID, "Revisión de los pagos del día")
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(ctx, admin, c.ID, "Se descarta el cierre reabierto"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas y reporte
// ──────────────────────────────────────────────────────────────────────────────

func TestList_PorSerie(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.closeClinic(t, 0, "")
	_, err := f.uc.Close(ctx, secretaria, closings.CloseInput{Series: entity.SeriesMedias, PeriodKey: periodo, CountedTotal: decimal.Zero})
	require.NoError(t, err)

	all, err := f.uc.List(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	medias, err := f.uc.List(ctx, entity.SeriesMedias, 10, 0)
	require.NoError(t, err)
	require.Len(t, medias, 1)
	assert.Equal(t, "CM-000001", medias[0].Number)

	_, err = f.uc.List(ctx, "farmacia", 10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type fakeGenerator struct{ got *entity.Closing }

func (g *fakeGenerator) GenerateClosingPDF(_ context.Context, c *entity.Closing) ([]byte, error) {
	g.got = c
	return []byte("%PDF-1.3"), nil
}

func TestReport(t *testing.T) {
	f := newFixture(t)
	gen := &fakeGenerator{}
	f.uc.WithReportGenerator(gen)
	c := f.closeClinic(t, 0, "")

	pdf, filename, err := f.uc.Report(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.3"), pdf)
	assert.Equal(t, "cierre_CC-000001_2026-01-29.pdf", filename)
	assert.Equal(t, c.ID, gen.got.ID)

	_, _, err = f.uc.Report(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRejectReason(t *testing.T) {
	assert.Equal(t, "already_closed", closings.RejectReason(domain.Invalid(domain.ErrAlreadyClosed, "", "x")))
	assert.Equal(t, "justification_required", closings.RejectReason(domain.ErrJustificationRequired))
	assert.Equal(t, "internal", closings.RejectReason(errors.New("boom")))
}
