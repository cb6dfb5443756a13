package closings_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Clinica-api/internal/application/closings"
	"github.com/jhoicas/Clinica-api/internal/application/movements"
	"github.com/jhoicas/Clinica-api/internal/application/payments"
	"github.com/jhoicas/Clinica-api/internal/domain/closing"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
	"github.com/jhoicas/Clinica-api/internal/infrastructure/memory"
)

// traceLog registra en orden las llamadas relevantes de cada transacción.
type traceLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *traceLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *traceLog) take() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.calls
	l.calls = nil
	return out
}

type tracedClosings struct {
	repository.ClosingRepository
	log *traceLog
}

func (r tracedClosings) LockPeriod(ctx context.Context, series, periodKey string, exclusive bool) error {
	mode := "compartido"
	if exclusive {
		mode = "exclusivo"
	}
	r.log.add("lock %s:%s %s", series, periodKey, mode)
	return r.ClosingRepository.LockPeriod(ctx, series, periodKey, exclusive)
}

func (r tracedClosings) GetActive(ctx context.Context, series, periodKey string) (*entity.Closing, error) {
	r.log.add("get_active %s:%s", series, periodKey)
	return r.ClosingRepository.GetActive(ctx, series, periodKey)
}

func (r tracedClosings) GetForUpdate(ctx context.Context, id string) (*entity.Closing, error) {
	r.log.add("get_for_update")
	return r.ClosingRepository.GetForUpdate(ctx, id)
}

type tracedMovements struct {
	repository.MovementRepository
	log *traceLog
}

func (r tracedMovements) Create(ctx context.Context, m *entity.Movement) error {
	r.log.add("insert %s", m.Ledger)
	return r.MovementRepository.Create(ctx, m)
}

func (r tracedMovements) ListByKey(ctx context.Context, ledgerName, key string) ([]*entity.Movement, error) {
	r.log.add("fold %s", ledgerName)
	return r.MovementRepository.ListByKey(ctx, ledgerName, key)
}

// tracingRunner envuelve el store en memoria y decora los repositorios de cada transacción.
type tracingRunner struct {
	store *memory.Store
	log   *traceLog
}

func (r tracingRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	return r.store.Run(ctx, func(repos repository.Repositories) error {
		repos.Closings = tracedClosings{ClosingRepository: repos.Closings, log: r.log}
		repos.Movements = tracedMovements{MovementRepository: repos.Movements, log: r.log}
		return fn(repos)
	})
}

func TestCandadoDelPeriodo_OrdenEnCadaTransaccion(t *testing.T) {
	ctx := context.Background()
	trace := &traceLog{}
	runner := tracingRunner{store: memory.NewStore(), log: trace}
	policies := []closing.Policy{
		{Series: entity.SeriesClinic, Ledger: entity.LedgerClinicCash, Prefix: "CC", Tolerance: decimal.NewFromInt(1000)},
	}
	ledger := movements.NewUseCase(runner, zerolog.Nop())
	pagos := payments.NewUseCase(runner, nil, zerolog.Nop())
	uc := closings.NewUseCase(runner, policies, zerolog.Nop())

	// Un pago toma el candado compartido antes de verificar el periodo e insertar.
	_, err := pagos.Create(ctx, secretaria, payments.CreateInput{
		PeriodKey: periodo, PatientID: "p-1", Concept: "consulta", Amount: decimal.NewFromInt(50000), Method: entity.MethodEfectivo,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"lock clinica:" + periodo + " compartido",
		"get_active clinica:" + periodo,
		"insert caja_clinica",
	}, trace.take())

	// El cierre toma el candado exclusivo antes de leer el estado y sumar el libro.
	c, err := uc.Close(ctx, secretaria, closings.CloseInput{
		Series: entity.SeriesClinic, PeriodKey: periodo, CountedTotal: decimal.NewFromInt(50000),
	})
	require.NoError(t, err)
	calls := trace.take()
	require.GreaterOrEqual(t, len(calls), 3)
	assert.Equal(t, []string{
		"lock clinica:" + periodo + " exclusivo",
		"get_active clinica:" + periodo,
		"fold caja_clinica",
	}, calls[:3])

	// Reabrir y eliminar también lo piden exclusivo, antes de bloquear la fila.
	_, err = uc.Reopen(ctx, admin, c.ID, "conteo repetido por auditoría")
	require.NoError(t, err)
	assert.Equal(t, []string{"lock clinica:" + periodo + " exclusivo", "get_for_update"}, trace.take())

	require.NoError(t, uc.Delete(ctx, admin, c.ID, "cierre duplicado por error"))
	assert.Equal(t, []string{"lock clinica:" + periodo + " exclusivo", "get_for_update"}, trace.take())

	// Un movimiento directo en caja usa el mismo candado compartido.
	_, err = ledger.Record(ctx, secretaria, movements.Input{
		Ledger: entity.LedgerClinicCash, Key: periodo, Kind: entity.KindEntrada, Amount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"lock clinica:" + periodo + " compartido",
		"get_active clinica:" + periodo,
		"insert caja_clinica",
	}, trace.take())
}
