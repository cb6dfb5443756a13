// Package movements implementa los casos de uso del libro de movimientos:
// registrar un movimiento y calcular totales derivados.
package movements

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Clinica-api/internal/application/ports"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/ledger"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

// Input datos de un movimiento a registrar.
type Input struct {
	Ledger    string
	Key       string
	Kind      string
	Category  string
	Amount    decimal.Decimal
	Reference string
}

// UseCase registra movimientos (solo inserción) y calcula totales como suma del libro.
type UseCase struct {
	txRunner ports.TxRunner
	now      func() time.Time
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, log zerolog.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, now: time.Now, log: log}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Record valida y agrega un movimiento inmutable. Falla con ErrInvalidAmount si el signo no
// corresponde al tipo, ErrUnknownKey si la clave no existe y ErrPeriodClosed si el periodo de caja está cerrado.
func (uc *UseCase) Record(ctx context.Context, actor entity.Actor, in Input) (*entity.Movement, error) {
	if !entity.IsValidRole(actor.Role) {
		return nil, domain.ErrForbidden
	}
	m := &entity.Movement{
		ID:        uuid.New().String(),
		Ledger:    in.Ledger,
		Key:       in.Key,
		Kind:      in.Kind,
		Category:  in.Category,
		Amount:    in.Amount,
		Reference: in.Reference,
		CreatedAt: uc.now().UTC(),
		CreatedBy: actor.ID,
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		return Append(ctx, repos, m)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Debug().
		Str("ledger", m.Ledger).
		Str("key", m.Key).
		Str("kind", m.Kind).
		Str("amount", m.Amount.String()).
		Msg("movimiento registrado")
	return m, nil
}

// Append valida y persiste m con los repositorios de la transacción del llamador.
// Lo usan los pagos y las ventas para escribir su movimiento en la misma transacción.
func Append(ctx context.Context, repos repository.Repositories, m *entity.Movement) error {
	if err := ledger.ValidateMovement(m.Ledger, m.Kind, m.Amount); err != nil {
		return err
	}
	if err := checkKey(ctx, repos, m.Ledger, m.Key); err != nil {
		return err
	}
	if series, ok := entity.SeriesForLedger(m.Ledger); ok {
		if err := EnsureOpen(ctx, repos, series, m.Key); err != nil {
			return err
		}
	}
	if m.Category == "" {
		m.Category = m.Kind
	}
	return repos.Movements.Create(ctx, m)
}

// EnsureOpen toma el candado compartido del periodo y devuelve ErrPeriodClosed si tiene un cierre
// vigente. El candado dura hasta el commit, de modo que un cierre concurrente espera a que la
// escritura termine y la incluye en su total.
func EnsureOpen(ctx context.Context, repos repository.Repositories, series, periodKey string) error {
	if err := repos.Closings.LockPeriod(ctx, series, periodKey, false); err != nil {
		return err
	}
	active, err := repos.Closings.GetActive(ctx, series, periodKey)
	if err != nil {
		return err
	}
	if active != nil {
		return domain.Invalid(domain.ErrPeriodClosed, "period_key",
			"el periodo %s de %s está cerrado (%s)", periodKey, series, active.Number)
	}
	return nil
}

// Aggregate calcula los totales de ledger+key con los movimientos creados hasta asOf (ahora si es nil).
func (uc *UseCase) Aggregate(ctx context.Context, ledgerName, key string, asOf *time.Time) (entity.Aggregate, error) {
	if !entity.IsKnownLedger(ledgerName) {
		return entity.Aggregate{}, domain.Invalid(domain.ErrInvalidInput, "ledger", "libro desconocido %q", ledgerName)
	}
	at := uc.now().UTC()
	if asOf != nil {
		at = asOf.UTC()
	}
	var agg entity.Aggregate
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		agg, err = AggregateInTx(ctx, repos, ledgerName, key, at)
		return err
	})
	return agg, err
}

// AggregateInTx igual que Aggregate pero con los repositorios de una transacción abierta.
func AggregateInTx(ctx context.Context, repos repository.Repositories, ledgerName, key string, asOf time.Time) (entity.Aggregate, error) {
	if err := checkKey(ctx, repos, ledgerName, key); err != nil {
		return entity.Aggregate{}, err
	}
	movs, err := repos.Movements.ListByKey(ctx, ledgerName, key)
	if err != nil {
		return entity.Aggregate{}, err
	}
	return ledger.Fold(ledgerName, key, movs, asOf), nil
}

// List devuelve los movimientos de ledger+key en orden de creación (para mostrar auditoría).
func (uc *UseCase) List(ctx context.Context, ledgerName, key string) ([]*entity.Movement, error) {
	if !entity.IsKnownLedger(ledgerName) {
		return nil, domain.Invalid(domain.ErrInvalidInput, "ledger", "libro desconocido %q", ledgerName)
	}
	var out []*entity.Movement
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if err := checkKey(ctx, repos, ledgerName, key); err != nil {
			return err
		}
		var err error
		out, err = repos.Movements.ListByKey(ctx, ledgerName, key)
		return err
	})
	return out, err
}

func checkKey(ctx context.Context, repos repository.Repositories, ledgerName, key string) error {
	if entity.IsCashLedger(ledgerName) {
		return ledger.ValidateCashKey(key)
	}
	if key == "" {
		return domain.Invalid(domain.ErrUnknownKey, "key", "producto requerido")
	}
	p, err := repos.Products.GetByID(ctx, key)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.Invalid(domain.ErrUnknownKey, "key", "el producto %s no existe", key)
	}
	return nil
}
