package repository

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// ClosingRepository puerto de persistencia de cierres.
// Debe garantizar a lo sumo un cierre en estado closed por (series, period_key): Create devuelve
// domain.ErrAlreadyClosed si la restricción se viola.
type ClosingRepository interface {
	Create(ctx context.Context, c *entity.Closing) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Closing, error)
	// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Closing, error)
	// GetActive devuelve el cierre vigente (closed) del periodo o nil.
	GetActive(ctx context.Context, series, periodKey string) (*entity.Closing, error)
	// GetLatestReopened devuelve el último cierre reabierto del periodo o nil.
	GetLatestReopened(ctx context.Context, series, periodKey string) (*entity.Closing, error)
	// MarkReopened persiste los campos de reapertura (state, reopened_by, reopened_at, reopen_justification).
	MarkReopened(ctx context.Context, c *entity.Closing) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, series string, limit, offset int) ([]*entity.Closing, error)
	// NextNumber reserva el siguiente consecutivo de la serie dentro de la transacción actual.
	NextNumber(ctx context.Context, series string) (int64, error)
	// LockPeriod toma el candado del periodo hasta el fin de la transacción. Cierre, reapertura y
	// eliminación lo piden exclusivo; las escrituras en el libro, compartido. Así una escritura que
	// ya verificó el periodo termina antes de que el cierre calcule su total.
	LockPeriod(ctx context.Context, series, periodKey string, exclusive bool) error
}
