package repository

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// MovementRepository puerto de persistencia del libro de movimientos. Solo inserta y lee.
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	// ListByKey devuelve los movimientos de ledger+key en orden de created_at.
	ListByKey(ctx context.Context, ledger, key string) ([]*entity.Movement, error)
}
