package repository

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para productos de medias.
type ProductRepository interface {
	// Create devuelve domain.ErrConflict si el SKU ya existe.
	Create(ctx context.Context, p *entity.Product) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción;
	// serializa las ventas de un mismo producto antes de revisar el stock.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}
