package repository

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// SaleRepository puerto de persistencia de ventas de medias.
type SaleRepository interface {
	Create(ctx context.Context, s *entity.Sale) error
	ListByPeriod(ctx context.Context, periodKey string) ([]*entity.Sale, error)
}
