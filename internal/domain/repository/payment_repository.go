package repository

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// PaymentRepository puerto de persistencia de pagos de la clínica.
type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Payment, error)
	// MarkVoided persiste status, void_reason, voided_by y voided_at.
	MarkVoided(ctx context.Context, p *entity.Payment) error
	ListByPeriod(ctx context.Context, periodKey string) ([]*entity.Payment, error)
}
