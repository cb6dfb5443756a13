package alerts

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/application/ports"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

const maxEvents = 200

// Filter criterios del historial. Campos vacíos no filtran.
type Filter struct {
	TargetID string
	Action   string
	Limit    int
	Offset   int
}

// Service consulta el historial de auditoría.
type Service struct {
	txRunner ports.TxRunner
}

// NewService construye el servicio.
func NewService(txRunner ports.TxRunner) *Service {
	return &Service{txRunner: txRunner}
}

// ListEvents devuelve los eventos más recientes primero. Solo admin.
func (s *Service) ListEvents(ctx context.Context, actor entity.Actor, f Filter) ([]*entity.AuditEvent, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	switch f.Action {
	case "", entity.AuditClose, entity.AuditReopen, entity.AuditDelete, entity.AuditVoidPayment:
	default:
		return nil, domain.Invalid(domain.ErrInvalidInput, "action", "acción desconocida %q", f.Action)
	}
	if f.Limit <= 0 || f.Limit > maxEvents {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	var out []*entity.AuditEvent
	err := s.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		out, err = repos.Audit.List(ctx, repository.AuditFilter{
			TargetID: f.TargetID,
			Action:   f.Action,
			Limit:    f.Limit,
			Offset:   f.Offset,
		})
		return err
	})
	return out, err
}
