package repository

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// AuditFilter criterios de consulta del historial de auditoría. Campos vacíos no filtran.
type AuditFilter struct {
	TargetID string
	Action   string
	Limit    int
	Offset   int
}

// AuditRepository historial de auditoría, solo inserción.
type AuditRepository interface {
	Create(ctx context.Context, e *entity.AuditEvent) error
	// List devuelve los eventos más recientes primero.
	List(ctx context.Context, f AuditFilter) ([]*entity.AuditEvent, error)
}
