package postgres

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo historial de auditoría (solo inserción).
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta el evento.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEvent) error {
	query := `
		INSERT INTO audit_events (id, actor_id, actor_role, action, target_id, series, period_key, justification, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	details := e.Details
	if details == nil {
		details = map[string]string{}
	}
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ActorID, e.ActorRole, e.Action, e.TargetID, e.Series, e.PeriodKey, e.Justification, details, e.CreatedAt,
	)
	return wrap("create audit event", err)
}

// List eventos más recientes primero.
func (r *AuditRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditEvent, error) {
	query := `
		SELECT id, actor_id, actor_role, action, target_id, series, period_key, justification, details, created_at
		FROM audit_events
		WHERE ($1 = '' OR target_id = $1) AND ($2 = '' OR action = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.Query(ctx, query, f.TargetID, f.Action, limit, f.Offset)
	if err != nil {
		return nil, wrap("list audit events", err)
	}
	defer rows.Close()
	var list []*entity.AuditEvent
	for rows.Next() {
		var e entity.AuditEvent
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorRole, &e.Action, &e.TargetID, &e.Series,
			&e.PeriodKey, &e.Justification, &e.Details, &e.CreatedAt); err != nil {
			return nil, wrap("scan audit event", err)
		}
		list = append(list, &e)
	}
	return list, wrap("list audit events", rows.Err())
}
