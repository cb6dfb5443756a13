package postgres

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL. La tabla rechaza UPDATE y DELETE por trigger.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create agrega un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (id, ledger, key, kind, category, amount, reference, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Ledger, m.Key, m.Kind, m.Category, m.Amount, m.Reference, m.CreatedAt, m.CreatedBy,
	)
	return wrap("create movement", err)
}

// ListByKey lista los movimientos de ledger+key en orden de creación.
func (r *MovementRepo) ListByKey(ctx context.Context, ledger, key string) ([]*entity.Movement, error) {
	query := `
		SELECT id, ledger, key, kind, category, amount, reference, created_at, created_by
		FROM movements WHERE ledger = $1 AND key = $2
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, ledger, key)
	if err != nil {
		return nil, wrap("list movements", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(&m.ID, &m.Ledger, &m.Key, &m.Kind, &m.Category, &m.Amount,
			&m.Reference, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, wrap("scan movement", err)
		}
		list = append(list, &m)
	}
	return list, wrap("list movements", rows.Err())
}
