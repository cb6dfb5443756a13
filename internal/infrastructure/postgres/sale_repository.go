package postgres

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas de medias sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, period_key, product_id, quantity, unit_price, total, method, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.PeriodKey, s.ProductID, s.Quantity, s.UnitPrice, s.Total, s.Method, s.CreatedBy, s.CreatedAt,
	)
	return wrap("create sale", err)
}

// ListByPeriod ventas del día.
func (r *SaleRepo) ListByPeriod(ctx context.Context, periodKey string) ([]*entity.Sale, error) {
	query := `
		SELECT id, period_key, product_id, quantity, unit_price, total, method, created_by, created_at
		FROM sales WHERE period_key = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, periodKey)
	if err != nil {
		return nil, wrap("list sales", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.PeriodKey, &s.ProductID, &s.Quantity, &s.UnitPrice, &s.Total,
			&s.Method, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, wrap("scan sale", err)
		}
		list = append(list, &s)
	}
	return list, wrap("list sales", rows.Err())
}
