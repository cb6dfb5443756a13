package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

const paymentColumns = `id, period_key, patient_id, concept, amount, method, status, void_reason, voided_by, voided_at, created_by, created_at`

// PaymentRepo pagos de la clínica sobre PostgreSQL.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create inserta el pago.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.PeriodKey, p.PatientID, p.Concept, p.Amount, p.Method, p.Status,
		p.VoidReason, p.VoidedBy, p.VoidedAt, p.CreatedBy, p.CreatedAt,
	)
	return wrap("create payment", err)
}

// GetByID obtiene un pago (nil si no existe).
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

// GetForUpdate obtiene el pago bloqueando la fila.
func (r *PaymentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
}

// MarkVoided persiste la anulación.
func (r *PaymentRepo) MarkVoided(ctx context.Context, p *entity.Payment) error {
	query := `UPDATE payments SET status = $2, void_reason = $3, voided_by = $4, voided_at = $5 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.Status, p.VoidReason, p.VoidedBy, p.VoidedAt)
	if err != nil {
		return wrap("void payment", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByPeriod pagos del día en orden de registro.
func (r *PaymentRepo) ListByPeriod(ctx context.Context, periodKey string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE period_key = $1 ORDER BY created_at`, periodKey)
	if err != nil {
		return nil, wrap("list payments", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, wrap("scan payment", err)
		}
		list = append(list, p)
	}
	return list, wrap("list payments", rows.Err())
}

func (r *PaymentRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get payment", err)
	}
	return p, nil
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(&p.ID, &p.PeriodKey, &p.PatientID, &p.Concept, &p.Amount, &p.Method, &p.Status,
		&p.VoidReason, &p.VoidedBy, &p.VoidedAt, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
