package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

var _ repository.ClosingRepository = (*ClosingRepo)(nil)

const closingColumns = `id, number, series, period_key, computed_total, counted_total, variance, breakdown,
		movement_count, variance_justification, state, closed_by, closed_at, reopened_by, reopened_at,
		reopen_justification, supersedes_id, created_at, updated_at`

// ClosingRepo cierres de caja sobre PostgreSQL.
type ClosingRepo struct {
	q Querier
}

// NewClosingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClosingRepository(q Querier) *ClosingRepo {
	return &ClosingRepo{q: q}
}

// Create inserta el cierre. El índice parcial ux_closings_active_period convierte una carrera
// perdida en domain.ErrAlreadyClosed.
func (r *ClosingRepo) Create(ctx context.Context, c *entity.Closing) error {
	query := `INSERT INTO closings (` + closingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Number, c.Series, c.PeriodKey, c.ComputedTotal, c.CountedTotal, c.Variance, c.Breakdown,
		c.MovementCount, c.VarianceJustification, c.State, c.ClosedBy, c.ClosedAt, c.ReopenedBy, c.ReopenedAt,
		c.ReopenJustification, nullString(c.SupersedesID), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, activeClosingIndex) {
			return domain.Invalid(domain.ErrAlreadyClosed, "period_key", "el periodo %s ya tiene un cierre vigente", c.PeriodKey)
		}
		return wrap("create closing", err)
	}
	return nil
}

// GetByID obtiene un cierre por ID (nil si no existe).
func (r *ClosingRepo) GetByID(ctx context.Context, id string) (*entity.Closing, error) {
	return r.getOne(ctx, `SELECT `+closingColumns+` FROM closings WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
func (r *ClosingRepo) GetForUpdate(ctx context.Context, id string) (*entity.Closing, error) {
	return r.getOne(ctx, `SELECT `+closingColumns+` FROM closings WHERE id = $1 FOR UPDATE`, id)
}

// GetActive devuelve el cierre vigente del periodo.
func (r *ClosingRepo) GetActive(ctx context.Context, series, periodKey string) (*entity.Closing, error) {
	return r.getOne(ctx, `SELECT `+closingColumns+` FROM closings
		WHERE series = $1 AND period_key = $2 AND state = 'closed'`, series, periodKey)
}

// GetLatestReopened devuelve el último cierre reabierto del periodo.
func (r *ClosingRepo) GetLatestReopened(ctx context.Context, series, periodKey string) (*entity.Closing, error) {
	return r.getOne(ctx, `SELECT `+closingColumns+` FROM closings
		WHERE series = $1 AND period_key = $2 AND state = 'reopened'
		ORDER BY created_at DESC LIMIT 1`, series, periodKey)
}

// MarkReopened persiste los campos de reapertura.
func (r *ClosingRepo) MarkReopened(ctx context.Context, c *entity.Closing) error {
	query := `
		UPDATE closings SET state = $2, reopened_by = $3, reopened_at = $4, reopen_justification = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, c.ID, c.State, c.ReopenedBy, c.ReopenedAt, c.ReopenJustification, c.UpdatedAt)
	if err != nil {
		return wrap("reopen closing", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el cierre.
func (r *ClosingRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM closings WHERE id = $1`, id)
	if err != nil {
		return wrap("delete closing", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List cierres de la serie (todas si series es vacío), periodo más reciente primero.
func (r *ClosingRepo) List(ctx context.Context, series string, limit, offset int) ([]*entity.Closing, error) {
	query := `SELECT ` + closingColumns + ` FROM closings
		WHERE ($1 = '' OR series = $1)
		ORDER BY period_key DESC, created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, series, limit, offset)
	if err != nil {
		return nil, wrap("list closings", err)
	}
	defer rows.Close()
	var list []*entity.Closing
	for rows.Next() {
		c, err := scanClosing(rows)
		if err != nil {
			return nil, wrap("scan closing", err)
		}
		list = append(list, c)
	}
	return list, wrap("list closings", rows.Err())
}

// NextNumber reserva el siguiente consecutivo. La fila de la serie queda bloqueada hasta el commit,
// así que dos cierres de la misma serie se numeran en orden y un rollback no deja huecos.
func (r *ClosingRepo) NextNumber(ctx context.Context, series string) (int64, error) {
	query := `
		INSERT INTO closing_sequences (series, last_value) VALUES ($1, 1)
		ON CONFLICT (series) DO UPDATE SET last_value = closing_sequences.last_value + 1
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(ctx, query, series).Scan(&n); err != nil {
		return 0, wrap("next closing number", err)
	}
	return n, nil
}

// LockPeriod usa un advisory lock de transacción sobre hashtext("serie:periodo").
// Una colisión de hash solo serializa dos periodos distintos, no rompe nada.
func (r *ClosingRepo) LockPeriod(ctx context.Context, series, periodKey string, exclusive bool) error {
	query := `SELECT pg_advisory_xact_lock_shared(hashtext($1))`
	if exclusive {
		query = `SELECT pg_advisory_xact_lock(hashtext($1))`
	}
	if _, err := r.q.Exec(ctx, query, series+":"+periodKey); err != nil {
		return wrap("lock period", err)
	}
	return nil
}

func (r *ClosingRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Closing, error) {
	c, err := scanClosing(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get closing", err)
	}
	return c, nil
}

func scanClosing(row pgx.Row) (*entity.Closing, error) {
	var (
		c          entity.Closing
		supersedes *string
	)
	err := row.Scan(
		&c.ID, &c.Number, &c.Series, &c.PeriodKey, &c.ComputedTotal, &c.CountedTotal, &c.Variance, &c.Breakdown,
		&c.MovementCount, &c.VarianceJustification, &c.State, &c.ClosedBy, &c.ClosedAt, &c.ReopenedBy, &c.ReopenedAt,
		&c.ReopenJustification, &supersedes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.SupersedesID = fromNull(supersedes)
	return &c, nil
}
