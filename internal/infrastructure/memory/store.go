// Package memory implementa los repositorios y el TxRunner en memoria (desarrollo y tests).
//
// Cada transacción toma el candado del store, trabaja sobre una copia del estado y solo la
// publica si fn termina sin error: las transacciones son serializables y un fallo no deja rastro.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Clinica-api/internal/application/ports"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	movements []entity.Movement
	closings  map[string]entity.Closing
	sequences map[string]int64
	audit     []entity.AuditEvent
	payments  map[string]entity.Payment
	sales     []entity.Sale
	products  map[string]entity.Product
}

func newState() *state {
	return &state{
		closings:  make(map[string]entity.Closing),
		sequences: make(map[string]int64),
		payments:  make(map[string]entity.Payment),
		products:  make(map[string]entity.Product),
	}
}

func (s *state) clone() *state {
	c := &state{
		movements: append([]entity.Movement(nil), s.movements...),
		closings:  make(map[string]entity.Closing, len(s.closings)),
		sequences: make(map[string]int64, len(s.sequences)),
		audit:     append([]entity.AuditEvent(nil), s.audit...),
		payments:  make(map[string]entity.Payment, len(s.payments)),
		sales:     append([]entity.Sale(nil), s.sales...),
		products:  make(map[string]entity.Product, len(s.products)),
	}
	for k, v := range s.closings {
		c.closings[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	return c
}

// Store estado en memoria protegido por un candado global.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Run ejecuta fn sobre una copia del estado y la publica solo si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	tx := &tx{st: work}
	if err := fn(tx.repositories()); err != nil {
		return err
	}
	// Un contexto cancelado antes del commit equivale a no confirmar.
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

type tx struct {
	st *state
}

func (t *tx) repositories() repository.Repositories {
	return repository.Repositories{
		Movements: movementRepo{t},
		Closings:  closingRepo{t},
		Audit:     auditRepo{t},
		Payments:  paymentRepo{t},
		Sales:     saleRepo{t},
		Products:  productRepo{t},
	}
}

// ── Movimientos ───────────────────────────────────────────────────────────────

type movementRepo struct{ t *tx }

func (r movementRepo) Create(_ context.Context, m *entity.Movement) error {
	r.t.st.movements = append(r.t.st.movements, *m)
	return nil
}

func (r movementRepo) ListByKey(_ context.Context, ledger, key string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for i := range r.t.st.movements {
		m := r.t.st.movements[i]
		if m.Ledger == ledger && m.Key == key {
			out = append(out, &m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ── Cierres ───────────────────────────────────────────────────────────────────

type closingRepo struct{ t *tx }

func (r closingRepo) Create(_ context.Context, c *entity.Closing) error {
	for _, existing := range r.t.st.closings {
		if existing.Series == c.Series && existing.PeriodKey == c.PeriodKey && existing.State == entity.ClosingStateClosed {
			return domain.ErrAlreadyClosed
		}
	}
	r.t.st.closings[c.ID] = *c
	return nil
}

func (r closingRepo) GetByID(_ context.Context, id string) (*entity.Closing, error) {
	c, ok := r.t.st.closings[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r closingRepo) GetForUpdate(ctx context.Context, id string) (*entity.Closing, error) {
	return r.GetByID(ctx, id)
}

func (r closingRepo) GetActive(_ context.Context, series, periodKey string) (*entity.Closing, error) {
	for _, c := range r.t.st.closings {
		if c.Series == series && c.PeriodKey == periodKey && c.State == entity.ClosingStateClosed {
			return &c, nil
		}
	}
	return nil, nil
}

func (r closingRepo) GetLatestReopened(_ context.Context, series, periodKey string) (*entity.Closing, error) {
	var latest *entity.Closing
	for _, c := range r.t.st.closings {
		if c.Series != series || c.PeriodKey != periodKey || c.State != entity.ClosingStateReopened {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			c := c
			latest = &c
		}
	}
	return latest, nil
}

func (r closingRepo) MarkReopened(_ context.Context, c *entity.Closing) error {
	existing, ok := r.t.st.closings[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.State = c.State
	existing.ReopenedBy = c.ReopenedBy
	existing.ReopenedAt = c.ReopenedAt
	existing.ReopenJustification = c.ReopenJustification
	existing.UpdatedAt = c.UpdatedAt
	r.t.st.closings[c.ID] = existing
	return nil
}

func (r closingRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.t.st.closings[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.t.st.closings, id)
	return nil
}

func (r closingRepo) List(_ context.Context, series string, limit, offset int) ([]*entity.Closing, error) {
	var all []*entity.Closing
	for _, c := range r.t.st.closings {
		if series != "" && c.Series != series {
			continue
		}
		c := c
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].PeriodKey != all[j].PeriodKey {
			return all[i].PeriodKey > all[j].PeriodKey
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, limit, offset), nil
}

func (r closingRepo) NextNumber(_ context.Context, series string) (int64, error) {
	r.t.st.sequences[series]++
	return r.t.st.sequences[series], nil
}

// LockPeriod no hace nada: Run ya serializa todas las transacciones.
func (r closingRepo) LockPeriod(context.Context, string, string, bool) error {
	return nil
}

// ── Auditoría ─────────────────────────────────────────────────────────────────

type auditRepo struct{ t *tx }

func (r auditRepo) Create(_ context.Context, e *entity.AuditEvent) error {
	r.t.st.audit = append(r.t.st.audit, *e)
	return nil
}

func (r auditRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.AuditEvent, error) {
	var out []*entity.AuditEvent
	for i := len(r.t.st.audit) - 1; i >= 0; i-- {
		e := r.t.st.audit[i]
		if f.TargetID != "" && e.TargetID != f.TargetID {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		out = append(out, &e)
	}
	return page(out, f.Limit, f.Offset), nil
}

// ── Pagos ─────────────────────────────────────────────────────────────────────

type paymentRepo struct{ t *tx }

func (r paymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.t.st.payments[p.ID] = *p
	return nil
}

func (r paymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	p, ok := r.t.st.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r paymentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Payment, error) {
	return r.GetByID(ctx, id)
}

func (r paymentRepo) MarkVoided(_ context.Context, p *entity.Payment) error {
	existing, ok := r.t.st.payments[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Status = p.Status
	existing.VoidReason = p.VoidReason
	existing.VoidedBy = p.VoidedBy
	existing.VoidedAt = p.VoidedAt
	r.t.st.payments[p.ID] = existing
	return nil
}

func (r paymentRepo) ListByPeriod(_ context.Context, periodKey string) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, p := range r.t.st.payments {
		if p.PeriodKey == periodKey {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ── Ventas y productos ────────────────────────────────────────────────────────

type saleRepo struct{ t *tx }

func (r saleRepo) Create(_ context.Context, s *entity.Sale) error {
	r.t.st.sales = append(r.t.st.sales, *s)
	return nil
}

func (r saleRepo) ListByPeriod(_ context.Context, periodKey string) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for i := range r.t.st.sales {
		s := r.t.st.sales[i]
		if s.PeriodKey == periodKey {
			out = append(out, &s)
		}
	}
	return out, nil
}

type productRepo struct{ t *tx }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	for _, existing := range r.t.st.products {
		if existing.SKU == p.SKU {
			return domain.ErrConflict
		}
	}
	r.t.st.products[p.ID] = *p
	return nil
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.t.st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.t.st.products {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return page(out, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
