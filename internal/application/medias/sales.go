package medias

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Clinica-api/internal/application/movements"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/ledger"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

// SaleInput datos de una venta. UnitPrice nil usa el precio de lista del producto.
type SaleInput struct {
	PeriodKey string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
	Method    string
}

// CreateSale registra la venta en una sola transacción: la venta, la salida de inventario
// (venta, -cantidad) y la entrada en caja_medias (venta, +total, categoría = método).
//
// Retorna:
//   - domain.ErrPeriodClosed      si el día de medias ya fue cerrado.
//   - domain.ErrInsufficientStock si el stock derivado no cubre la cantidad.
//   - domain.ErrUnknownKey        si el producto no existe.
func (uc *UseCase) CreateSale(ctx context.Context, actor entity.Actor, in SaleInput) (*entity.Sale, error) {
	if !entity.IsValidRole(actor.Role) {
		return nil, domain.ErrForbidden
	}
	if err := ledger.ValidateCashKey(in.PeriodKey); err != nil {
		return nil, err
	}
	if !in.Quantity.IsPositive() || !in.Quantity.IsInteger() {
		return nil, domain.Invalid(domain.ErrInvalidAmount, "quantity", "la cantidad debe ser un entero mayor a cero")
	}
	if !entity.IsValidMethod(in.Method) {
		return nil, domain.Invalid(domain.ErrInvalidInput, "method", "método de pago inválido %q", in.Method)
	}
	if in.UnitPrice != nil && !in.UnitPrice.IsPositive() {
		return nil, domain.Invalid(domain.ErrInvalidAmount, "unit_price", "el precio debe ser mayor a cero")
	}

	var s *entity.Sale
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if err := movements.EnsureOpen(ctx, repos, entity.SeriesMedias, in.PeriodKey); err != nil {
			return err
		}
		p, err := repos.Products.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.Invalid(domain.ErrUnknownKey, "product_id", "el producto %s no existe", in.ProductID)
		}

		now := uc.now().UTC()
		stock, err := movements.AggregateInTx(ctx, repos, entity.LedgerMediasInventory, p.ID, now)
		if err != nil {
			return err
		}
		if stock.GrandTotal.LessThan(in.Quantity) {
			return domain.Invalid(domain.ErrInsufficientStock, "quantity",
				"stock de %s: %s, solicitado: %s", p.SKU, stock.GrandTotal.String(), in.Quantity.String())
		}

		price := p.Price
		if in.UnitPrice != nil {
			price = *in.UnitPrice
		}
		s = &entity.Sale{
			ID:        uuid.New().String(),
			PeriodKey: in.PeriodKey,
			ProductID: p.ID,
			Quantity:  in.Quantity,
			UnitPrice: price,
			Total:     price.Mul(in.Quantity),
			Method:    in.Method,
			CreatedBy: actor.ID,
			CreatedAt: now,
		}
		if err := repos.Sales.Create(ctx, s); err != nil {
			return err
		}
		if err := movements.Append(ctx, repos, &entity.Movement{
			ID:        uuid.New().String(),
			Ledger:    entity.LedgerMediasInventory,
			Key:       p.ID,
			Kind:      entity.KindVenta,
			Amount:    in.Quantity.Neg(),
			Reference: s.ID,
			CreatedAt: now,
			CreatedBy: actor.ID,
		}); err != nil {
			return err
		}
		return movements.Append(ctx, repos, &entity.Movement{
			ID:        uuid.New().String(),
			Ledger:    entity.LedgerMediasCash,
			Key:       in.PeriodKey,
			Kind:      entity.KindVenta,
			Category:  in.Method,
			Amount:    s.Total,
			Reference: s.ID,
			CreatedAt: now,
			CreatedBy: actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("sale_id", s.ID).
		Str("product_id", s.ProductID).
		Str("quantity", s.Quantity.String()).
		Str("total", s.Total.String()).
		Msg("venta de medias registrada")
	return s, nil
}

// ListSales ventas del día.
func (uc *UseCase) ListSales(ctx context.Context, periodKey string) ([]*entity.Sale, error) {
	if err := ledger.ValidateCashKey(periodKey); err != nil {
		return nil, err
	}
	var out []*entity.Sale
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		out, err = repos.Sales.ListByPeriod(ctx, periodKey)
		return err
	})
	return out, err
}
