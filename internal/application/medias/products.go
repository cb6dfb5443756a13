// Package medias gestiona el catálogo de medias de compresión y sus ventas. El stock no se guarda:
// es la suma del libro inventario_medias para el producto.
package medias

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Clinica-api/internal/application/movements"
	"github.com/jhoicas/Clinica-api/internal/application/ports"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

// ProductInput datos de un producto nuevo.
type ProductInput struct {
	SKU         string
	Name        string
	Size        string
	Compression string
	Price       decimal.Decimal
}

// UseCase productos y ventas de medias.
type UseCase struct {
	txRunner ports.TxRunner
	now      func() time.Time
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, log zerolog.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, now: time.Now, log: log}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// CreateProduct da de alta un producto. Solo admin; el SKU es único (ErrConflict).
func (uc *UseCase) CreateProduct(ctx context.Context, actor entity.Actor, in ProductInput) (*entity.Product, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	sku := strings.ToUpper(strings.TrimSpace(in.SKU))
	if sku == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid(domain.ErrInvalidInput, "sku", "sku y nombre son requeridos")
	}
	if !in.Price.IsPositive() {
		return nil, domain.Invalid(domain.ErrInvalidAmount, "price", "el precio debe ser mayor a cero")
	}
	now := uc.now().UTC()
	p := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         sku,
		Name:        strings.TrimSpace(in.Name),
		Size:        strings.ToUpper(strings.TrimSpace(in.Size)),
		Compression: in.Compression,
		Price:       in.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		return repos.Products.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProduct devuelve el producto o ErrNotFound.
func (uc *UseCase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	var p *entity.Product
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		p, err = repos.Products.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// ListProducts lista el catálogo ordenado por SKU.
func (uc *UseCase) ListProducts(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		out, err = repos.Products.List(ctx, limit, offset)
		return err
	})
	return out, err
}

// Stock unidades disponibles del producto, derivadas del libro de inventario.
func (uc *UseCase) Stock(ctx context.Context, productID string) (entity.Aggregate, error) {
	var agg entity.Aggregate
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		p, err := repos.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		agg, err = movements.AggregateInTx(ctx, repos, entity.LedgerMediasInventory, productID, uc.now().UTC())
		return err
	})
	return agg, err
}
