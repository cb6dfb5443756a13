package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/medias/products.
type CreateProductRequest struct {
	SKU         string          `json:"sku" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Size        string          `json:"size" validate:"required"`
	Compression string          `json:"compression,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// ProductResponse producto de medias.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Size        string          `json:"size"`
	Compression string          `json:"compression,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// StockResponse stock derivado del libro de inventario.
type StockResponse struct {
	ProductID     string                     `json:"product_id"`
	Quantity      decimal.Decimal            `json:"quantity"`
	ByKind        map[string]decimal.Decimal `json:"by_kind"`
	MovementCount int                        `json:"movement_count"`
}

// CreateSaleRequest body para POST /api/medias/sales.
type CreateSaleRequest struct {
	PeriodKey string           `json:"date" validate:"required"`
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Method    string           `json:"method" validate:"required,oneof=efectivo tarjeta transferencia"`
}

// SaleResponse venta registrada.
type SaleResponse struct {
	ID        string          `json:"id"`
	PeriodKey string          `json:"date"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	Method    string          `json:"method"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}
