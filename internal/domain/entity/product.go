package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product media de compresión. Su ID es la clave del libro inventario_medias;
// el stock no es un campo, se deriva de los movimientos.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Size        string // talla (S, M, L, XL)
	Compression string // ej. "20-30 mmHg"
	Price       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
