package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale venta de medias: descuenta inventario y suma a caja_medias en la misma transacción.
type Sale struct {
	ID        string
	PeriodKey string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
	Method    string
	CreatedBy string
	CreatedAt time.Time
}
