package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/ledger/:ledger/movements.
type RecordMovementRequest struct {
	Key       string          `json:"key" validate:"required"`
	Kind      string          `json:"kind" validate:"required"`
	Category  string          `json:"category,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// MovementResponse movimiento del libro.
type MovementResponse struct {
	ID        string          `json:"id"`
	Ledger    string          `json:"ledger"`
	Key       string          `json:"key"`
	Kind      string          `json:"kind"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	CreatedBy string          `json:"created_by"`
}

// AggregateResponse totales derivados de un libro para una clave.
type AggregateResponse struct {
	Ledger           string                     `json:"ledger"`
	Key              string                     `json:"key"`
	AsOf             time.Time                  `json:"as_of"`
	TotalsByCategory map[string]decimal.Decimal `json:"total_by_category"`
	GrandTotal       decimal.Decimal            `json:"grand_total"`
	MovementCount    int                        `json:"movement_count"`
}
