package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePaymentRequest body para POST /api/payments.
type CreatePaymentRequest struct {
	PeriodKey string          `json:"date" validate:"required"`
	PatientID string          `json:"patient_id" validate:"required"`
	Concept   string          `json:"concept" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"required,oneof=efectivo tarjeta transferencia"`
}

// PaymentResponse pago de la clínica.
type PaymentResponse struct {
	ID         string          `json:"id"`
	PeriodKey  string          `json:"date"`
	PatientID  string          `json:"patient_id"`
	Concept    string          `json:"concept"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Status     string          `json:"status"`
	VoidReason string          `json:"void_reason,omitempty"`
	VoidedBy   string          `json:"voided_by,omitempty"`
	VoidedAt   *time.Time      `json:"voided_at,omitempty"`
	CreatedBy  string          `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
}
