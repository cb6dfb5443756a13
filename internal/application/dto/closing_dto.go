package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CloseRequest body para POST /api/closings.
type CloseRequest struct {
	Series        string          `json:"series" validate:"required"`
	PeriodKey     string          `json:"period_key" validate:"required"`
	CountedTotal  decimal.Decimal `json:"counted_total"`
	Justification string          `json:"justification,omitempty"`
}

// JustificationRequest body para reabrir o eliminar un cierre.
type JustificationRequest struct {
	Justification string `json:"justification"`
}

// ClosingResponse cierre de caja.
type ClosingResponse struct {
	ID                    string                     `json:"id"`
	Number                string                     `json:"closing_number"`
	Series                string                     `json:"series"`
	PeriodKey             string                     `json:"period_key"`
	ComputedTotal         decimal.Decimal            `json:"computed_total"`
	CountedTotal          decimal.Decimal            `json:"counted_total"`
	Variance              decimal.Decimal            `json:"variance"`
	Breakdown             map[string]decimal.Decimal `json:"breakdown"`
	MovementCount         int                        `json:"movement_count"`
	VarianceJustification string                     `json:"variance_justification,omitempty"`
	State                 string                     `json:"state"`
	ClosedBy              string                     `json:"closed_by"`
	ClosedAt              time.Time                  `json:"closed_at"`
	ReopenedBy            string                     `json:"reopened_by,omitempty"`
	ReopenedAt            *time.Time                 `json:"reopened_at,omitempty"`
	ReopenJustification   string                     `json:"reopen_justification,omitempty"`
	SupersedesID          string                     `json:"supersedes_id,omitempty"`
}

// ClosingListResponse listado paginado de cierres.
type ClosingListResponse struct {
	Items []ClosingResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// LockStatusResponse respuesta de GET /api/closings/locked.
type LockStatusResponse struct {
	Series    string `json:"series"`
	PeriodKey string `json:"period_key"`
	Locked    bool   `json:"locked"`
}

// AuditEventResponse evento del historial de auditoría.
type AuditEventResponse struct {
	ID            string            `json:"id"`
	ActorID       string            `json:"actor_id"`
	ActorRole     string            `json:"actor_role"`
	Action        string            `json:"action"`
	TargetID      string            `json:"target_id"`
	Series        string            `json:"series,omitempty"`
	PeriodKey     string            `json:"period_key,omitempty"`
	Justification string            `json:"justification,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}
