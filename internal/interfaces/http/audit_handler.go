package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Clinica-api/internal/application/alerts"
	"github.com/jhoicas/Clinica-api/internal/application/dto"
)

// AuditHandler historial de auditoría (solo admin).
type AuditHandler struct {
	svc *alerts.Service
}

// NewAuditHandler construye el handler.
func NewAuditHandler(svc *alerts.Service) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// List godoc
// @Summary      Historial de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        target_id  query  string  false  "ID del cierre o pago"
// @Param        action     query  string  false  "close | reopen | delete | void_payment"
// @Param        limit      query  int     false  "Límite"  default(50)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.AuditEventResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit-events [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	events, err := h.svc.ListEvents(c.Context(), actor(c), alerts.Filter{
		TargetID: c.Query("target_id"),
		Action:   c.Query("action"),
		Limit:    c.QueryInt("limit", 50),
		Offset:   c.QueryInt("offset", 0),
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.FromAuditEvent(e))
	}
	return c.JSON(out)
}
