package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Clinica-api/internal/application/closings"
	"github.com/jhoicas/Clinica-api/internal/application/dto"
)

// ClosingHandler maneja los cierres de caja (protegido).
type ClosingHandler struct {
	uc *closings.UseCase
}

// NewClosingHandler construye el handler.
func NewClosingHandler(uc *closings.UseCase) *ClosingHandler {
	return &ClosingHandler{uc: uc}
}

// Close godoc
// @Summary      Cerrar periodo
// @Description  Concilia el total calculado del libro contra el contado y bloquea el periodo.
// @Description  Si la diferencia supera la tolerancia de la serie se exige justificación.
// @Tags         closings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CloseRequest  true  "series, period_key, counted_total, justification"
// @Success      201   {object}  dto.ClosingResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/closings [post]
func (h *ClosingHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Close(c.Context(), actor(c), closings.CloseInput{
		Series:        in.Series,
		PeriodKey:     in.PeriodKey,
		CountedTotal:  in.CountedTotal,
		Justification: in.Justification,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromClosing(out))
}

// List godoc
// @Summary      Listar cierres
// @Tags         closings
// @Security     Bearer
// @Produce      json
// @Param        series  query  string  false  "clinica | medias"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.ClosingListResponse
// @Router       /api/closings [get]
func (h *ClosingHandler) List(c *fiber.Ctx) error {
	p := page(c)
	list, err := h.uc.List(c.Context(), c.Query("series"), p.Limit, p.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.ClosingResponse, 0, len(list))
	for _, cl := range list {
		items = append(items, dto.FromClosing(cl))
	}
	return c.JSON(dto.ClosingListResponse{Items: items, Page: dto.NewPageResponse(p, len(items))})
}

// Locked godoc
// @Summary      Consultar bloqueo de un periodo
// @Tags         closings
// @Security     Bearer
// @Produce      json
// @Param        series      query  string  true  "clinica | medias"
// @Param        period_key  query  string  true  "YYYY-MM-DD"
// @Success      200  {object}  dto.LockStatusResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/closings/locked [get]
func (h *ClosingHandler) Locked(c *fiber.Ctx) error {
	series, periodKey := c.Query("series"), c.Query("period_key")
	locked, err := h.uc.IsLocked(c.Context(), series, periodKey)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LockStatusResponse{Series: series, PeriodKey: periodKey, Locked: locked})
}

// GetByID godoc
// @Summary      Obtener cierre
// @Tags         closings
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cierre"
// @Success      200  {object}  dto.ClosingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/closings/{id} [get]
func (h *ClosingHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromClosing(out))
}

// GetPDF godoc
// @Summary      Reporte PDF del cierre
// @Tags         closings
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del cierre"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/closings/{id}/pdf [get]
func (h *ClosingHandler) GetPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.uc.Report(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdfBytes)
}

// Reopen godoc
// @Summary      Reabrir cierre
// @Description  Solo admin. Desbloquea el periodo; el cierre queda en estado reopened.
// @Tags         closings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del cierre"
// @Param        body  body  dto.JustificationRequest  true  "Motivo (mínimo 10 caracteres)"
// @Success      200   {object}  dto.ClosingResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/closings/{id}/reopen [post]
func (h *ClosingHandler) Reopen(c *fiber.Ctx) error {
	justification, err := justificationFrom(c)
	if err != nil {
		return badBody(c)
	}
	out, err := h.uc.Reopen(c.Context(), actor(c), c.Params("id"), justification)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromClosing(out))
}

// Delete godoc
// @Summary      Eliminar cierre
// @Description  Solo admin. El consecutivo no se reutiliza.
// @Tags         closings
// @Security     Bearer
// @Accept       json
// @Param        id    path  string                    true  "ID del cierre"
// @Param        body  body  dto.JustificationRequest  false  "Motivo (mínimo 10 caracteres); también ?justification="
// @Success      204
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/closings/{id} [delete]
func (h *ClosingHandler) Delete(c *fiber.Ctx) error {
	justification, err := justificationFrom(c)
	if err != nil {
		return badBody(c)
	}
	if err := h.uc.Delete(c.Context(), actor(c), c.Params("id"), justification); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
