package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/application/payments"
)

// PaymentHandler maneja los pagos de la clínica (protegido).
type PaymentHandler struct {
	uc *payments.UseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *payments.UseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar pago
// @Description  Registra el pago y su entrada en caja_clinica para la fecha indicada.
// @Tags         payments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePaymentRequest  true  "date, patient_id, concept, amount, method"
// @Success      201   {object}  dto.PaymentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/payments [post]
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePaymentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	p, err := h.uc.Create(c.Context(), actor(c), payments.CreateInput{
		PeriodKey: in.PeriodKey,
		PatientID: in.PatientID,
		Concept:   in.Concept,
		Amount:    in.Amount,
		Method:    in.Method,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromPayment(p))
}

// ListByDate godoc
// @Summary      Pagos del día
// @Tags         payments
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  true  "YYYY-MM-DD"
// @Success      200   {array}   dto.PaymentResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/payments [get]
func (h *PaymentHandler) ListByDate(c *fiber.Ctx) error {
	list, err := h.uc.ListByDate(c.Context(), c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.FromPayment(p))
	}
	return c.JSON(out)
}

// Void godoc
// @Summary      Anular pago
// @Description  admin o secretaria. Registra una salida compensatoria; el día no debe estar cerrado.
// @Tags         payments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del pago"
// @Param        body  body  dto.JustificationRequest  true  "Motivo (mínimo 10 caracteres)"
// @Success      200   {object}  dto.PaymentResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/payments/{id}/void [post]
func (h *PaymentHandler) Void(c *fiber.Ctx) error {
	justification, err := justificationFrom(c)
	if err != nil {
		return badBody(c)
	}
	p, err := h.uc.Void(c.Context(), actor(c), c.Params("id"), justification)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromPayment(p))
}
