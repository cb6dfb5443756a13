package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/domain"
)

type errorMapping struct {
	kind   error
	status int
	code   string
}

// errorTable traduce los errores de dominio a status HTTP. El orden importa: gana el primero que coincide.
var errorTable = []errorMapping{
	{domain.ErrInvalidAmount, fiber.StatusUnprocessableEntity, "INVALID_AMOUNT"},
	{domain.ErrUnknownKey, fiber.StatusUnprocessableEntity, "UNKNOWN_KEY"},
	{domain.ErrJustificationRequired, fiber.StatusUnprocessableEntity, "JUSTIFICATION_REQUIRED"},
	{domain.ErrInvalidInput, fiber.StatusUnprocessableEntity, "VALIDATION"},
	{domain.ErrAlreadyClosed, fiber.StatusConflict, "ALREADY_CLOSED"},
	{domain.ErrPeriodClosed, fiber.StatusConflict, "PERIOD_CLOSED"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrStoreUnavailable, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
}

// writeError responde con el status y código del error de dominio; cualquier otro error es 500.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorTable {
		if errors.Is(err, m.kind) {
			resp := dto.ErrorResponse{Code: m.code, Message: domain.Reason(err)}
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				resp.Field = ve.Field
			}
			return c.Status(m.status).JSON(resp)
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// page lee limit/offset de la query con los límites de los listados.
func page(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	p.Normalize()
	return p
}

// justificationFrom lee la justificación del cuerpo JSON o, sin cuerpo, de ?justification=.
func justificationFrom(c *fiber.Ctx) (string, error) {
	if len(c.Body()) == 0 {
		return c.Query("justification"), nil
	}
	var in dto.JustificationRequest
	if err := c.BodyParser(&in); err != nil {
		return "", err
	}
	return in.Justification, nil
}
