package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/application/movements"
	"github.com/jhoicas/Clinica-api/internal/domain"
)

// LedgerHandler maneja el libro de movimientos (protegido).
type LedgerHandler struct {
	uc *movements.UseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *movements.UseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// RecordMovement godoc
// @Summary      Registrar movimiento
// @Description  Agrega un movimiento inmutable. El signo del monto debe corresponder al tipo.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        ledger  path  string                     true  "caja_clinica | caja_medias | inventario_medias"
// @Param        body    body  dto.RecordMovementRequest  true  "key, kind, category, amount"
// @Success      201     {object}  dto.MovementResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Failure      422     {object}  dto.ErrorResponse
// @Router       /api/ledger/{ledger}/movements [post]
func (h *LedgerHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	m, err := h.uc.Record(c.Context(), actor(c), movements.Input{
		Ledger:    c.Params("ledger"),
		Key:       in.Key,
		Kind:      in.Kind,
		Category:  in.Category,
		Amount:    in.Amount,
		Reference: in.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovement(m))
}

// ListMovements godoc
// @Summary      Listar movimientos de una clave
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        ledger  path   string  true  "Libro"
// @Param        key     query  string  true  "Fecha YYYY-MM-DD o ID de producto"
// @Success      200     {array}   dto.MovementResponse
// @Failure      422     {object}  dto.ErrorResponse
// @Router       /api/ledger/{ledger}/movements [get]
func (h *LedgerHandler) ListMovements(c *fiber.Ctx) error {
	list, err := h.uc.List(c.Context(), c.Params("ledger"), c.Query("key"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.FromMovement(m))
	}
	return c.JSON(out)
}

// Aggregate godoc
// @Summary      Totales derivados
// @Description  Suma los movimientos de la clave por categoría. as_of (RFC3339) limita a los creados hasta ese instante.
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        ledger  path   string  true   "Libro"
// @Param        key     query  string  true   "Fecha YYYY-MM-DD o ID de producto"
// @Param        as_of   query  string  false  "Instante de corte (RFC3339)"
// @Success      200     {object}  dto.AggregateResponse
// @Failure      422     {object}  dto.ErrorResponse
// @Router       /api/ledger/{ledger}/aggregate [get]
func (h *LedgerHandler) Aggregate(c *fiber.Ctx) error {
	var asOf *time.Time
	if raw := c.Query("as_of"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return writeError(c, domain.Invalid(domain.ErrInvalidInput, "as_of", "se espera formato RFC3339"))
		}
		asOf = &t
	}
	agg, err := h.uc.Aggregate(c.Context(), c.Params("ledger"), c.Query("key"), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromAggregate(agg))
}
