package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/application/medias"
)

// MediasHandler productos, stock y ventas de medias de compresión (protegido).
type MediasHandler struct {
	uc *medias.UseCase
}

// NewMediasHandler construye el handler.
func NewMediasHandler(uc *medias.UseCase) *MediasHandler {
	return &MediasHandler{uc: uc}
}

// CreateProduct godoc
// @Summary      Crear producto
// @Tags         medias
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/medias/products [post]
func (h *MediasHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	p, err := h.uc.CreateProduct(c.Context(), actor(c), medias.ProductInput{
		SKU:         in.SKU,
		Name:        in.Name,
		Size:        in.Size,
		Compression: in.Compression,
		Price:       in.Price,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromProduct(p))
}

// ListProducts godoc
// @Summary      Listar productos
// @Tags         medias
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {array}  dto.ProductResponse
// @Router       /api/medias/products [get]
func (h *MediasHandler) ListProducts(c *fiber.Ctx) error {
	pg := page(c)
	list, err := h.uc.ListProducts(c.Context(), pg.Limit, pg.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.FromProduct(p))
	}
	return c.JSON(out)
}

// Stock godoc
// @Summary      Stock derivado de un producto
// @Description  Suma de los movimientos de inventario_medias del producto.
// @Tags         medias
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/medias/products/{id}/stock [get]
func (h *MediasHandler) Stock(c *fiber.Ctx) error {
	agg, err := h.uc.Stock(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockResponse{
		ProductID:     agg.Key,
		Quantity:      agg.GrandTotal,
		ByKind:        agg.TotalsByCategory,
		MovementCount: agg.MovementCount,
	})
}

// CreateSale godoc
// @Summary      Registrar venta
// @Description  Descuenta inventario y suma a caja_medias en una sola transacción.
// @Tags         medias
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "date, product_id, quantity, unit_price, method"
// @Success      201   {object}  dto.SaleResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/medias/sales [post]
func (h *MediasHandler) CreateSale(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	s, err := h.uc.CreateSale(c.Context(), actor(c), medias.SaleInput{
		PeriodKey: in.PeriodKey,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Method:    in.Method,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromSale(s))
}

// ListSales godoc
// @Summary      Ventas del día
// @Tags         medias
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  true  "YYYY-MM-DD"
// @Success      200   {array}   dto.SaleResponse
// @Router       /api/medias/sales [get]
func (h *MediasHandler) ListSales(c *fiber.Ctx) error {
	list, err := h.uc.ListSales(c.Context(), c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.FromSale(s))
	}
	return c.JSON(out)
}
