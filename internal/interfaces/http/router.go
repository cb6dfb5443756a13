package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Clinica-api/internal/application/alerts"
	"github.com/jhoicas/Clinica-api/internal/application/closings"
	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/application/medias"
	"github.com/jhoicas/Clinica-api/internal/application/movements"
	"github.com/jhoicas/Clinica-api/internal/application/payments"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC   *movements.UseCase
	ClosingUC  *closings.UseCase
	PaymentUC  *payments.UseCase
	MediasUC   *medias.UseCase
	AuditSvc   *alerts.Service
	JWTSecret  string
	AppName    string
	HealthPing func(ctx context.Context) error // opcional: verifica el almacenamiento
	Metrics    fiber.Handler                   // opcional: expone /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.HealthPing != nil {
			if err := deps.HealthPing(c.Context()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics)
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token con un rol del personal)
	protected := api.Group("/",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(entity.RoleAdmin, entity.RoleMedico, entity.RoleEnfermera, entity.RoleSecretaria),
	)

	// Libro de movimientos
	ledgerHandler := NewLedgerHandler(deps.LedgerUC)
	ledgerGroup := protected.Group("/ledger/:ledger")
	ledgerGroup.Post("/movements", ledgerHandler.RecordMovement)
	ledgerGroup.Get("/movements", ledgerHandler.ListMovements)
	ledgerGroup.Get("/aggregate", ledgerHandler.Aggregate)

	// Cierres de caja. /locked antes de /:id
	closingHandler := NewClosingHandler(deps.ClosingUC)
	closingGroup := protected.Group("/closings")
	closingGroup.Post("/", closingHandler.Close)
	closingGroup.Get("/", closingHandler.List)
	closingGroup.Get("/locked", closingHandler.Locked)
	closingGroup.Get("/:id", closingHandler.GetByID)
	closingGroup.Get("/:id/pdf", closingHandler.GetPDF)
	closingGroup.Post("/:id/reopen", RequireRole(entity.RoleAdmin), closingHandler.Reopen)
	closingGroup.Delete("/:id", RequireRole(entity.RoleAdmin), closingHandler.Delete)

	// Pagos de la clínica
	paymentHandler := NewPaymentHandler(deps.PaymentUC)
	paymentGroup := protected.Group("/payments")
	paymentGroup.Post("/", paymentHandler.Create)
	paymentGroup.Get("/", paymentHandler.ListByDate)
	paymentGroup.Post("/:id/void", RequireRole(entity.RoleAdmin, entity.RoleSecretaria), paymentHandler.Void)

	// Medias de compresión
	mediasHandler := NewMediasHandler(deps.MediasUC)
	mediasGroup := protected.Group("/medias")
	mediasGroup.Post("/products", RequireRole(entity.RoleAdmin), mediasHandler.CreateProduct)
	mediasGroup.Get("/products", mediasHandler.ListProducts)
	mediasGroup.Get("/products/:id/stock", mediasHandler.Stock)
	mediasGroup.Post("/sales", mediasHandler.CreateSale)
	mediasGroup.Get("/sales", mediasHandler.ListSales)

	// Auditoría (solo admin)
	auditHandler := NewAuditHandler(deps.AuditSvc)
	protected.Get("/audit-events", RequireRole(entity.RoleAdmin), auditHandler.List)
}
