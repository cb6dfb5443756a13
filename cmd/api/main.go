package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/Clinica-api/docs"
	"github.com/jhoicas/Clinica-api/internal/application/alerts"
	"github.com/jhoicas/Clinica-api/internal/application/closings"
	"github.com/jhoicas/Clinica-api/internal/application/medias"
	"github.com/jhoicas/Clinica-api/internal/application/movements"
	"github.com/jhoicas/Clinica-api/internal/application/payments"
	"github.com/jhoicas/Clinica-api/internal/application/ports"
	"github.com/jhoicas/Clinica-api/internal/domain/closing"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/infrastructure/memory"
	"github.com/jhoicas/Clinica-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Clinica-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Clinica-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Clinica-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Clinica-api/internal/interfaces/http"
	"github.com/jhoicas/Clinica-api/pkg/config"
	"github.com/jhoicas/Clinica-api/pkg/logger"
)

// @title                       Clinica API
// @version                     1.0
// @description                 API de caja de la clínica: libro de movimientos, cierres de caja, pagos y medias de compresión.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("la aplicación terminó con error")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("aplicación detenida")
}

// run arma las dependencias y atiende HTTP hasta que ctx se cancela. Los recursos abiertos se
// liberan con defer antes de volver, también cuando la inicialización falla a medias.
func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {

	// Almacenamiento: PostgreSQL en producción, memoria para desarrollo local.
	var (
		txRunner   ports.TxRunner
		healthPing func(context.Context) error
	)
	switch cfg.DB.Driver {
	case "memory":
		txRunner = memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		if cfg.DB.AutoMigrate {
			version, err := postgres.Migrate(cfg.DB.ConnectionString(), "up", 0)
			if err != nil {
				return fmt.Errorf("migraciones: %w", err)
			}
			log.Info().Uint("version", version).Msg("migraciones aplicadas")
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		defer pool.Close()
		pgRunner := postgres.NewTxRunner(pool)
		txRunner = pgRunner
		healthPing = pgRunner.Ping
	}

	// Alertas: siempre al log; además a Redis pub/sub si está configurado.
	notifier := alerts.Fanout{alerts.NewLogNotifier(log.Component("alertas"))}
	var locker ports.PeriodLocker = ports.NoopLocker{}
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("conexión a Redis: %w", err)
		}
		defer rdb.Close()
		locker = infraredis.NewPeriodLocker(rdb, time.Duration(cfg.Redis.LockTTLSecs)*time.Second, log.Component("candado"))
		notifier = append(notifier, infraredis.NewAlertPublisher(rdb, cfg.Redis.AlertChannel, log.Component("alertas-redis")))
		log.Info().Str("addr", cfg.Redis.Addr).Str("channel", cfg.Redis.AlertChannel).Msg("redis habilitado")
	}

	policies := []closing.Policy{
		{Series: entity.SeriesClinic, Ledger: entity.LedgerClinicCash, Prefix: cfg.Closing.ClinicPrefix, Tolerance: cfg.Closing.ClinicTolerance},
		{Series: entity.SeriesMedias, Ledger: entity.LedgerMediasCash, Prefix: cfg.Closing.MediasPrefix, Tolerance: cfg.Closing.MediasTolerance},
	}

	appMetrics := metrics.New()
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)

	ledgerUC := movements.NewUseCase(txRunner, log.Component("movimientos"))
	closingUC := closings.NewUseCase(txRunner, policies, log.Component("cierres")).
		WithLocker(locker).
		WithNotifier(notifier).
		WithMetrics(appMetrics).
		WithReportGenerator(pdfGenerator)
	paymentUC := payments.NewUseCase(txRunner, notifier, log.Component("pagos"))
	mediasUC := medias.NewUseCase(txRunner, log.Component("medias"))
	auditSvc := alerts.NewService(txRunner)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(appMetrics.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Clinica API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:   ledgerUC,
		ClosingUC:  closingUC,
		PaymentUC:  paymentUC,
		MediasUC:   mediasUC,
		AuditSvc:   auditSvc,
		JWTSecret:  cfg.JWT.Secret,
		AppName:    cfg.App.Name,
		HealthPing: healthPing,
		Metrics:    appMetrics.Handler(),
	})

	serveErr := make(chan error, 1)
	go func() { serveErr <- app.Listen(cfg.HTTP.Addr()) }()

	select {
	case err := <-serveErr:
		return fmt.Errorf("servidor HTTP: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("apagado del servidor: %w", err)
	}
	return nil
}
