// Command migrate aplica o revierte las migraciones embebidas de PostgreSQL.
//
//	go run ./cmd/migrate -direction up
//	go run ./cmd/migrate -direction down -steps 1
package main

import (
	"flag"
	"os"

	"github.com/jhoicas/Clinica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Clinica-api/pkg/config"
	"github.com/jhoicas/Clinica-api/pkg/logger"
)

func main() {
	direction := flag.String("direction", "up", "up | down")
	steps := flag.Int("steps", 0, "cantidad de pasos (0 = todos)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	if cfg.DB.Driver != "postgres" {
		log.Error().Str("driver", cfg.DB.Driver).Msg("las migraciones solo aplican a STORE_DRIVER=postgres")
		os.Exit(1)
	}

	version, err := postgres.Migrate(cfg.DB.ConnectionString(), *direction, *steps)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Str("direction", *direction).Uint("version", version).Msg("migraciones completadas")
}
