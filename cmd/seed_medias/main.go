// seed_medias carga el catálogo inicial de medias de compresión y registra el stock inicial como compra.
// Acepta el libro de Excel (.xlsx, primera hoja) o el CSV exportado de Excel
// (separado por ";" y codificado en Windows-1252).
//
// Uso: go run ./cmd/seed_medias [ruta/catalogo.xlsx|ruta/catalogo.csv]
// Columnas: sku;nombre;talla;compresion;precio;stock
// Los SKU ya existentes se omiten.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Clinica-api/internal/application/medias"
	"github.com/jhoicas/Clinica-api/internal/application/movements"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Clinica-api/pkg/config"
	"github.com/jhoicas/Clinica-api/pkg/logger"
)

// seedRow una fila del catálogo.
type seedRow struct {
	Product medias.ProductInput
	Stock   decimal.Decimal
}

var seedActor = entity.Actor{ID: "seed", Role: entity.RoleAdmin}

func main() {
	path := "catalogo_medias.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed_medias"})

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("abrir catálogo")
	}
	defer f.Close()

	var rows []seedRow
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = parseWorkbook(f)
	} else {
		rows, err = parseCatalog(f)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	txRunner := postgres.NewTxRunner(pool)

	mediasUC := medias.NewUseCase(txRunner, log.Component("medias"))
	ledgerUC := movements.NewUseCase(txRunner, log.Component("movimientos"))

	created, skipped := 0, 0
	for _, r := range rows {
		p, err := mediasUC.CreateProduct(ctx, seedActor, r.Product)
		if errors.Is(err, domain.ErrConflict) {
			skipped++
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("sku", r.Product.SKU).Msg("crear producto")
		}
		if r.Stock.IsPositive() {
			_, err = ledgerUC.Record(ctx, seedActor, movements.Input{
				Ledger:    entity.LedgerMediasInventory,
				Key:       p.ID,
				Kind:      entity.KindCompra,
				Amount:    r.Stock,
				Reference: "seed",
			})
			if err != nil {
				log.Fatal().Err(err).Str("sku", p.SKU).Msg("stock inicial")
			}
		}
		created++
	}
	log.Info().Int("creados", created).Int("omitidos", skipped).Msg("catálogo cargado")
}

// parseCatalog decodifica Windows-1252 y lee las filas; la primera fila es el encabezado.
func parseCatalog(r io.Reader) ([]seedRow, error) {
	reader := csv.NewReader(transform.NewReader(r, charmap.Windows1252.NewDecoder()))
	reader.Comma = ';'
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	return rowsFromRecords(records, normalizeNumber)
}

// parseWorkbook lee la primera hoja del libro. Las celdas numéricas llegan sin formato regional.
func parseWorkbook(r io.Reader) ([]seedRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	defer f.Close()

	records, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	return rowsFromRecords(records, func(s string) string {
		return strings.TrimPrefix(strings.TrimSpace(s), "$")
	})
}

func rowsFromRecords(records [][]string, number func(string) string) ([]seedRow, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("catálogo sin filas de datos")
	}

	out := make([]seedRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 6 {
			return nil, fmt.Errorf("línea %d: se esperan 6 columnas, hay %d", line, len(rec))
		}
		price, err := decimal.NewFromString(number(rec[4]))
		if err != nil {
			return nil, fmt.Errorf("línea %d: precio %q: %w", line, rec[4], err)
		}
		stock, err := decimal.NewFromString(number(rec[5]))
		if err != nil {
			return nil, fmt.Errorf("línea %d: stock %q: %w", line, rec[5], err)
		}
		out = append(out, seedRow{
			Product: medias.ProductInput{
				SKU:         strings.TrimSpace(rec[0]),
				Name:        strings.TrimSpace(rec[1]),
				Size:        strings.TrimSpace(rec[2]),
				Compression: strings.TrimSpace(rec[3]),
				Price:       price,
			},
			Stock: stock,
		})
	}
	return out, nil
}

// normalizeNumber "$ 60.000" → "60000". Excel en es-CO usa punto de miles.
func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	return strings.ReplaceAll(s, ",", ".")
}
