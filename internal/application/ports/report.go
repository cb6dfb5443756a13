package ports

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// ClosingReportGenerator genera el reporte imprimible (PDF) de un cierre de caja.
type ClosingReportGenerator interface {
	GenerateClosingPDF(ctx context.Context, c *entity.Closing) ([]byte, error)
}
