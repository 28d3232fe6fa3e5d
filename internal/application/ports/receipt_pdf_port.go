package ports

import (
	"context"

	"github.com/jhoicas/mesa-api/internal/domain/entity"
)

// ReceiptPDFGenerator genera la versión imprimible del comprobante de una orden.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, receipt *entity.Receipt) ([]byte, error)
}
