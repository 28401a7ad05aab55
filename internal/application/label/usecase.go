package label

import (
	"context"
	"fmt"

	"github.com/tu-usuario/cannatrace/internal/domain"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
	"github.com/tu-usuario/cannatrace/internal/domain/repository"
)

// PDFGenerator genera la etiqueta imprimible de una unidad serializada:
// serial completo legible, código de barras del serial corto y datos del lote.
type PDFGenerator interface {
	GenerateUnitLabel(ctx context.Context, serial *entity.SerialNumber, batch *entity.Batch) ([]byte, error)
}

// UseCase orquesta la impresión de etiquetas de unidades.
type UseCase struct {
	serials   repository.SerialRepository
	batches   repository.BatchRepository
	generator PDFGenerator
}

// NewUseCase construye el caso de uso.
func NewUseCase(serials repository.SerialRepository, batches repository.BatchRepository, generator PDFGenerator) *UseCase {
	return &UseCase{serials: serials, batches: batches, generator: generator}
}

// UnitLabelPDF devuelve los bytes del PDF de etiqueta para un serial
// (completo o corto).
func (uc *UseCase) UnitLabelPDF(ctx context.Context, serial string) ([]byte, error) {
	s, err := uc.serials.GetBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("serial %s: %w", serial, domain.ErrNotFound)
	}
	b, err := uc.batches.GetByNumber(ctx, s.BatchNumber)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateUnitLabel(ctx, s, b)
}
