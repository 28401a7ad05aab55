package identifier

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/cannatrace/internal/domain"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
	ident "github.com/tu-usuario/cannatrace/internal/domain/identifier"
)

// Tope de la caminata de linaje: las cadenas reales tienen unos pocos pasos
// de proceso; el límite corta referencias circulares corruptas.
const maxLineageDepth = 32

// GetBatch devuelve un lote por su batch number.
func (uc *UseCase) GetBatch(ctx context.Context, batchNumber string) (*entity.Batch, error) {
	b, err := uc.batches.GetByNumber(ctx, batchNumber)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("lote %s: %w", batchNumber, domain.ErrNotFound)
	}
	return b, nil
}

// UpdateBatchStatus aplica una transición de estado del lote
// (ACTIVE -> COMPLETED -> ARCHIVED; cualquiera -> RECALLED).
func (uc *UseCase) UpdateBatchStatus(ctx context.Context, batchNumber, status, actor string) error {
	b, err := uc.GetBatch(ctx, batchNumber)
	if err != nil {
		return err
	}
	if !b.CanTransitionTo(status) {
		return fmt.Errorf("lote %s: %s -> %s: %w", batchNumber, b.Status, status, domain.ErrInvalidTransition)
	}
	if err := uc.batches.UpdateStatus(ctx, batchNumber, status); err != nil {
		return err
	}
	uc.log.Info().
		Str("batch_number", batchNumber).
		Str("from", b.Status).
		Str("to", status).
		Str("actor", actor).
		Msg("estado de lote actualizado")
	return nil
}

// BatchLineage recorre la cadena de lotes origen hacia atrás (referencia de
// solo lectura, no propiedad) y devuelve los eslabones del más reciente al
// más antiguo, incluido el lote consultado.
func (uc *UseCase) BatchLineage(ctx context.Context, batchNumber string) ([]*entity.Batch, error) {
	var chain []*entity.Batch
	visited := make(map[string]bool)
	current := batchNumber
	for current != "" && len(chain) < maxLineageDepth {
		if visited[current] {
			return nil, fmt.Errorf("linaje de %s: referencia circular en %s", batchNumber, current)
		}
		visited[current] = true
		b, err := uc.batches.GetByNumber(ctx, current)
		if err != nil {
			return nil, err
		}
		if b == nil {
			if len(chain) == 0 {
				return nil, fmt.Errorf("lote %s: %w", batchNumber, domain.ErrNotFound)
			}
			// El eslabón referenciado ya no existe (archivado y purgado):
			// la cadena termina ahí.
			break
		}
		chain = append(chain, b)
		current = b.SourceBatchNumber
	}
	return chain, nil
}

// GetSerial busca una unidad por serial completo o corto. Antes de tocar la
// base valida el check digit embebido: un identificador corrupto se rechaza
// con ErrCheckDigitMismatch en vez de producir un "no encontrado" engañoso.
func (uc *UseCase) GetSerial(ctx context.Context, serial string) (*entity.SerialNumber, error) {
	if _, err := uc.ValidateIdentifier(serial); err != nil {
		return nil, err
	}
	s, err := uc.serials.GetBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("serial %s: %w", serial, domain.ErrNotFound)
	}
	return s, nil
}

// UpdateSerialStatus aplica la máquina de estados de la unidad. SOLD exige
// customerRef y sella soldAt; volver a AVAILABLE después de una devolución
// limpia ambos.
func (uc *UseCase) UpdateSerialStatus(ctx context.Context, serial, status, customerRef, actor string) (*entity.SerialNumber, error) {
	s, err := uc.GetSerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	if !s.CanTransitionTo(status) {
		return nil, fmt.Errorf("serial %s: %s -> %s: %w", serial, s.Status, status, domain.ErrInvalidTransition)
	}

	var soldAt *time.Time
	switch status {
	case entity.SerialStatusSold:
		if customerRef == "" {
			return nil, fmt.Errorf("venta sin customer_ref: %w", domain.ErrInvalidArgument)
		}
		t := uc.now().UTC()
		soldAt = &t
	case entity.SerialStatusAvailable:
		customerRef = ""
	default:
		soldAt = s.SoldAt
		customerRef = s.CustomerRef
	}

	if err := uc.serials.UpdateStatus(ctx, s.FullSerialNumber, status, soldAt, customerRef); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("serial", s.FullSerialNumber).
		Str("from", s.Status).
		Str("to", status).
		Str("actor", actor).
		Msg("estado de unidad actualizado")

	s.Status = status
	s.SoldAt = soldAt
	s.CustomerRef = customerRef
	return s, nil
}

// ClassifyIdentifier expone la clasificación de formas a los handlers.
func ClassifyIdentifier(id string) (ident.Kind, bool) {
	return ident.Classify(id)
}
