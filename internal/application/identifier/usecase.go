package identifier

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/cannatrace/internal/domain"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
	ident "github.com/tu-usuario/cannatrace/internal/domain/identifier"
	"github.com/tu-usuario/cannatrace/internal/domain/repository"
	"github.com/tu-usuario/cannatrace/pkg/logger"
)

// Categorías de partición del asignador de secuencias. La clave completa
// incluye la sede y la fecha, así que el contador se reinicia solo cada día
// y sedes distintas nunca compiten.
const (
	categoryUnit  = "unit"
	categoryShort = "short"
)

// UseCase emite los identificadores con metadatos embebidos (batch numbers,
// seriales) y es dueño del ciclo de vida de lotes y unidades serializadas.
// La generación es pura salvo dos efectos: la asignación atómica de secuencia
// y el log de auditoría de cada emisión (quién, cuándo, qué).
type UseCase struct {
	seq     repository.SequenceAllocator
	batches repository.BatchRepository
	serials repository.SerialRepository
	log     *logger.Logger
	now     func() time.Time
}

// NewUseCase construye el generador de identificadores.
func NewUseCase(
	seq repository.SequenceAllocator,
	batches repository.BatchRepository,
	serials repository.SerialRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		seq:     seq,
		batches: batches,
		serials: serials,
		log:     log.Component("identifier"),
		now:     time.Now,
	}
}

// WithClock fija el reloj del generador (tests y reprocesos).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// GenerateBatchNumber emite un batch number de 16 dígitos para (sede, tipo de
// lote) con la secuencia diaria de esa partición, y crea el lote en estado
// ACTIVE. La validación de rangos ocurre antes de asignar secuencia: una
// petición rechazada no consume dígitos.
func (uc *UseCase) GenerateBatchNumber(ctx context.Context, siteID, batchType int, sourceBatchNumber, actor string) (*entity.Batch, error) {
	if siteID < 1 || siteID > 99 {
		return nil, fmt.Errorf("site_id %d: %w", siteID, domain.ErrInvalidArgument)
	}
	if batchType < 1 || batchType > 9 {
		return nil, fmt.Errorf("batch_type %d: %w", batchType, domain.ErrInvalidArgument)
	}
	if sourceBatchNumber != "" {
		if _, ok := ident.Classify(sourceBatchNumber); !ok {
			return nil, fmt.Errorf("source_batch_number %q: %w", sourceBatchNumber, domain.ErrInvalidArgument)
		}
		source, err := uc.batches.GetByNumber(ctx, sourceBatchNumber)
		if err != nil {
			return nil, err
		}
		if source == nil {
			return nil, fmt.Errorf("lote origen %s: %w", sourceBatchNumber, domain.ErrNotFound)
		}
	}

	day := uc.now().UTC()
	partition := entity.PartitionKey(siteID, fmt.Sprintf("batch-%d", batchType), day)
	seq, err := uc.seq.Next(ctx, partition, ident.MaxBatchSequence)
	if err != nil {
		return nil, err
	}

	batch := &entity.Batch{
		BatchNumber:       ident.ComposeBatchNumber(siteID, batchType, day, seq),
		SiteID:            siteID,
		BatchType:         batchType,
		CreatedDate:       day.Truncate(24 * time.Hour),
		SourceBatchNumber: sourceBatchNumber,
		Status:            entity.BatchStatusActive,
		CreatedAt:         day,
		CreatedBy:         actor,
	}
	if err := uc.batches.Create(ctx, batch); err != nil {
		// Un duplicado aquí es estructuralmente imposible con asignación
		// atómica; si aparece es un bug del asignador y se escala, no se reintenta.
		uc.log.Error().Err(err).Str("batch_number", batch.BatchNumber).Msg("fallo creando lote")
		return nil, err
	}

	uc.log.Info().
		Str("identifier", batch.BatchNumber).
		Str("kind", string(ident.KindBatchNumber)).
		Str("actor", actor).
		Int("site_id", siteID).
		Int("sequence", seq).
		Msg("identificador emitido")
	return batch, nil
}

// FullSerialInput entrada para emitir el serial completo de una unidad.
// UnitSequence en cero delega la secuencia de unidad al asignador.
type FullSerialInput struct {
	SiteID       int
	StrainID     int
	ProductType  int
	BatchNumber  string
	ProductID    string
	UnitSequence int
	WeightGrams  decimal.Decimal
	Actor        string
}

// GenerateFullSerialNumber emite el serial de 31 dígitos de una unidad
// serializada (con check encadenado de dos dígitos), junto con su serial
// corto, y crea la fila SerialNumber en estado AVAILABLE.
func (uc *UseCase) GenerateFullSerialNumber(ctx context.Context, in FullSerialInput) (*entity.SerialNumber, error) {
	if in.SiteID < 1 || in.SiteID > 99 {
		return nil, fmt.Errorf("site_id %d: %w", in.SiteID, domain.ErrInvalidArgument)
	}
	if in.StrainID < 1 || in.StrainID > 999 {
		return nil, fmt.Errorf("strain_id %d: %w", in.StrainID, domain.ErrInvalidArgument)
	}
	if in.ProductType < 1 || in.ProductType > 99 {
		return nil, fmt.Errorf("product_type %d: %w", in.ProductType, domain.ErrInvalidArgument)
	}
	if in.ProductID == "" {
		return nil, fmt.Errorf("product_id vacío: %w", domain.ErrInvalidArgument)
	}
	weightCg, err := ident.EncodeWeightCentigrams(in.WeightGrams)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrWeightOutOfRange)
	}
	batch, err := uc.batches.GetByNumber(ctx, in.BatchNumber)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("lote %s: %w", in.BatchNumber, domain.ErrNotFound)
	}
	batchSeq, err := ident.BatchSequence(in.BatchNumber)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidArgument)
	}

	day := uc.now().UTC()
	unitSeq := in.UnitSequence
	if unitSeq == 0 {
		unitSeq, err = uc.seq.Next(ctx, entity.PartitionKey(in.SiteID, categoryUnit, day), ident.MaxUnitSequence)
		if err != nil {
			return nil, err
		}
	} else if unitSeq < 1 || unitSeq > ident.MaxUnitSequence {
		return nil, fmt.Errorf("unit_sequence %d: %w", unitSeq, domain.ErrInvalidArgument)
	}

	full, err := ident.ComposeFullSerial(in.SiteID, in.StrainID, in.ProductType, day, batchSeq, unitSeq, weightCg)
	if err != nil {
		return nil, err
	}
	short, err := uc.shortSerial(ctx, in.SiteID, day)
	if err != nil {
		return nil, err
	}

	serial := &entity.SerialNumber{
		FullSerialNumber:  full,
		ShortSerialNumber: short,
		BatchNumber:       in.BatchNumber,
		ProductID:         in.ProductID,
		SiteID:            in.SiteID,
		WeightGrams:       in.WeightGrams,
		Status:            entity.SerialStatusAvailable,
		CreatedAt:         day,
		CreatedBy:         in.Actor,
	}
	if err := uc.serials.Create(ctx, serial); err != nil {
		uc.log.Error().Err(err).Str("serial", full).Msg("fallo creando unidad serializada")
		return nil, err
	}

	uc.log.Info().
		Str("identifier", full).
		Str("short", short).
		Str("kind", string(ident.KindFullSerial)).
		Str("actor", in.Actor).
		Str("batch_number", in.BatchNumber).
		Msg("identificador emitido")
	return serial, nil
}

// GenerateShortSerialNumber emite un serial corto independiente (13 dígitos,
// 14 con el dígito Luhn para etiquetas EAN).
func (uc *UseCase) GenerateShortSerialNumber(ctx context.Context, siteID int, withCheck bool, actor string) (string, error) {
	if siteID < 1 || siteID > 99 {
		return "", fmt.Errorf("site_id %d: %w", siteID, domain.ErrInvalidArgument)
	}
	day := uc.now().UTC()
	short, err := uc.shortSerialChecked(ctx, siteID, day, withCheck)
	if err != nil {
		return "", err
	}
	uc.log.Info().
		Str("identifier", short).
		Str("kind", string(ident.KindShortSerial)).
		Str("actor", actor).
		Msg("identificador emitido")
	return short, nil
}

func (uc *UseCase) shortSerial(ctx context.Context, siteID int, day time.Time) (string, error) {
	return uc.shortSerialChecked(ctx, siteID, day, false)
}

func (uc *UseCase) shortSerialChecked(ctx context.Context, siteID int, day time.Time, withCheck bool) (string, error) {
	seq, err := uc.seq.Next(ctx, entity.PartitionKey(siteID, categoryShort, day), ident.MaxShortSequence)
	if err != nil {
		return "", err
	}
	return ident.ComposeShortSerial(siteID, day, seq, withCheck)
}

// ValidateIdentifier clasifica y valida un identificador escaneado. Para las
// formas que embeben check digit una falla es ErrCheckDigitMismatch (nunca se
// acepta en silencio); para el resto, ErrInvalidArgument.
func (uc *UseCase) ValidateIdentifier(id string) (ident.Kind, error) {
	kind, ok := ident.Classify(id)
	if ok {
		return kind, nil
	}
	switch kind {
	case ident.KindFullSerial, ident.KindShortSerialChecked:
		return kind, fmt.Errorf("identificador %s: %w", id, domain.ErrCheckDigitMismatch)
	default:
		return kind, fmt.Errorf("identificador %q: %w", id, domain.ErrInvalidArgument)
	}
}
