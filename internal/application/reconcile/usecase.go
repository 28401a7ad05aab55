package reconcile

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/cannatrace/internal/domain/repository"
	"github.com/tu-usuario/cannatrace/pkg/logger"
)

// DriftReport describe una divergencia entre la proyección SOH y la verdad
// derivada del libro, ya reparada al momento de emitirse.
type DriftReport struct {
	ProductID   string
	SiteID      int
	BatchNumber string
	Cached      decimal.Decimal
	Recomputed  decimal.Decimal
	Delta       decimal.Decimal
	DetectedAt  time.Time
}

// UseCase audita la proyección contra el libro: para cada fila cacheada
// recalcula el agregado, y ante cualquier diferencia sobrescribe la
// proyección con el valor recalculado y emite un DriftReport. Nunca descarta
// una discrepancia en silencio.
type UseCase struct {
	movements repository.MovementRepository
	levels    repository.StockLevelRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el reconciliador.
func NewUseCase(movements repository.MovementRepository, levels repository.StockLevelRepository, log *logger.Logger) *UseCase {
	return &UseCase{
		movements: movements,
		levels:    levels,
		log:       log.Component("reconcile"),
		now:       time.Now,
	}
}

// WithClock fija el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Reconcile recorre la proyección (opcionalmente filtrada por producto y/o
// sede), compara cada fila contra el recálculo del libro y repara el drift.
// Devuelve un reporte por cada divergencia encontrada.
func (uc *UseCase) Reconcile(ctx context.Context, productID string, siteID *int) ([]DriftReport, error) {
	rows, err := uc.levels.List(ctx, productID, siteID)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	var reports []DriftReport
	for _, row := range rows {
		recomputed, err := uc.movements.SumSigned(ctx, row.ProductID, &row.SiteID, row.BatchNumber, now)
		if err != nil {
			return reports, err
		}
		if recomputed.Equal(row.Quantity) {
			continue
		}
		if err := uc.levels.Overwrite(ctx, row.ProductID, row.SiteID, row.BatchNumber, recomputed, now); err != nil {
			return reports, err
		}
		report := DriftReport{
			ProductID:   row.ProductID,
			SiteID:      row.SiteID,
			BatchNumber: row.BatchNumber,
			Cached:      row.Quantity,
			Recomputed:  recomputed,
			Delta:       row.Quantity.Sub(recomputed),
			DetectedAt:  now,
		}
		reports = append(reports, report)
		uc.log.Warn().
			Str("product_id", report.ProductID).
			Int("site_id", report.SiteID).
			Str("batch_number", report.BatchNumber).
			Str("cached", report.Cached.String()).
			Str("recomputed", report.Recomputed.String()).
			Str("delta", report.Delta.String()).
			Msg("drift detectado y reparado")
	}

	uc.log.Info().
		Int("rows", len(rows)).
		Int("drift", len(reports)).
		Msg("reconciliación completada")
	return reports, nil
}
