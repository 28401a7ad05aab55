package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/cannatrace/internal/domain"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
	"github.com/tu-usuario/cannatrace/internal/domain/repository"
	"github.com/tu-usuario/cannatrace/pkg/logger"
)

// UseCase es el motor SOH: responde "cuánto hay" derivándolo siempre del
// libro de movimientos. La proyección cacheada es solo una optimización de
// lectura; FullRecompute es la verdad y la proyección debe coincidir con ella
// tras cualquier secuencia de deltas incrementales sobre el mismo conjunto de
// movimientos.
type UseCase struct {
	movements repository.MovementRepository
	levels    repository.StockLevelRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el motor.
func NewUseCase(movements repository.MovementRepository, levels repository.StockLevelRepository, log *logger.Logger) *UseCase {
	return &UseCase{
		movements: movements,
		levels:    levels,
		log:       log.Component("stock"),
		now:       time.Now,
	}
}

// WithClock fija el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// FullRecompute calcula el stock autoritativo sumando las cantidades con
// signo de todos los movimientos hasta asOf (IN suma, OUT resta). Los pares
// original+compensación se cancelan solos, así que el resultado es correcto
// para cualquier fecha, incluso anterior a una anulación.
func (uc *UseCase) FullRecompute(ctx context.Context, productID string, siteID int, batchNumber string, asOf time.Time) (decimal.Decimal, error) {
	if productID == "" {
		return decimal.Zero, fmt.Errorf("product_id vacío: %w", domain.ErrInvalidArgument)
	}
	return uc.movements.SumSigned(ctx, productID, &siteID, batchNumber, asOf)
}

// GetStockOnHand devuelve el stock de (producto, sede[, lote]) a una fecha.
// Para "ahora" lee la proyección (y la ceba si falta la fila); para fechas
// históricas recalcula del libro. Un saldo negativo se reporta con
// advertencia, nunca como error: la política de bloqueo es del caller.
func (uc *UseCase) GetStockOnHand(ctx context.Context, productID string, siteID int, batchNumber string, asOf time.Time) (decimal.Decimal, error) {
	if productID == "" {
		return decimal.Zero, fmt.Errorf("product_id vacío: %w", domain.ErrInvalidArgument)
	}
	now := uc.now().UTC()
	historical := !asOf.IsZero() && asOf.Before(now)

	var qty decimal.Decimal
	if historical {
		sum, err := uc.movements.SumSigned(ctx, productID, &siteID, batchNumber, asOf)
		if err != nil {
			return decimal.Zero, err
		}
		qty = sum
	} else if batchNumber == "" {
		sum, err := uc.levels.SumProductSite(ctx, productID, siteID)
		if err != nil {
			return decimal.Zero, err
		}
		qty = sum
	} else {
		level, err := uc.levels.Get(ctx, productID, siteID, batchNumber)
		if err != nil {
			return decimal.Zero, err
		}
		if level == nil {
			// Fila fría: recalcular del libro y cebar la proyección.
			recomputed, err := uc.movements.SumSigned(ctx, productID, &siteID, batchNumber, now)
			if err != nil {
				return decimal.Zero, err
			}
			if err := uc.levels.Overwrite(ctx, productID, siteID, batchNumber, recomputed, now); err != nil {
				return decimal.Zero, err
			}
			qty = recomputed
		} else {
			qty = level.Quantity
		}
	}

	if qty.IsNegative() {
		uc.log.Warn().
			Str("product_id", productID).
			Int("site_id", siteID).
			Str("batch_number", batchNumber).
			Str("quantity", qty.String()).
			Msg("stock negativo")
	}
	return qty, nil
}

// IncrementalApply actualiza la proyección con el delta con signo de un
// movimiento, sin reescanear historia. El camino normal pasa por la
// transacción del libro; esta operación existe para reconstrucciones y
// reprocesos.
func (uc *UseCase) IncrementalApply(ctx context.Context, m *entity.Movement) (decimal.Decimal, error) {
	if m == nil {
		return decimal.Zero, fmt.Errorf("movimiento nil: %w", domain.ErrInvalidArgument)
	}
	return uc.levels.ApplyDelta(ctx, m.ProductID, m.SiteID, m.BatchNumber, m.SignedQuantity(), m.RecordedAt)
}
