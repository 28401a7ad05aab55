package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
)

// StockLevelRepository define el puerto de la proyección SOH. La proyección
// es una optimización: el motor puede sobrescribirla o regenerarla en
// cualquier momento a partir del libro de movimientos.
type StockLevelRepository interface {
	// Get devuelve la fila (producto, sede, lote); nil si no existe aún.
	Get(ctx context.Context, productID string, siteID int, batchNumber string) (*entity.StockLevel, error)
	// SumProductSite agrega la proyección por producto+sede ignorando el lote.
	SumProductSite(ctx context.Context, productID string, siteID int) (decimal.Decimal, error)
	// ApplyDelta aplica el delta con signo de un movimiento a una fila
	// (upsert atómico) y devuelve la cantidad resultante.
	ApplyDelta(ctx context.Context, productID string, siteID int, batchNumber string, delta decimal.Decimal, recordedAt time.Time) (decimal.Decimal, error)
	// Overwrite reemplaza la cantidad cacheada por el valor recalculado
	// (reparación de drift).
	Overwrite(ctx context.Context, productID string, siteID int, batchNumber string, quantity decimal.Decimal, at time.Time) error
	// List devuelve filas de la proyección, opcionalmente filtradas por
	// producto y/o sede, para el barrido de reconciliación.
	List(ctx context.Context, productID string, siteID *int) ([]*entity.StockLevel, error)
}
