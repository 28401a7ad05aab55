package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
	"github.com/tu-usuario/cannatrace/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de la proyección SOH sobre PostgreSQL.
// La tabla stock_levels no es autoritativa: el motor puede truncarla y
// regenerarla del libro en cualquier momento. batch_number '' agrupa el
// stock sin lote (la PK no admite NULL).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// Get obtiene la fila (producto, sede, lote); nil si no existe aún.
func (r *StockLevelRepo) Get(ctx context.Context, productID string, siteID int, batchNumber string) (*entity.StockLevel, error) {
	query := `
		SELECT product_id, site_id, batch_number, quantity, last_movement_recorded_at, updated_at
		FROM stock_levels WHERE product_id = $1 AND site_id = $2 AND batch_number = $3`
	var l entity.StockLevel
	err := r.q.QueryRow(ctx, query, productID, siteID, batchNumber).Scan(
		&l.ProductID, &l.SiteID, &l.BatchNumber, &l.Quantity, &l.LastMovementRecordedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return &l, nil
}

// SumProductSite agrega la proyección de un producto en una sede ignorando el lote.
func (r *StockLevelRepo) SumProductSite(ctx context.Context, productID string, siteID int) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_levels WHERE product_id = $1 AND site_id = $2`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, productID, siteID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum stock levels: %w", err)
	}
	return sum, nil
}

// ApplyDelta aplica el delta con signo de un movimiento en un solo upsert
// atómico por fila y devuelve la cantidad resultante. No requiere bloqueo
// más allá del propio UPDATE de fila.
func (r *StockLevelRepo) ApplyDelta(ctx context.Context, productID string, siteID int, batchNumber string, delta decimal.Decimal, recordedAt time.Time) (decimal.Decimal, error) {
	query := `
		INSERT INTO stock_levels (product_id, site_id, batch_number, quantity, last_movement_recorded_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (product_id, site_id, batch_number)
		DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity,
			last_movement_recorded_at = GREATEST(stock_levels.last_movement_recorded_at, EXCLUDED.last_movement_recorded_at),
			updated_at = now()
		RETURNING quantity`
	var balance decimal.Decimal
	if err := r.q.QueryRow(ctx, query, productID, siteID, batchNumber, delta, recordedAt).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("apply stock delta: %w", err)
	}
	return balance, nil
}

// Overwrite reemplaza la cantidad cacheada con el valor recalculado del libro.
// El recálculo consumió el libro hasta `at`, así que la marca de último
// movimiento también avanza hasta ahí.
func (r *StockLevelRepo) Overwrite(ctx context.Context, productID string, siteID int, batchNumber string, quantity decimal.Decimal, at time.Time) error {
	query := `
		INSERT INTO stock_levels (product_id, site_id, batch_number, quantity, last_movement_recorded_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (product_id, site_id, batch_number)
		DO UPDATE SET quantity = EXCLUDED.quantity,
			last_movement_recorded_at = GREATEST(stock_levels.last_movement_recorded_at, EXCLUDED.last_movement_recorded_at),
			updated_at = now()`
	if _, err := r.q.Exec(ctx, query, productID, siteID, batchNumber, quantity, at); err != nil {
		return fmt.Errorf("overwrite stock level: %w", err)
	}
	return nil
}

// List devuelve filas de la proyección para el barrido de reconciliación.
func (r *StockLevelRepo) List(ctx context.Context, productID string, siteID *int) ([]*entity.StockLevel, error) {
	query := `
		SELECT product_id, site_id, batch_number, quantity, last_movement_recorded_at, updated_at
		FROM stock_levels WHERE true`
	args := []any{}
	pos := 1
	if productID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, productID)
		pos++
	}
	if siteID != nil {
		query += fmt.Sprintf(" AND site_id = $%d", pos)
		args = append(args, *siteID)
	}
	query += " ORDER BY product_id, site_id, batch_number"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockLevel
	for rows.Next() {
		var l entity.StockLevel
		if err := rows.Scan(&l.ProductID, &l.SiteID, &l.BatchNumber, &l.Quantity, &l.LastMovementRecordedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
