package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/cannatrace/internal/domain"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
	"github.com/tu-usuario/cannatrace/internal/domain/repository"
)

var _ repository.SerialRepository = (*SerialRepo)(nil)

// SerialRepo implementación de SerialRepository sobre PostgreSQL.
type SerialRepo struct {
	q Querier
}

// NewSerialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSerialRepository(q Querier) *SerialRepo {
	return &SerialRepo{q: q}
}

// Create persiste una unidad serializada nueva (serial completo y corto únicos).
func (r *SerialRepo) Create(ctx context.Context, s *entity.SerialNumber) error {
	query := `
		INSERT INTO serial_numbers (full_serial, short_serial, batch_number, product_id, site_id,
			weight_grams, status, sold_at, customer_ref, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		s.FullSerialNumber, s.ShortSerialNumber, s.BatchNumber, s.ProductID, s.SiteID,
		s.WeightGrams, s.Status, s.SoldAt, nullIfEmpty(s.CustomerRef), s.CreatedAt, nullIfEmpty(s.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("serial %s: %w", s.FullSerialNumber, domain.ErrDuplicateIdentifier)
		}
		return fmt.Errorf("create serial: %w", err)
	}
	return nil
}

// GetBySerial busca por serial completo o corto; nil si no existe.
func (r *SerialRepo) GetBySerial(ctx context.Context, serial string) (*entity.SerialNumber, error) {
	query := `
		SELECT full_serial, short_serial, batch_number, product_id, site_id,
			weight_grams, status, sold_at, customer_ref, created_at, created_by
		FROM serial_numbers WHERE full_serial = $1 OR short_serial = $1`
	var s entity.SerialNumber
	var customerRef, createdBy *string
	err := r.q.QueryRow(ctx, query, serial).Scan(
		&s.FullSerialNumber, &s.ShortSerialNumber, &s.BatchNumber, &s.ProductID, &s.SiteID,
		&s.WeightGrams, &s.Status, &s.SoldAt, &customerRef, &s.CreatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get serial: %w", err)
	}
	s.CustomerRef = deref(customerRef)
	s.CreatedBy = deref(createdBy)
	return &s, nil
}

// UpdateStatus aplica la transición ya validada por el caso de uso.
func (r *SerialRepo) UpdateStatus(ctx context.Context, fullSerial, status string, soldAt *time.Time, customerRef string) error {
	query := `
		UPDATE serial_numbers SET status = $2, sold_at = $3, customer_ref = $4
		WHERE full_serial = $1`
	tag, err := r.q.Exec(ctx, query, fullSerial, status, soldAt, nullIfEmpty(customerRef))
	if err != nil {
		return fmt.Errorf("update serial status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("serial %s: %w", fullSerial, domain.ErrNotFound)
	}
	return nil
}
