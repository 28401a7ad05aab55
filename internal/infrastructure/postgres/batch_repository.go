package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/cannatrace/internal/domain"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
	"github.com/tu-usuario/cannatrace/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository sobre PostgreSQL.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste un lote nuevo. Un batch_number repetido sería un bug del
// asignador de secuencias: se traduce a ErrDuplicateIdentifier y se escala.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO batches (batch_number, site_id, batch_type, created_date, source_batch_number, status, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		b.BatchNumber, b.SiteID, b.BatchType, b.CreatedDate,
		nullIfEmpty(b.SourceBatchNumber), b.Status, b.CreatedAt, nullIfEmpty(b.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("batch %s: %w", b.BatchNumber, domain.ErrDuplicateIdentifier)
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// GetByNumber obtiene un lote por batch number; nil si no existe.
func (r *BatchRepo) GetByNumber(ctx context.Context, batchNumber string) (*entity.Batch, error) {
	query := `
		SELECT batch_number, site_id, batch_type, created_date, source_batch_number, status, created_at, created_by
		FROM batches WHERE batch_number = $1`
	var b entity.Batch
	var source, createdBy *string
	err := r.q.QueryRow(ctx, query, batchNumber).Scan(
		&b.BatchNumber, &b.SiteID, &b.BatchType, &b.CreatedDate, &source, &b.Status, &b.CreatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	b.SourceBatchNumber = deref(source)
	b.CreatedBy = deref(createdBy)
	return &b, nil
}

// UpdateStatus cambia el estado del lote.
func (r *BatchRepo) UpdateStatus(ctx context.Context, batchNumber, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE batches SET status = $2 WHERE batch_number = $1`, batchNumber, status)
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lote %s: %w", batchNumber, domain.ErrNotFound)
	}
	return nil
}
