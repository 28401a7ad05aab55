package repository

import (
	"context"

	"github.com/tu-usuario/cannatrace/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia de lotes.
type BatchRepository interface {
	Create(ctx context.Context, b *entity.Batch) error
	GetByNumber(ctx context.Context, batchNumber string) (*entity.Batch, error)
	UpdateStatus(ctx context.Context, batchNumber, status string) error
}
