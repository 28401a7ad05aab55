package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/cannatrace/internal/domain/entity"
)

// SerialRepository define el puerto de persistencia de unidades serializadas.
// La búsqueda acepta el serial completo o el corto: ambos son únicos.
type SerialRepository interface {
	Create(ctx context.Context, s *entity.SerialNumber) error
	GetBySerial(ctx context.Context, serial string) (*entity.SerialNumber, error)
	UpdateStatus(ctx context.Context, fullSerial, status string, soldAt *time.Time, customerRef string) error
}
