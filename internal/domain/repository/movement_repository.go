package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
)

// MovementFilter acota las consultas sobre el libro de movimientos.
// AsOf es obligatorio: la proyección siempre es "a una fecha".
type MovementFilter struct {
	ProductID   string
	SiteID      *int
	BatchNumber string
	AsOf        time.Time
	Limit       int
	Offset      int
}

// MovementRepository es el puerto de persistencia del libro de movimientos.
// Append-only: no existe Update ni Delete de los hechos; la única mutación
// permitida es marcar un original como anulado (MarkVoided) al insertar su
// compensación.
type MovementRepository interface {
	Append(ctx context.Context, m *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// GetByIDForUpdate bloquea la fila del movimiento (SELECT FOR UPDATE)
	// para serializar anulaciones concurrentes del mismo original.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Movement, error)
	MarkVoided(ctx context.Context, id, reason, compensatedByID string, voidedAt time.Time) error
	// List devuelve los movimientos efectivos a la fecha del filtro, ordenados
	// por recorded_at: originales aún no anulados a esa fecha más todas las
	// compensaciones ya registradas.
	List(ctx context.Context, f MovementFilter) ([]*entity.Movement, error)
	// SumSigned suma las cantidades con signo de todos los movimientos hasta
	// asOf, sin excluir pares anulados: un original y su compensación se
	// cancelan aritméticamente, lo que mantiene correctas las consultas
	// históricas anteriores a la anulación.
	SumSigned(ctx context.Context, productID string, siteID *int, batchNumber string, asOf time.Time) (decimal.Decimal, error)
}
