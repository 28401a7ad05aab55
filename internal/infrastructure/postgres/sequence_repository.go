package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/cannatrace/internal/domain"
	"github.com/tu-usuario/cannatrace/internal/domain/repository"
)

var _ repository.SequenceAllocator = (*SequenceRepo)(nil)

// SequenceRepo asigna secuencias con un contador por partición en la tabla
// sequence_counters. El incremento es UNA sola sentencia atómica: el upsert
// condicionado serializa a los escritores concurrentes de la misma partición
// a nivel de fila y hace imposible el duplicado. Nunca se deriva la secuencia
// escaneando el identificador más alto existente.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el asignador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next entrega el siguiente valor de la partición, en [1, max]. Si la
// partición está agotada el WHERE del upsert no aplica, no vuelve ninguna
// fila y se reporta ErrSequenceExhausted: el valor fallido no consume dígitos.
func (r *SequenceRepo) Next(ctx context.Context, partitionKey string, max int) (int, error) {
	query := `
		INSERT INTO sequence_counters (partition_key, last_issued)
		VALUES ($1, 1)
		ON CONFLICT (partition_key)
		DO UPDATE SET last_issued = sequence_counters.last_issued + 1
		WHERE sequence_counters.last_issued < $2
		RETURNING last_issued`
	var seq int
	err := r.q.QueryRow(ctx, query, partitionKey, max).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("partición %s (max %d): %w", partitionKey, max, domain.ErrSequenceExhausted)
		}
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
