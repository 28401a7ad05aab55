// Package memory implementa el asignador de secuencias en proceso: la
// alternativa al contador SQL cuando el asignador corre como instancia
// lógica única (y el arnés de los tests de concurrencia).
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tu-usuario/cannatrace/internal/domain"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
	"github.com/tu-usuario/cannatrace/internal/domain/repository"
)

var _ repository.SequenceAllocator = (*SequenceAllocator)(nil)

// SequenceAllocator contador por partición detrás de un mutex. La sección
// crítica es leer-incrementar-escribir de un entero: corta, sin IO y sin
// posibilidad de livelock.
type SequenceAllocator struct {
	mu       sync.Mutex
	counters map[string]*entity.SequenceCounter
}

// NewSequenceAllocator construye el asignador vacío; las particiones se
// crean perezosamente en la primera petición.
func NewSequenceAllocator() *SequenceAllocator {
	return &SequenceAllocator{counters: make(map[string]*entity.SequenceCounter)}
}

// Next entrega el siguiente valor de la partición, en [1, max].
func (a *SequenceAllocator) Next(ctx context.Context, partitionKey string, max int) (int, error) {
	if err := ctx.Err(); err != nil {
		// Cancelado antes de asignar: no se consume ningún valor.
		return 0, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.counters[partitionKey]
	if !ok {
		c = &entity.SequenceCounter{PartitionKey: partitionKey}
		a.counters[partitionKey] = c
	}
	if c.LastIssued >= max {
		return 0, fmt.Errorf("partición %s (max %d): %w", partitionKey, max, domain.ErrSequenceExhausted)
	}
	c.LastIssued++
	return c.LastIssued, nil
}
