package repository

import "context"

// SequenceAllocator entrega enteros únicos y crecientes dentro de una clave
// de partición (sede + categoría + fecha). El incremento leer-sumar-escribir
// debe ser una sola operación atómica: nunca "leer el máximo existente y
// sumar uno". Devuelve domain.ErrSequenceExhausted cuando la partición supera
// max. Los valores saltados por peticiones abortadas son tolerables: la
// invariante es unicidad, no densidad.
type SequenceAllocator interface {
	Next(ctx context.Context, partitionKey string, max int) (int, error)
}
