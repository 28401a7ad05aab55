package ledger

import (
	"context"

	"github.com/tu-usuario/cannatrace/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el asiento del movimiento y el
// delta de la proyección SOH se confirman juntos o no se confirman: un
// append cancelado no deja estado parcial.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movements repository.MovementRepository,
		levels repository.StockLevelRepository,
	) error) error
}
