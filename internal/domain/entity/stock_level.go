package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel es la proyección derivada de stock disponible por
// (producto, sede, lote). No es autoritativa: siempre se puede reconstruir
// sumando los movimientos del libro, y el motor SOH puede destruirla y
// regenerarla en cualquier momento sin pérdida de información.
// BatchNumber vacío agrupa el stock sin lote.
type StockLevel struct {
	ProductID              string
	SiteID                 int
	BatchNumber            string
	Quantity               decimal.Decimal
	LastMovementRecordedAt time.Time
	UpdatedAt              time.Time
}
