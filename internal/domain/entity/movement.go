package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones de un movimiento de stock.
const (
	DirectionIN  = "IN"  // entrada
	DirectionOUT = "OUT" // salida
)

// Movement es un hecho inmutable del libro de movimientos: una vez insertado,
// cantidad, dirección, producto y sede nunca cambian. Una corrección se hace
// con un movimiento compensatorio nuevo, jamás editando el original.
// RecordedAt lo asigna el libro al insertar y es la clave de ordenamiento
// para replay; OccurredAt es la hora de negocio que reporta el caller.
type Movement struct {
	ID                string
	ProductID         string
	SiteID            int
	BatchNumber       string
	SerialNumber      string // opcional: solo unidades serializadas
	Direction         string // IN | OUT
	Quantity          decimal.Decimal // siempre >= 0; el signo lo da Direction
	UnitOfMeasure     string
	TransactionType   string
	TransactionRef    string
	OccurredAt        time.Time
	RecordedAt        time.Time
	Voided            bool
	VoidReason        string
	CompensatesID     string // en una compensación: ID del movimiento que anula
	CompensatedByID   string // en un original anulado: ID de su compensación
	VoidedAt          *time.Time
	CreatedBy         string
}

// SignedQuantity devuelve la cantidad con signo según la dirección
// (IN suma, OUT resta).
func (m *Movement) SignedQuantity() decimal.Decimal {
	if m.Direction == DirectionOUT {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// IsCompensation indica si este movimiento anula a otro.
func (m *Movement) IsCompensation() bool {
	return m.CompensatesID != ""
}
