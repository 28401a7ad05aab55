package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una unidad serializada.
const (
	SerialStatusAvailable = "AVAILABLE"
	SerialStatusSold      = "SOLD"
	SerialStatusReturned  = "RETURNED"
	SerialStatusDestroyed = "DESTROYED"
)

// SerialNumber representa exactamente una unidad física serializada.
// Las transiciones de estado son monótonas salvo RETURNED, que reabre
// hacia AVAILABLE o DESTROYED.
type SerialNumber struct {
	FullSerialNumber  string // 31 dígitos, único
	ShortSerialNumber string // 13 dígitos, único
	BatchNumber       string
	ProductID         string
	SiteID            int
	WeightGrams       decimal.Decimal
	Status            string
	SoldAt            *time.Time
	CustomerRef       string
	CreatedAt         time.Time
	CreatedBy         string
}

// CanTransitionTo valida la máquina de estados de la unidad:
// AVAILABLE -> SOLD | DESTROYED, SOLD -> RETURNED, RETURNED -> AVAILABLE | DESTROYED.
func (s *SerialNumber) CanTransitionTo(status string) bool {
	switch s.Status {
	case SerialStatusAvailable:
		return status == SerialStatusSold || status == SerialStatusDestroyed
	case SerialStatusSold:
		return status == SerialStatusReturned
	case SerialStatusReturned:
		return status == SerialStatusAvailable || status == SerialStatusDestroyed
	}
	return false
}
