package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest alta de un movimiento en el libro.
// MovementID es opcional: si el caller lo envía actúa como clave de
// idempotencia (reintentar con el mismo ID no duplica el hecho).
type RecordMovementRequest struct {
	MovementID      string          `json:"movement_id" validate:"omitempty,uuid4"`
	ProductID       string          `json:"product_id" validate:"required"`
	SiteID          int             `json:"site_id" validate:"required,min=1,max=99"`
	BatchNumber     string          `json:"batch_number" validate:"omitempty,len=16,numeric"`
	SerialNumber    string          `json:"serial_number" validate:"omitempty,numeric"`
	Direction       string          `json:"direction" validate:"required,oneof=IN OUT"`
	Quantity        decimal.Decimal `json:"quantity" validate:"required"`
	UnitOfMeasure   string          `json:"unit_of_measure" validate:"required,max=16"`
	TransactionType string          `json:"transaction_type" validate:"required,max=32"`
	TransactionRef  string          `json:"transaction_ref" validate:"omitempty,max=64"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// RecordMovementResponse movimiento confirmado por el libro.
type RecordMovementResponse struct {
	MovementID string    `json:"movement_id"`
	RecordedAt time.Time `json:"recorded_at"`
}

// VoidMovementRequest anulación por asiento compensatorio.
type VoidMovementRequest struct {
	Reason string `json:"reason" validate:"required,max=256"`
}

// MovementDTO proyección de lectura de un movimiento.
type MovementDTO struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	SiteID          int             `json:"site_id"`
	BatchNumber     string          `json:"batch_number,omitempty"`
	SerialNumber    string          `json:"serial_number,omitempty"`
	Direction       string          `json:"direction"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitOfMeasure   string          `json:"unit_of_measure"`
	TransactionType string          `json:"transaction_type"`
	TransactionRef  string          `json:"transaction_ref,omitempty"`
	OccurredAt      time.Time       `json:"occurred_at"`
	RecordedAt      time.Time       `json:"recorded_at"`
	Voided          bool            `json:"voided"`
	VoidReason      string          `json:"void_reason,omitempty"`
	CompensatesID   string          `json:"compensates_id,omitempty"`
}
