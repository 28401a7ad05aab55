package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockOnHandResponse cantidad derivada de stock a una fecha.
type StockOnHandResponse struct {
	ProductID   string          `json:"product_id"`
	SiteID      int             `json:"site_id"`
	BatchNumber string          `json:"batch_number,omitempty"`
	AsOf        time.Time       `json:"as_of"`
	Quantity    decimal.Decimal `json:"quantity"`
	Negative    bool            `json:"negative"` // saldo negativo: advertencia, no error
}

// DriftReportDTO divergencia detectada entre la proyección y el libro.
type DriftReportDTO struct {
	ProductID   string          `json:"product_id"`
	SiteID      int             `json:"site_id"`
	BatchNumber string          `json:"batch_number,omitempty"`
	Cached      decimal.Decimal `json:"cached"`
	Recomputed  decimal.Decimal `json:"recomputed"`
	Delta       decimal.Decimal `json:"delta"`
	DetectedAt  time.Time       `json:"detected_at"`
}

// ReconcileRequest filtros opcionales del barrido de reconciliación.
type ReconcileRequest struct {
	ProductID string `json:"product_id" validate:"omitempty"`
	SiteID    *int   `json:"site_id" validate:"omitempty,min=1,max=99"`
}
