package dto

import "github.com/shopspring/decimal"

// GenerateBatchRequest petición de batch number nuevo.
type GenerateBatchRequest struct {
	SiteID            int    `json:"site_id" validate:"required,min=1,max=99"`
	BatchType         int    `json:"batch_type" validate:"required,min=1,max=9"`
	SourceBatchNumber string `json:"source_batch_number" validate:"omitempty,len=16,numeric"`
}

// GenerateBatchResponse batch number emitido.
type GenerateBatchResponse struct {
	BatchNumber string `json:"batch_number"`
	Sequence    int    `json:"sequence"`
}

// GenerateSerialRequest petición de serial completo para una unidad.
type GenerateSerialRequest struct {
	SiteID       int             `json:"site_id" validate:"required,min=1,max=99"`
	StrainID     int             `json:"strain_id" validate:"required,min=1,max=999"`
	ProductType  int             `json:"product_type" validate:"required,min=1,max=99"`
	BatchNumber  string          `json:"batch_number" validate:"required,len=16,numeric"`
	ProductID    string          `json:"product_id" validate:"required"`
	UnitSequence int             `json:"unit_sequence" validate:"omitempty,min=1,max=99999"`
	WeightGrams  decimal.Decimal `json:"weight_grams" validate:"required"`
}

// GenerateSerialResponse seriales emitidos para la unidad.
type GenerateSerialResponse struct {
	FullSerialNumber  string `json:"full_serial_number"`
	ShortSerialNumber string `json:"short_serial_number"`
}

// GenerateShortSerialRequest petición de serial corto.
type GenerateShortSerialRequest struct {
	SiteID    int  `json:"site_id" validate:"required,min=1,max=99"`
	WithCheck bool `json:"with_check"`
}

// ValidateIdentifierResponse resultado de validar un identificador escaneado.
type ValidateIdentifierResponse struct {
	Identifier string `json:"identifier"`
	Kind       string `json:"kind"`
	Valid      bool   `json:"valid"`
}

// UpdateBatchStatusRequest cambio de estado de un lote.
type UpdateBatchStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE COMPLETED ARCHIVED RECALLED"`
}

// UpdateSerialStatusRequest transición de estado de una unidad serializada.
type UpdateSerialStatusRequest struct {
	Status      string `json:"status" validate:"required,oneof=AVAILABLE SOLD RETURNED DESTROYED"`
	CustomerRef string `json:"customer_ref" validate:"omitempty,max=64"`
}

// BatchLineageResponse cadena de lotes origen, del más reciente al más antiguo.
type BatchLineageResponse struct {
	BatchNumber string                 `json:"batch_number"`
	Lineage     []BatchLineageEntryDTO `json:"lineage"`
}

// BatchLineageEntryDTO un eslabón de la cadena de trazabilidad.
type BatchLineageEntryDTO struct {
	BatchNumber string `json:"batch_number"`
	SiteID      int    `json:"site_id"`
	BatchType   int    `json:"batch_type"`
	Status      string `json:"status"`
	CreatedDate string `json:"created_date"`
}
