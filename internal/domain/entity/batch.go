package entity

import "time"

// Estados de un lote.
const (
	BatchStatusActive    = "ACTIVE"
	BatchStatusCompleted = "COMPLETED"
	BatchStatusArchived  = "ARCHIVED"
	BatchStatusRecalled  = "RECALLED"
)

// Batch es la unidad de trazabilidad: un lote nunca se parte físicamente,
// múltiples movimientos y pasos de proceso referencian el mismo batch number
// durante toda su vida. SourceBatchNumber es una referencia de solo lectura
// al lote padre (trazabilidad hacia atrás), no una relación de propiedad.
type Batch struct {
	BatchNumber       string // 16 dígitos, único
	SiteID            int
	BatchType         int
	CreatedDate       time.Time
	SourceBatchNumber string
	Status            string
	CreatedAt         time.Time
	CreatedBy         string
}

// CanTransitionTo valida las transiciones de estado permitidas:
// ACTIVE -> COMPLETED -> ARCHIVED, y cualquier estado -> RECALLED.
func (b *Batch) CanTransitionTo(status string) bool {
	if status == BatchStatusRecalled {
		return b.Status != BatchStatusRecalled
	}
	switch b.Status {
	case BatchStatusActive:
		return status == BatchStatusCompleted
	case BatchStatusCompleted:
		return status == BatchStatusArchived
	}
	return false
}
