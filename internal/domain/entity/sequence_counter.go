package entity

import (
	"fmt"
	"time"
)

// SequenceCounter es el estado del asignador de secuencias: un contador por
// clave de partición (sede + categoría + fecha). Se crea perezosamente en la
// primera petición del día y nunca se reutiliza entre días: el reset es
// implícito porque la fecha hace parte de la clave.
type SequenceCounter struct {
	PartitionKey string
	LastIssued   int
}

// PartitionKey construye la clave de partición sede+categoría+fecha.
// Particiones distintas nunca compiten entre sí por el contador.
func PartitionKey(siteID int, category string, day time.Time) string {
	return fmt.Sprintf("%02d:%s:%s", siteID, category, day.Format("20060102"))
}
