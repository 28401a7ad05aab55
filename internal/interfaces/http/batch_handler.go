package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/cannatrace/internal/application/dto"
	appident "github.com/tu-usuario/cannatrace/internal/application/identifier"
)

// BatchHandler consulta y ciclo de vida de lotes.
type BatchHandler struct {
	uc *appident.UseCase
}

func NewBatchHandler(uc *appident.UseCase) *BatchHandler {
	return &BatchHandler{uc: uc}
}

// GetBatch godoc
// @Summary      Obtener un lote por su batch number
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        batchNumber  path  string  true  "batch number de 16 dígitos"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{batchNumber} [get]
func (h *BatchHandler) GetBatch(c *fiber.Ctx) error {
	batch, err := h.uc.GetBatch(c.Context(), c.Params("batchNumber"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"batch_number":        batch.BatchNumber,
		"site_id":             batch.SiteID,
		"batch_type":          batch.BatchType,
		"created_date":        batch.CreatedDate.Format("2006-01-02"),
		"source_batch_number": batch.SourceBatchNumber,
		"status":              batch.Status,
		"created_by":          batch.CreatedBy,
	})
}

// UpdateStatus godoc
// @Summary      Transicionar el estado de un lote
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        batchNumber  path  string                       true  "batch number"
// @Param        body         body  dto.UpdateBatchStatusRequest  true  "nuevo estado"
// @Success      204  "sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches/{batchNumber}/status [put]
func (h *BatchHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateBatchStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	if err := h.uc.UpdateBatchStatus(c.Context(), c.Params("batchNumber"), in.Status, GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Lineage godoc
// @Summary      Cadena de lotes origen (trazabilidad hacia atrás)
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        batchNumber  path  string  true  "batch number"
// @Success      200  {object}  dto.BatchLineageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{batchNumber}/lineage [get]
func (h *BatchHandler) Lineage(c *fiber.Ctx) error {
	batchNumber := c.Params("batchNumber")
	chain, err := h.uc.BatchLineage(c.Context(), batchNumber)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.BatchLineageResponse{
		BatchNumber: batchNumber,
		Lineage:     make([]dto.BatchLineageEntryDTO, 0, len(chain)),
	}
	for _, b := range chain {
		out.Lineage = append(out.Lineage, dto.BatchLineageEntryDTO{
			BatchNumber: b.BatchNumber,
			SiteID:      b.SiteID,
			BatchType:   b.BatchType,
			Status:      b.Status,
			CreatedDate: b.CreatedDate.Format("2006-01-02"),
		})
	}
	return c.JSON(out)
}
