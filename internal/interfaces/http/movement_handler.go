package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/cannatrace/internal/application/dto"
	"github.com/tu-usuario/cannatrace/internal/application/ledger"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
	"github.com/tu-usuario/cannatrace/internal/domain/repository"
)

// MovementHandler alta, anulación y consulta del libro de movimientos.
type MovementHandler struct {
	uc *ledger.UseCase
}

func NewMovementHandler(uc *ledger.UseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

func movementToDTO(m *entity.Movement) dto.MovementDTO {
	return dto.MovementDTO{
		ID:              m.ID,
		ProductID:       m.ProductID,
		SiteID:          m.SiteID,
		BatchNumber:     m.BatchNumber,
		SerialNumber:    m.SerialNumber,
		Direction:       m.Direction,
		Quantity:        m.Quantity,
		UnitOfMeasure:   m.UnitOfMeasure,
		TransactionType: m.TransactionType,
		TransactionRef:  m.TransactionRef,
		OccurredAt:      m.OccurredAt,
		RecordedAt:      m.RecordedAt,
		Voided:          m.Voided,
		VoidReason:      m.VoidReason,
		CompensatesID:   m.CompensatesID,
	}
}

// Record godoc
// @Summary      Registrar un movimiento de inventario (append-only)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "movimiento; movement_id opcional como clave de idempotencia"
// @Success      201   {object}  dto.RecordMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	m, err := h.uc.Append(c.Context(), ledger.AppendInput{
		MovementID:      in.MovementID,
		ProductID:       in.ProductID,
		SiteID:          in.SiteID,
		BatchNumber:     in.BatchNumber,
		SerialNumber:    in.SerialNumber,
		Direction:       in.Direction,
		Quantity:        in.Quantity,
		UnitOfMeasure:   in.UnitOfMeasure,
		TransactionType: in.TransactionType,
		TransactionRef:  in.TransactionRef,
		OccurredAt:      in.OccurredAt,
		Actor:           GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RecordMovementResponse{
		MovementID: m.ID,
		RecordedAt: m.RecordedAt,
	})
}

// Void godoc
// @Summary      Anular un movimiento emitiendo el asiento compensatorio
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "uuid del movimiento original"
// @Param        body  body  dto.VoidMovementRequest  true  "motivo de la anulación"
// @Success      201   {object}  dto.MovementDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/void [post]
func (h *MovementHandler) Void(c *fiber.Ctx) error {
	var in dto.VoidMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	comp, err := h.uc.Void(c.Context(), c.Params("id"), in.Reason, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementToDTO(comp))
}

// List godoc
// @Summary      Listar movimientos de un producto a una fecha de corte
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true   "producto"
// @Param        site_id       query  int     false  "sitio"
// @Param        batch_number  query  string  false  "batch number de 16 dígitos"
// @Param        as_of         query  string  false  "corte RFC3339; por defecto ahora"
// @Param        limit         query  int     false  "máximo de filas (default 100)"
// @Param        offset        query  int     false  "desplazamiento"
// @Success      200  {array}   dto.MovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ARGUMENT", Message: "paginación inválida"})
	}
	if err := dto.Validate(page); err != nil {
		return respondError(c, err)
	}
	page.DefaultPage()

	f := repository.MovementFilter{
		ProductID:   c.Query("product_id"),
		BatchNumber: c.Query("batch_number"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	if siteID := c.QueryInt("site_id"); siteID > 0 {
		f.SiteID = &siteID
	}
	if raw := c.Query("as_of"); raw != "" {
		asOf, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ARGUMENT", Message: "as_of inválido, se espera RFC3339"})
		}
		f.AsOf = asOf
	}
	movements, err := h.uc.Query(c.Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, movementToDTO(m))
	}
	return c.JSON(out)
}
