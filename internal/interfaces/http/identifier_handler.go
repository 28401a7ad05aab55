package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/cannatrace/internal/application/dto"
	appident "github.com/tu-usuario/cannatrace/internal/application/identifier"
	ident "github.com/tu-usuario/cannatrace/internal/domain/identifier"
)

// IdentifierHandler maneja la emisión y validación de identificadores (protegido).
type IdentifierHandler struct {
	uc *appident.UseCase
}

// NewIdentifierHandler construye el handler.
func NewIdentifierHandler(uc *appident.UseCase) *IdentifierHandler {
	return &IdentifierHandler{uc: uc}
}

// GenerateBatch godoc
// @Summary      Emitir batch number (16 dígitos) y crear el lote
// @Tags         identifiers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateBatchRequest  true  "site_id, batch_type, source_batch_number opcional"
// @Success      201   {object}  dto.GenerateBatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/identifiers/batch [post]
func (h *IdentifierHandler) GenerateBatch(c *fiber.Ctx) error {
	var in dto.GenerateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	batch, err := h.uc.GenerateBatchNumber(c.Context(), in.SiteID, in.BatchType, in.SourceBatchNumber, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	seq, _ := ident.BatchSequence(batch.BatchNumber)
	return c.Status(fiber.StatusCreated).JSON(dto.GenerateBatchResponse{
		BatchNumber: batch.BatchNumber,
		Sequence:    seq,
	})
}

// GenerateSerial godoc
// @Summary      Emitir serial completo (31 dígitos) para una unidad
// @Tags         identifiers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateSerialRequest  true  "site_id, strain_id, product_type, batch_number, product_id, weight_grams"
// @Success      201   {object}  dto.GenerateSerialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/identifiers/serial [post]
func (h *IdentifierHandler) GenerateSerial(c *fiber.Ctx) error {
	var in dto.GenerateSerialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	serial, err := h.uc.GenerateFullSerialNumber(c.Context(), appident.FullSerialInput{
		SiteID:       in.SiteID,
		StrainID:     in.StrainID,
		ProductType:  in.ProductType,
		BatchNumber:  in.BatchNumber,
		ProductID:    in.ProductID,
		UnitSequence: in.UnitSequence,
		WeightGrams:  in.WeightGrams,
		Actor:        GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.GenerateSerialResponse{
		FullSerialNumber:  serial.FullSerialNumber,
		ShortSerialNumber: serial.ShortSerialNumber,
	})
}

// GenerateShortSerial godoc
// @Summary      Emitir serial corto (13 dígitos, 14 con check EAN)
// @Tags         identifiers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateShortSerialRequest  true  "site_id, with_check"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/identifiers/short-serial [post]
func (h *IdentifierHandler) GenerateShortSerial(c *fiber.Ctx) error {
	var in dto.GenerateShortSerialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	short, err := h.uc.GenerateShortSerialNumber(c.Context(), in.SiteID, in.WithCheck, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"short_serial_number": short})
}

// ValidateIdentifier godoc
// @Summary      Clasificar y validar un identificador escaneado
// @Tags         identifiers
// @Security     Bearer
// @Produce      json
// @Param        identifier  query  string  true  "identificador numérico"
// @Success      200  {object}  dto.ValidateIdentifierResponse
// @Router       /api/identifiers/validate [get]
func (h *IdentifierHandler) ValidateIdentifier(c *fiber.Ctx) error {
	id := c.Query("identifier")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ARGUMENT", Message: "identifier requerido"})
	}
	kind, err := h.uc.ValidateIdentifier(id)
	return c.JSON(dto.ValidateIdentifierResponse{
		Identifier: id,
		Kind:       string(kind),
		Valid:      err == nil,
	})
}
