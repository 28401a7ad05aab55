package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/cannatrace/internal/application/dto"
	appident "github.com/tu-usuario/cannatrace/internal/application/identifier"
	"github.com/tu-usuario/cannatrace/internal/application/label"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
)

// SerialHandler consulta, ciclo de vida y etiquetas de unidades serializadas.
type SerialHandler struct {
	uc     *appident.UseCase
	labels *label.UseCase
}

func NewSerialHandler(uc *appident.UseCase, labels *label.UseCase) *SerialHandler {
	return &SerialHandler{uc: uc, labels: labels}
}

func serialToMap(s *entity.SerialNumber) fiber.Map {
	m := fiber.Map{
		"full_serial_number":  s.FullSerialNumber,
		"short_serial_number": s.ShortSerialNumber,
		"batch_number":        s.BatchNumber,
		"product_id":          s.ProductID,
		"site_id":             s.SiteID,
		"weight_grams":        s.WeightGrams,
		"status":              s.Status,
		"customer_ref":        s.CustomerRef,
	}
	if s.SoldAt != nil {
		m["sold_at"] = s.SoldAt
	}
	return m
}

// GetSerial godoc
// @Summary      Obtener una unidad por su serial completo
// @Tags         serials
// @Security     Bearer
// @Produce      json
// @Param        serial  path  string  true  "serial de 31 dígitos"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/serials/{serial} [get]
func (h *SerialHandler) GetSerial(c *fiber.Ctx) error {
	serial, err := h.uc.GetSerial(c.Context(), c.Params("serial"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(serialToMap(serial))
}

// UpdateStatus godoc
// @Summary      Transicionar el estado de una unidad (venta, retorno, destrucción)
// @Tags         serials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        serial  path  string                        true  "serial de 31 dígitos"
// @Param        body    body  dto.UpdateSerialStatusRequest  true  "nuevo estado; SOLD exige customer_ref"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/serials/{serial}/status [put]
func (h *SerialHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateSerialStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	serial, err := h.uc.UpdateSerialStatus(c.Context(), c.Params("serial"), in.Status, in.CustomerRef, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(serialToMap(serial))
}

// Label godoc
// @Summary      Etiqueta PDF de la unidad con código de barras del serial corto
// @Tags         serials
// @Security     Bearer
// @Produce      application/pdf
// @Param        serial  path  string  true  "serial de 31 dígitos"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/serials/{serial}/label [get]
func (h *SerialHandler) Label(c *fiber.Ctx) error {
	serial := c.Params("serial")
	pdf, err := h.labels.UnitLabelPDF(c.Context(), serial)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="etiqueta_%s.pdf"`, serial))
	return c.Send(pdf)
}
