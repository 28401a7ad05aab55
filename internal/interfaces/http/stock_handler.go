package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/cannatrace/internal/application/dto"
	"github.com/tu-usuario/cannatrace/internal/application/reconcile"
	"github.com/tu-usuario/cannatrace/internal/application/stock"
)

// StockHandler consultas de stock on hand y reconciliación de la proyección.
type StockHandler struct {
	stock     *stock.UseCase
	reconcile *reconcile.UseCase
}

func NewStockHandler(stockUC *stock.UseCase, reconcileUC *reconcile.UseCase) *StockHandler {
	return &StockHandler{stock: stockUC, reconcile: reconcileUC}
}

// GetStockOnHand godoc
// @Summary      Stock on hand de un producto/sitio, opcionalmente por lote y a una fecha
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true   "producto"
// @Param        site_id       query  int     true   "sitio"
// @Param        batch_number  query  string  false  "batch number de 16 dígitos"
// @Param        as_of         query  string  false  "corte RFC3339; fechas pasadas recomputan del libro"
// @Success      200  {object}  dto.StockOnHandResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) GetStockOnHand(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	siteID := c.QueryInt("site_id")
	if productID == "" || siteID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ARGUMENT", Message: "product_id y site_id son requeridos"})
	}
	batchNumber := c.Query("batch_number")

	asOf := time.Now().UTC()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ARGUMENT", Message: "as_of inválido, se espera RFC3339"})
		}
		asOf = parsed.UTC()
	}

	qty, err := h.stock.GetStockOnHand(c.Context(), productID, siteID, batchNumber, asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StockOnHandResponse{
		ProductID:   productID,
		SiteID:      siteID,
		BatchNumber: batchNumber,
		AsOf:        asOf,
		Quantity:    qty,
		Negative:    qty.IsNegative(),
	})
}

// Reconcile godoc
// @Summary      Barrer la proyección SOH contra el libro y reparar divergencias
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReconcileRequest  false  "filtros opcionales por producto/sitio"
// @Success      200   {array}   dto.DriftReportDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reconcile [post]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	var in dto.ReconcileRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
		if err := dto.Validate(in); err != nil {
			return respondError(c, err)
		}
	}
	reports, err := h.reconcile.Reconcile(c.Context(), in.ProductID, in.SiteID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.DriftReportDTO, 0, len(reports))
	for _, r := range reports {
		out = append(out, dto.DriftReportDTO{
			ProductID:   r.ProductID,
			SiteID:      r.SiteID,
			BatchNumber: r.BatchNumber,
			Cached:      r.Cached,
			Recomputed:  r.Recomputed,
			Delta:       r.Delta,
			DetectedAt:  r.DetectedAt,
		})
	}
	return c.JSON(out)
}
