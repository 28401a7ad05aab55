package http

import (
	"github.com/gofiber/fiber/v2"
	appident "github.com/tu-usuario/cannatrace/internal/application/identifier"
	"github.com/tu-usuario/cannatrace/internal/application/label"
	"github.com/tu-usuario/cannatrace/internal/application/ledger"
	"github.com/tu-usuario/cannatrace/internal/application/reconcile"
	"github.com/tu-usuario/cannatrace/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	IdentifierUC *appident.UseCase
	LedgerUC     *ledger.UseCase
	StockUC      *stock.UseCase
	ReconcileUC  *reconcile.UseCase
	LabelUC      *label.UseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Identifiers (protegido)
	identifiers := protected.Group("/identifiers")
	identifierHandler := NewIdentifierHandler(deps.IdentifierUC)
	identifiers.Post("/batch", identifierHandler.GenerateBatch)
	identifiers.Post("/serial", identifierHandler.GenerateSerial)
	identifiers.Post("/short-serial", identifierHandler.GenerateShortSerial)
	identifiers.Get("/validate", identifierHandler.ValidateIdentifier)

	// Batches (protegido)
	batches := protected.Group("/batches")
	batchHandler := NewBatchHandler(deps.IdentifierUC)
	batches.Get("/:batchNumber", batchHandler.GetBatch)
	batches.Get("/:batchNumber/lineage", batchHandler.Lineage)
	batches.Put("/:batchNumber/status", batchHandler.UpdateStatus)

	// Serials (protegido)
	serials := protected.Group("/serials")
	serialHandler := NewSerialHandler(deps.IdentifierUC, deps.LabelUC)
	serials.Get("/:serial", serialHandler.GetSerial)
	serials.Get("/:serial/label", serialHandler.Label)
	serials.Put("/:serial/status", serialHandler.UpdateStatus)

	// Movements (protegido)
	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.LedgerUC)
	movements.Post("/", movementHandler.Record)
	movements.Get("/", movementHandler.List)
	movements.Post("/:id/void", movementHandler.Void)

	// Stock y reconciliación (protegido; reconcile solo para admin y supervisor)
	stockHandler := NewStockHandler(deps.StockUC, deps.ReconcileUC)
	protected.Get("/stock", stockHandler.GetStockOnHand)
	protected.Post("/reconcile", RequireRole("admin", "supervisor"), stockHandler.Reconcile)
}
