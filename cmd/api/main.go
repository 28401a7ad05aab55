package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	appident "github.com/tu-usuario/cannatrace/internal/application/identifier"
	"github.com/tu-usuario/cannatrace/internal/application/label"
	"github.com/tu-usuario/cannatrace/internal/application/ledger"
	"github.com/tu-usuario/cannatrace/internal/application/reconcile"
	"github.com/tu-usuario/cannatrace/internal/application/stock"
	infrapdf "github.com/tu-usuario/cannatrace/internal/infrastructure/pdf"
	"github.com/tu-usuario/cannatrace/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/cannatrace/internal/interfaces/http"
	"github.com/tu-usuario/cannatrace/pkg/config"
	"github.com/tu-usuario/cannatrace/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	movementRepo := postgres.NewMovementRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	serialRepo := postgres.NewSerialRepository(pool)
	stockLevelRepo := postgres.NewStockLevelRepository(pool)
	sequenceRepo := postgres.NewSequenceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	identifierUC := appident.NewUseCase(sequenceRepo, batchRepo, serialRepo, log)
	ledgerUC := ledger.NewUseCase(txRunner, movementRepo, log)
	stockUC := stock.NewUseCase(movementRepo, stockLevelRepo, log)
	reconcileUC := reconcile.NewUseCase(movementRepo, stockLevelRepo, log)

	// PDF: etiqueta de unidad con código de barras del serial corto
	labelGenerator := infrapdf.NewMarotoLabelGenerator()
	labelUC := label.NewUseCase(serialRepo, batchRepo, labelGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "CannaTrace API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		IdentifierUC: identifierUC,
		LedgerUC:     ledgerUC,
		StockUC:      stockUC,
		ReconcileUC:  reconcileUC,
		LabelUC:      labelUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	// Reconciliador periódico de la proyección SOH contra el libro.
	reconcileCtx, stopReconcile := context.WithCancel(ctx)
	defer stopReconcile()
	if cfg.Reconcile.Enabled {
		interval := time.Duration(cfg.Reconcile.IntervalMinutes) * time.Minute
		if interval <= 0 {
			interval = 15 * time.Minute
		}
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			rlog := log.Component("reconcile-ticker")
			for {
				select {
				case <-reconcileCtx.Done():
					return
				case <-ticker.C:
					reports, err := reconcileUC.Reconcile(reconcileCtx, "", nil)
					if err != nil {
						rlog.Error().Err(err).Msg("barrido de reconciliación")
						continue
					}
					rlog.Info().Int("divergencias", len(reports)).Msg("barrido de reconciliación completado")
				}
			}
		}()
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	stopReconcile()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
