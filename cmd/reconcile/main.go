// reconcile ejecuta un barrido puntual de la proyección stock_levels contra el
// libro de movimientos y repara las filas divergentes.
//
// Uso: go run ./cmd/reconcile [-product <id>] [-site <n>]
// Sin filtros barre la proyección completa. Lee la misma configuración por
// variables de entorno que el servidor (DB_*, LOG_LEVEL).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tu-usuario/cannatrace/internal/application/reconcile"
	"github.com/tu-usuario/cannatrace/internal/infrastructure/postgres"
	"github.com/tu-usuario/cannatrace/pkg/config"
	"github.com/tu-usuario/cannatrace/pkg/logger"
)

func main() {
	productID := flag.String("product", "", "limitar el barrido a un producto")
	siteID := flag.Int("site", 0, "limitar el barrido a un sitio")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := reconcile.NewUseCase(
		postgres.NewMovementRepository(pool),
		postgres.NewStockLevelRepository(pool),
		log,
	)

	var site *int
	if *siteID > 0 {
		site = siteID
	}

	reports, err := uc.Reconcile(ctx, *productID, site)
	if err != nil {
		log.Fatal().Err(err).Msg("barrido de reconciliación")
	}

	if len(reports) == 0 {
		fmt.Println("Proyección consistente: sin divergencias.")
		return
	}
	fmt.Printf("Divergencias reparadas: %d\n", len(reports))
	for _, r := range reports {
		fmt.Printf("  producto=%s sitio=%d lote=%q cache=%s libro=%s delta=%s\n",
			r.ProductID, r.SiteID, r.BatchNumber,
			r.Cached.String(), r.Recomputed.String(), r.Delta.String())
	}
}
