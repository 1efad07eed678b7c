// expire-lots marca como EXPIRED los lotes activos vencidos y reagrega el stock de los productos
// afectados. Pensado para ejecutarse desde cron contra la base PostgreSQL.
//
// Uso: go run ./cmd/expire-lots [-as-of 2026-01-31T00:00:00Z]
// Sin -as-of se usa la hora actual.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jhoicas/Negocio-api/internal/application/inventory"
	"github.com/jhoicas/Negocio-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Negocio-api/internal/infrastructure/redis"
	"github.com/jhoicas/Negocio-api/pkg/config"
	"github.com/jhoicas/Negocio-api/pkg/logger"
)

func main() {
	asOfFlag := flag.String("as-of", "", "fecha de corte RFC3339 (por defecto ahora)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if cfg.Store.Driver != "postgres" {
		log.Error().Str("store", cfg.Store.Driver).Msg("expire-lots requiere STORE_DRIVER=postgres")
		os.Exit(2)
	}

	asOf := time.Now().UTC()
	if *asOfFlag != "" {
		asOf, err = time.Parse(time.RFC3339, *asOfFlag)
		if err != nil {
			log.Error().Err(err).Str("as_of", *asOfFlag).Msg("fecha de corte inválida")
			os.Exit(2)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var opts []inventory.Option
	if cfg.Redis.Enabled() {
		rdb := infraredis.Client(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		opts = append(opts, inventory.WithStockCache(infraredis.NewStockCache(rdb, cfg.Redis.StockCacheTTL)))
	}

	engine := inventory.NewEngine(postgres.NewTxRunner(pool), log, opts...)
	// job de plataforma: barre los lotes de todos los negocios
	res, err := engine.ExpireLots(ctx, "", asOf)
	if err != nil {
		log.Error().Err(err).Msg("barrido de vencimientos")
		os.Exit(1)
	}
	for _, lot := range res.Expired {
		log.Info().
			Str("lot_id", lot.ID).
			Str("lot_number", lot.LotNumber).
			Str("product_id", lot.ProductID).
			Msg("lote vencido")
	}
	log.Info().
		Int("expired", len(res.Expired)).
		Int("products", len(res.Products)).
		Time("as_of", asOf).
		Msg("barrido completado")
}
