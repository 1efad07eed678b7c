package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/domain/repository"
	"github.com/jhoicas/Negocio-api/internal/infrastructure/memory"
	"github.com/jhoicas/Negocio-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Negocio-api/pkg/config"
	"github.com/jhoicas/Negocio-api/pkg/logger"
)

// backend persistencia elegida por STORE_DRIVER.
type backend struct {
	txRunner  ports.TxRunner
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	customers repository.CustomerRepository
	analytics repository.AnalyticsRepository
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.New()
		return &backend{
			txRunner:  store,
			products:  store.Products(),
			suppliers: store.Suppliers(),
			customers: store.Customers(),
			analytics: store.Analytics(),
			close:     func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.DB.ConnectionString(), log); err != nil {
			return nil, fmt.Errorf("migraciones: %w", err)
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return &backend{
		txRunner:  postgres.NewTxRunner(pool),
		products:  postgres.NewProductRepository(pool),
		suppliers: postgres.NewSupplierRepository(pool),
		customers: postgres.NewCustomerRepository(pool),
		analytics: postgres.NewAnalyticsRepository(pool),
		close:     pool.Close,
	}, nil
}
