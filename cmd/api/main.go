package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Negocio-api/internal/application/analytics"
	"github.com/jhoicas/Negocio-api/internal/application/auth"
	"github.com/jhoicas/Negocio-api/internal/application/inventory"
	"github.com/jhoicas/Negocio-api/internal/application/ports"
	"github.com/jhoicas/Negocio-api/internal/application/purchase"
	"github.com/jhoicas/Negocio-api/internal/application/sale"
	"github.com/jhoicas/Negocio-api/internal/application/usecase"
	"github.com/jhoicas/Negocio-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Negocio-api/internal/infrastructure/notify"
	infraredis "github.com/jhoicas/Negocio-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Negocio-api/internal/interfaces/http"
	"github.com/jhoicas/Negocio-api/pkg/config"
	"github.com/jhoicas/Negocio-api/pkg/jwt"
	"github.com/jhoicas/Negocio-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

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
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar persistencia")
	}
	defer be.close()

	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)
	notifiers := notify.Fanout{notify.NewLogNotifier(log)}
	engineOpts := []inventory.Option{inventory.WithMetrics(recorder)}

	// Redis es opcional: cache de stock y canal pub/sub de notificaciones
	if cfg.Redis.Enabled() {
		rdb := infraredis.Client(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no responde; se continúa sin cache ni pub/sub")
		} else {
			engineOpts = append(engineOpts, inventory.WithStockCache(infraredis.NewStockCache(rdb, cfg.Redis.StockCacheTTL)))
			notifiers = append(notifiers, infraredis.NewNotifier(rdb, cfg.Notify.Channel, log))
			log.Info().Str("addr", cfg.Redis.Addr).Str("channel", cfg.Notify.Channel).Msg("Redis conectado")
		}
	}
	var notifier ports.Notifier = notifiers

	engine := inventory.NewEngine(be.txRunner, log, engineOpts...)
	tokens, err := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.Expiration)*time.Minute)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración JWT inválida")
	}
	authUC := auth.NewUseCase(be.txRunner, tokens, log)
	productUC := usecase.NewProductUseCase(be.products, be.txRunner, engine)
	supplierUC := usecase.NewSupplierUseCase(be.suppliers)
	customerUC := usecase.NewCustomerUseCase(be.customers)
	purchaseUC := purchase.NewUseCase(be.txRunner, engine, be.suppliers, notifier, recorder, log, purchase.Options{
		AllowShipFromPending: cfg.Policy.PurchaseShipFromPending,
	})
	saleUC := sale.NewUseCase(be.txRunner, engine, be.customers, notifier, recorder, log, sale.Options{
		AllowBackorder: cfg.Policy.SaleAllowBackorder,
	})
	dashboardUC := analytics.NewDashboardUseCase(be.analytics, nil)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(recorder.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Negocio API",
		}))
	} else {
		log.Debug().Str("file", swaggerFile).Msg("sin documento swagger; /docs deshabilitado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   productUC,
		SupplierUC:  supplierUC,
		CustomerUC:  customerUC,
		PurchaseUC:  purchaseUC,
		SaleUC:      saleUC,
		DashboardUC: dashboardUC,
		Engine:      engine,
		Tokens:      tokens,
		Metrics:     adaptor.HTTPHandler(promhttp.Handler()),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
