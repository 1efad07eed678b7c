package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Negocio-api/internal/application/analytics"
	"github.com/jhoicas/Negocio-api/internal/application/auth"
	"github.com/jhoicas/Negocio-api/internal/application/inventory"
	"github.com/jhoicas/Negocio-api/internal/application/purchase"
	"github.com/jhoicas/Negocio-api/internal/application/sale"
	"github.com/jhoicas/Negocio-api/internal/application/usecase"
	"github.com/jhoicas/Negocio-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.UseCase
	ProductUC   *usecase.ProductUseCase
	SupplierUC  *usecase.SupplierUseCase
	CustomerUC  *usecase.CustomerUseCase
	PurchaseUC  *purchase.UseCase
	SaleUC      *sale.UseCase
	DashboardUC *analytics.DashboardUseCase
	Engine      *inventory.Engine
	Tokens      *jwt.Signer
	// Metrics expone /metrics si no es nil.
	Metrics fiber.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics)
	}

	authHandler := NewAuthHandler(deps.AuthUC)

	// Rutas públicas de auth (sin token), registradas antes del grupo protegido
	public := app.Group("/api/auth")
	public.Post("/register", authHandler.Register)
	public.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.Tokens))
	warehouse := RequireRole(RoleAdmin, RoleBodeguero)
	seller := RequireRole(RoleAdmin, RoleVendedor)

	api.Post("/auth/switch", authHandler.Switch)
	api.Get("/auth/me", authHandler.Me)
	api.Post("/businesses", authHandler.CreateBusiness)
	api.Post("/users", RequireRole(RoleAdmin), authHandler.CreateUser)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", warehouse, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/sku/:sku", productHandler.GetBySKU)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", warehouse, productHandler.Update)
	products.Delete("/:id", warehouse, productHandler.Delete)
	products.Get("/:id/stock", productHandler.Stock)
	products.Get("/:id/availability", productHandler.Availability)
	products.Get("/:id/lots", productHandler.Lots)
	products.Get("/:id/movements", productHandler.Movements)

	// Suppliers / Customers
	suppliers := api.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", warehouse, supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", warehouse, supplierHandler.Update)
	suppliers.Delete("/:id", warehouse, supplierHandler.Delete)

	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", seller, customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", seller, customerHandler.Update)
	customers.Delete("/:id", seller, customerHandler.Delete)

	// Purchases
	purchases := api.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC)
	purchases.Post("/", warehouse, purchaseHandler.Create)
	purchases.Get("/", purchaseHandler.List)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Put("/:id", warehouse, purchaseHandler.Update)
	purchases.Delete("/:id", warehouse, purchaseHandler.Delete)
	purchases.Post("/:id/order", warehouse, purchaseHandler.Order)
	purchases.Post("/:id/ship", warehouse, purchaseHandler.Ship)
	purchases.Post("/:id/receive", warehouse, purchaseHandler.Receive)
	purchases.Post("/:id/invoice", warehouse, purchaseHandler.Invoice)
	purchases.Post("/:id/complete", warehouse, purchaseHandler.Complete)
	purchases.Post("/:id/cancel", warehouse, purchaseHandler.Cancel)

	// Sales
	sales := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	sales.Post("/", seller, saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Put("/:id", seller, saleHandler.Update)
	sales.Post("/:id/complete", seller, saleHandler.Complete)
	sales.Post("/:id/cancel", seller, saleHandler.Cancel)

	// Inventory
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.ProductUC, deps.Engine)
	invGroup.Post("/movements", warehouse, inventoryHandler.RecordMovement)
	invGroup.Post("/lots/expire", RequireRole(RoleAdmin), inventoryHandler.ExpireLots)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	api.Get("/dashboard/summary", dashboardHandler.Summary)
}
