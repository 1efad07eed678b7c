package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Negocio-api/internal/application/analytics"
	"github.com/jhoicas/Negocio-api/internal/application/auth"
	"github.com/jhoicas/Negocio-api/internal/application/dto"
	"github.com/jhoicas/Negocio-api/internal/application/inventory"
	"github.com/jhoicas/Negocio-api/internal/application/purchase"
	"github.com/jhoicas/Negocio-api/internal/application/sale"
	"github.com/jhoicas/Negocio-api/internal/application/usecase"
	"github.com/jhoicas/Negocio-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Negocio-api/internal/interfaces/http"
	"github.com/jhoicas/Negocio-api/pkg/logger"
	pkgjwt "github.com/jhoicas/Negocio-api/pkg/jwt"
)

type apiOptions struct {
	allowBackorder bool
}

// buildAPI arma la API completa sobre el store en memoria.
func buildAPI(t *testing.T, opts apiOptions) *fiber.App {
	t.Helper()
	store := memory.New()
	log := logger.Nop()
	engine := inventory.NewEngine(store, log)

	tokens := newTestSigner(t)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      auth.NewUseCase(store, tokens, log, auth.WithHashCost(bcrypt.MinCost)),
		ProductUC:   usecase.NewProductUseCase(store.Products(), store, engine),
		SupplierUC:  usecase.NewSupplierUseCase(store.Suppliers()),
		CustomerUC:  usecase.NewCustomerUseCase(store.Customers()),
		PurchaseUC:  purchase.NewUseCase(store, engine, store.Suppliers(), nil, nil, log, purchase.Options{}),
		SaleUC:      sale.NewUseCase(store, engine, store.Customers(), nil, nil, log, sale.Options{AllowBackorder: opts.allowBackorder}),
		DashboardUC: analytics.NewDashboardUseCase(store.Analytics(), nil),
		Engine:      engine,
		Tokens:      tokens,
	})
	return app
}

func newTestSigner(t *testing.T, opts ...pkgjwt.Option) *pkgjwt.Signer {
	t.Helper()
	s, err := pkgjwt.NewSigner(testJWTSecret, testIssuer, testTTL, opts...)
	require.NoError(t, err)
	return s
}

// bearer token de testUserID en businessID con el rol indicado.
func bearer(t *testing.T, businessID, role string) string {
	t.Helper()
	tok, err := newTestSigner(t).Sign(pkgjwt.Session{UserID: testUserID, BusinessID: businessID, Role: role})
	require.NoError(t, err)
	return "Bearer " + tok
}

// call ejecuta la petición y decodifica el cuerpo en out cuando no es nil.
func call(t *testing.T, app *fiber.App, method, path, auth string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createProduct(t *testing.T, app *fiber.App, auth, sku string) dto.ProductResponse {
	t.Helper()
	var p dto.ProductResponse
	status := call(t, app, http.MethodPost, "/api/products", auth, dto.CreateProductRequest{
		SKU:   sku,
		Name:  "Producto " + sku,
		Price: decimal.NewFromInt(50),
	}, &p)
	require.Equal(t, http.StatusCreated, status)
	return p
}

// stockIn compra, ordena y recibe qty unidades a price.
func stockIn(t *testing.T, app *fiber.App, auth, productID string, qty, price int64) dto.ReceivePurchaseResponse {
	t.Helper()
	var created dto.PurchaseResponse
	status := call(t, app, http.MethodPost, "/api/purchases", auth, dto.CreatePurchaseRequest{
		SupplierName: "Distribuidora Norte",
		Status:       "ORDERED",
		Details: []dto.PurchaseDetailRequest{
			{ProductID: productID, Quantity: decimal.NewFromInt(qty), Price: decimal.NewFromInt(price)},
		},
	}, &created)
	require.Equal(t, http.StatusCreated, status)

	var received dto.ReceivePurchaseResponse
	status = call(t, app, http.MethodPost, "/api/purchases/"+created.ID+"/receive", auth, nil, &received)
	require.Equal(t, http.StatusOK, status)
	return received
}

func TestAPI_Health(t *testing.T) {
	app := buildAPI(t, apiOptions{})
	var body map[string]string
	assert.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/health", "", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestAPI_ProductCreateAndList(t *testing.T) {
	app := buildAPI(t, apiOptions{})
	admin := bearer(t, testBusinessID, apphttp.RoleAdmin)

	p := createProduct(t, app, admin, "CAF-500")
	assert.Equal(t, testBusinessID, p.BusinessID)
	assert.True(t, p.Stock.IsZero())
	createProduct(t, app, admin, "AZU-1KG")

	var list dto.ProductListResponse
	status := call(t, app, http.MethodGet, "/api/products?order_by=sku&order_direction=asc", admin, nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Items, 2)
	assert.Equal(t, 2, list.Page.Total)
	assert.Equal(t, "AZU-1KG", list.Items[0].SKU)

	t.Run("el SKU no distingue mayúsculas", func(t *testing.T) {
		var errBody dto.ErrorResponse
		status := call(t, app, http.MethodPost, "/api/products", admin, dto.CreateProductRequest{
			SKU: "caf-500", Name: "Repetido", Price: decimal.NewFromInt(1),
		}, &errBody)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "DUPLICATE", errBody.Code)
	})

	t.Run("otro negocio no ve los productos", func(t *testing.T) {
		other := bearer(t, "00000000-0000-0000-0000-0000000000ff", apphttp.RoleAdmin)
		var list dto.ProductListResponse
		require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products", other, nil, &list))
		assert.Empty(t, list.Items)

		var errBody dto.ErrorResponse
		assert.Equal(t, http.StatusForbidden, call(t, app, http.MethodGet, "/api/products/"+p.ID, other, nil, &errBody))
		assert.Equal(t, "FORBIDDEN", errBody.Code)
	})
}

func TestAPI_PurchaseReceiveUpdatesStock(t *testing.T) {
	app := buildAPI(t, apiOptions{})
	auth := bearer(t, testBusinessID, apphttp.RoleBodeguero)
	p := createProduct(t, app, auth, "ARR-01")

	received := stockIn(t, app, auth, p.ID, 10, 5)
	assert.Equal(t, "RECEIVED", received.Purchase.Status)
	require.Len(t, received.Lots, 1)
	assert.True(t, received.Lots[0].AvailableQuantity.Equal(decimal.NewFromInt(10)))
	assert.Empty(t, received.Backorders)

	var stock dto.StockResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/"+p.ID+"/stock", auth, nil, &stock))
	assert.True(t, stock.CurrentStock.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, stock.AvailableLots)

	var product dto.ProductResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/"+p.ID, auth, nil, &product))
	assert.True(t, product.Stock.Equal(decimal.NewFromInt(10)))
	assert.True(t, product.Cost.Equal(decimal.NewFromInt(5)))

	var movements []dto.MovementResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/"+p.ID+"/movements", auth, nil, &movements))
	require.Len(t, movements, 1)
	assert.Equal(t, "PURCHASE_IN", movements[0].Type)

	t.Run("recibir dos veces es una transición inválida", func(t *testing.T) {
		var errBody dto.ErrorResponse
		status := call(t, app, http.MethodPost, "/api/purchases/"+received.Purchase.ID+"/receive", auth, nil, &errBody)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "INVALID_TRANSITION", errBody.Code)
	})
}

func TestAPI_ReceivePendingPurchaseFails(t *testing.T) {
	app := buildAPI(t, apiOptions{})
	auth := bearer(t, testBusinessID, apphttp.RoleAdmin)
	p := createProduct(t, app, auth, "SAL-01")

	var created dto.PurchaseResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/purchases", auth, dto.CreatePurchaseRequest{
		Details: []dto.PurchaseDetailRequest{{ProductID: p.ID, Quantity: decimal.NewFromInt(3), Price: decimal.NewFromInt(2)}},
	}, &created))
	assert.Equal(t, "PENDING", created.Status)
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(6)))

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/api/purchases/"+created.ID+"/receive", auth, nil, &errBody))
	assert.Equal(t, "INVALID_TRANSITION", errBody.Code)

	var product dto.ProductResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/"+p.ID, auth, nil, &product))
	assert.True(t, product.Stock.IsZero())

	// Una compra PENDING se puede eliminar
	assert.Equal(t, http.StatusNoContent, call(t, app, http.MethodDelete, "/api/purchases/"+created.ID, auth, nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/purchases/"+created.ID, auth, nil, &errBody))
}

func TestAPI_SaleWithShortage(t *testing.T) {
	app := buildAPI(t, apiOptions{allowBackorder: true})
	admin := bearer(t, testBusinessID, apphttp.RoleAdmin)
	p := createProduct(t, app, admin, "LEC-01")
	stockIn(t, app, admin, p.ID, 4, 3)

	var out dto.SaleCompletionResponse
	status := call(t, app, http.MethodPost, "/api/sales", bearer(t, testBusinessID, apphttp.RoleVendedor), dto.CreateSaleRequest{
		CustomerName: "Mostrador",
		Status:       "COMPLETED",
		Details:      []dto.SaleDetailRequest{{ProductID: p.ID, Quantity: decimal.NewFromInt(6)}},
	}, &out)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "COMPLETED", out.Sale.Status)
	assert.True(t, out.TotalShortage.Equal(decimal.NewFromInt(2)))
	require.Len(t, out.Lines, 1)
	assert.True(t, out.Lines[0].Consumed.Equal(decimal.NewFromInt(4)))
	// Sin precio explícito se usa el precio de lista
	assert.True(t, out.Sale.TotalAmount.Equal(decimal.NewFromInt(300)))

	var stock dto.StockResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/"+p.ID+"/stock", admin, nil, &stock))
	assert.True(t, stock.CurrentStock.IsZero())
	assert.Equal(t, 0, stock.AvailableLots)
}

func TestAPI_SaleWithoutBackorderIsRejected(t *testing.T) {
	app := buildAPI(t, apiOptions{allowBackorder: false})
	admin := bearer(t, testBusinessID, apphttp.RoleAdmin)
	p := createProduct(t, app, admin, "HAR-01")
	stockIn(t, app, admin, p.ID, 2, 3)

	var errBody dto.ErrorResponse
	status := call(t, app, http.MethodPost, "/api/sales", admin, dto.CreateSaleRequest{
		Status:  "COMPLETED",
		Details: []dto.SaleDetailRequest{{ProductID: p.ID, Quantity: decimal.NewFromInt(5)}},
	}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)

	var stock dto.StockResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/"+p.ID+"/stock", admin, nil, &stock))
	assert.True(t, stock.CurrentStock.Equal(decimal.NewFromInt(2)))

	var sales dto.SaleListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/sales", admin, nil, &sales))
	assert.Empty(t, sales.Items)
}

func TestAPI_ErrorMapping(t *testing.T) {
	app := buildAPI(t, apiOptions{})
	admin := bearer(t, testBusinessID, apphttp.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"producto inexistente", http.MethodGet, "/api/products/no-existe", nil, http.StatusNotFound, "NOT_FOUND"},
		{"compra inexistente", http.MethodPost, "/api/purchases/no-existe/order", nil, http.StatusNotFound, "NOT_FOUND"},
		{"producto sin nombre", http.MethodPost, "/api/products", dto.CreateProductRequest{SKU: "X"}, http.StatusBadRequest, "VALIDATION"},
		{"compra sin detalles", http.MethodPost, "/api/purchases", dto.CreatePurchaseRequest{SupplierName: "Sin líneas"}, http.StatusBadRequest, "VALIDATION"},
		{"total no numérico", http.MethodGet, "/api/purchases?total_amount=abc", nil, http.StatusBadRequest, "INVALID_QUERY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errBody dto.ErrorResponse
			status := call(t, app, tt.method, tt.path, admin, tt.body, &errBody)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, errBody.Code)
			assert.NotEmpty(t, errBody.Message)
		})
	}
}

func TestAPI_RolesAndTenant(t *testing.T) {
	app := buildAPI(t, apiOptions{})

	t.Run("vendedor no crea productos", func(t *testing.T) {
		var errBody map[string]any
		status := call(t, app, http.MethodPost, "/api/products", bearer(t, testBusinessID, apphttp.RoleVendedor),
			dto.CreateProductRequest{SKU: "V-1", Name: "Vendedor", Price: decimal.NewFromInt(1)}, &errBody)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("bodeguero no vende", func(t *testing.T) {
		var errBody map[string]any
		status := call(t, app, http.MethodPost, "/api/sales", bearer(t, testBusinessID, apphttp.RoleBodeguero),
			dto.CreateSaleRequest{}, &errBody)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("sin token", func(t *testing.T) {
		var errBody map[string]any
		assert.Equal(t, http.StatusUnauthorized, call(t, app, http.MethodGet, "/api/products", "", nil, &errBody))
	})
}

func TestAPI_ExpireLotsOnlyCallerBusiness(t *testing.T) {
	app := buildAPI(t, apiOptions{})
	mine := bearer(t, testBusinessID, apphttp.RoleAdmin)
	theirs := bearer(t, "negocio-vecino", apphttp.RoleAdmin)
	expires := time.Now().Add(24 * time.Hour)

	receiveExpiring := func(auth, sku string) dto.ProductResponse {
		p := createProduct(t, app, auth, sku)
		var created dto.PurchaseResponse
		require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/purchases", auth, dto.CreatePurchaseRequest{
			Status:  "ORDERED",
			Details: []dto.PurchaseDetailRequest{{ProductID: p.ID, Quantity: decimal.NewFromInt(5), Price: decimal.NewFromInt(2)}},
		}, &created))
		require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/purchases/"+created.ID+"/receive", auth, dto.ReceivePurchaseRequest{
			Items: []dto.ReceiveItemRequest{{ProductID: p.ID, ExpirationDate: &expires}},
		}, nil))
		return p
	}
	own := receiveExpiring(mine, "YOG-1")
	other := receiveExpiring(theirs, "YOG-2")

	asOf := expires.Add(time.Hour)
	var out dto.ExpireLotsResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/inventory/lots/expire", mine, dto.ExpireLotsRequest{AsOf: &asOf}, &out))
	require.Len(t, out.Expired, 1)
	assert.Equal(t, own.ID, out.Expired[0].ProductID)

	var stock dto.StockResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/"+own.ID+"/stock", mine, nil, &stock))
	assert.True(t, stock.CurrentStock.IsZero())
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/"+other.ID+"/stock", theirs, nil, &stock))
	assert.True(t, stock.CurrentStock.Equal(decimal.NewFromInt(5)), "el lote del otro negocio sigue activo")
}

func TestAPI_ProductSearchSKUAndDelete(t *testing.T) {
	app := buildAPI(t, apiOptions{})
	admin := bearer(t, testBusinessID, apphttp.RoleAdmin)
	kept := createProduct(t, app, admin, "TE-VERDE")
	createProduct(t, app, admin, "TE-NEGRO")
	loose := createProduct(t, app, admin, "CAFE-1")
	stockIn(t, app, admin, kept.ID, 2, 3)

	var list dto.ProductListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products?search=te-", admin, nil, &list))
	assert.Equal(t, 2, list.Page.Total)

	var bySKU dto.ProductResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products/sku/cafe-1", admin, nil, &bySKU))
	assert.Equal(t, loose.ID, bySKU.ID)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/products/sku/NADA", admin, nil, &errBody))

	vendedor := bearer(t, testBusinessID, apphttp.RoleVendedor)
	assert.Equal(t, http.StatusForbidden, call(t, app, http.MethodDelete, "/api/products/"+loose.ID, vendedor, nil, &errBody))

	var deleted dto.DeleteProductResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodDelete, "/api/products/"+loose.ID, admin, nil, &deleted))
	assert.True(t, deleted.Deleted)
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/products/"+loose.ID, admin, nil, &errBody))

	var deactivated dto.DeleteProductResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodDelete, "/api/products/"+kept.ID, admin, nil, &deactivated))
	assert.False(t, deactivated.Deleted)
	require.NotNil(t, deactivated.Product)
	assert.False(t, deactivated.Product.Active)

	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products?search=te-", admin, nil, &list))
	assert.Equal(t, 1, list.Page.Total)
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products?search=te-&include_inactive=true", admin, nil, &list))
	assert.Equal(t, 2, list.Page.Total)

	// Un producto inactivo no entra en documentos nuevos
	status := call(t, app, http.MethodPost, "/api/purchases", admin, dto.CreatePurchaseRequest{
		Details: []dto.PurchaseDetailRequest{{ProductID: kept.ID, Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(1)}},
	}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
}

func TestAPI_DirectoryUpdateDelete(t *testing.T) {
	app := buildAPI(t, apiOptions{})
	admin := bearer(t, testBusinessID, apphttp.RoleAdmin)

	var s dto.SupplierResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/suppliers", admin, dto.CreateSupplierRequest{Name: "Lácteos SAS"}, &s))

	var upd dto.SupplierResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPut, "/api/suppliers/"+s.ID, admin, dto.UpdateSupplierRequest{
		Name: "Lácteos del Valle", Email: "ventas@lacteos.example.com",
	}, &upd))
	assert.Equal(t, "Lácteos del Valle", upd.Name)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPut, "/api/suppliers/"+s.ID, admin, dto.UpdateSupplierRequest{
		Name: "Lácteos", Email: "sin-arroba",
	}, &errBody))
	assert.Equal(t, "VALIDATION", errBody.Code)

	// Con compras no se puede borrar
	p := createProduct(t, app, admin, "QUE-1")
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/purchases", admin, dto.CreatePurchaseRequest{
		SupplierID: s.ID,
		Details:    []dto.PurchaseDetailRequest{{ProductID: p.ID, Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(1)}},
	}, nil))
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodDelete, "/api/suppliers/"+s.ID, admin, nil, &errBody))

	var c dto.CustomerResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/customers", admin, dto.CreateCustomerRequest{Name: "Ana"}, &c))
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPut, "/api/customers/"+c.ID, admin, dto.UpdateCustomerRequest{Name: "Ana Torres"}, nil))
	assert.Equal(t, http.StatusForbidden, call(t, app, http.MethodDelete, "/api/customers/"+c.ID, bearer(t, "otro", apphttp.RoleAdmin), nil, &errBody))
	assert.Equal(t, http.StatusNoContent, call(t, app, http.MethodDelete, "/api/customers/"+c.ID, admin, nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/customers/"+c.ID, admin, nil, &errBody))
}
