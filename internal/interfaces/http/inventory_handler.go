package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Negocio-api/internal/application/dto"
	"github.com/jhoicas/Negocio-api/internal/application/inventory"
	"github.com/jhoicas/Negocio-api/internal/application/usecase"
)

// InventoryHandler anotaciones del kardex y barrido de vencimientos (protegido).
type InventoryHandler struct {
	products *usecase.ProductUseCase
	engine   *inventory.Engine
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(products *usecase.ProductUseCase, engine *inventory.Engine) *InventoryHandler {
	return &InventoryHandler{products: products, engine: engine}
}

// RecordMovement godoc
// @Summary      Registrar anotación de inventario (ADJUSTMENT o TRANSFER)
// @Description  Solo agrega el movimiento al kardex; no modifica lotes ni stock.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "type, product_id, quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.products.RecordMovement(c.UserContext(), GetBusinessID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ExpireLots godoc
// @Summary      Marcar vencidos los lotes activos del negocio con vencimiento anterior a as_of
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExpireLotsRequest  false  "as_of (por defecto ahora)"
// @Success      200   {object}  dto.ExpireLotsResponse
// @Router       /api/inventory/lots/expire [post]
func (h *InventoryHandler) ExpireLots(c *fiber.Ctx) error {
	var in dto.ExpireLotsRequest
	if err := parseOptionalBody(c, &in); err != nil {
		return badBody(c)
	}
	asOf := h.engine.Now()
	if in.AsOf != nil {
		asOf = *in.AsOf
	}
	res, err := h.engine.ExpireLots(c.UserContext(), GetBusinessID(c), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ExpireLotsResponse{
		Expired:  dto.LotsFromEntities(res.Expired),
		Products: dto.StocksFromSnapshots(res.Products),
	})
}
