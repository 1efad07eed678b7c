package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Negocio-api/internal/domain/entity"
)

// LotRepository puerto de persistencia de lotes. No expone borrado (auditoría).
// Los listados de lotes activos devuelven orden FIFO: fecha de entrada ascendente, luego orden de creación.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.InventoryLot) error
	// Update persiste disponible y estado (únicos campos mutables).
	Update(ctx context.Context, lot *entity.InventoryLot) error
	GetByProductAndNumber(ctx context.Context, productID, lotNumber string) (*entity.InventoryLot, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryLot, error)
	ListActiveByProduct(ctx context.Context, productID string) ([]*entity.InventoryLot, error)
	// ListActiveByProductForUpdate igual que ListActiveByProduct pero bloquea las filas (SELECT FOR UPDATE).
	ListActiveByProductForUpdate(ctx context.Context, productID string) ([]*entity.InventoryLot, error)
	// ListExpiredActive lotes ACTIVE con vencimiento anterior a asOf. businessID filtra por el
	// negocio del producto; vacío devuelve los de todos los negocios.
	ListExpiredActive(ctx context.Context, businessID string, asOf time.Time) ([]*entity.InventoryLot, error)
}
