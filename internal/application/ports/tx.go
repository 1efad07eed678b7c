package ports

import (
	"context"

	"github.com/jhoicas/Negocio-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Businesses repository.BusinessRepository
	Lots       repository.LotRepository
	Movements  repository.StockMovementRepository
	Products   repository.ProductRepository
	Purchases  repository.PurchaseRepository
	Sales      repository.SaleRepository
	Users      repository.UserRepository
}

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ningún cambio queda persistido.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
