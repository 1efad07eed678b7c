package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, product_id, lot_number, quantity, available_quantity, unit_cost, entry_date,
	expiration_date, supplier_id, purchase_id, location, status, created_at, updated_at`

// LotRepo lotes de inventario sobre PostgreSQL. Orden FIFO: entry_date y luego seq (orden de inserción).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx.
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create inserta un lote nuevo.
func (r *LotRepo) Create(ctx context.Context, lot *entity.InventoryLot) error {
	if err := lot.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO inventory_lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.ProductID, lot.LotNumber, lot.Quantity, lot.AvailableQuantity, lot.UnitCost,
		lot.EntryDate, lot.ExpirationDate, nullString(lot.SupplierID), nullString(lot.PurchaseID),
		lot.Location, string(lot.Status), lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: lote %s del producto %s", domain.ErrDuplicate, lot.LotNumber, lot.ProductID)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// Update persiste disponible y estado. El disponible nunca aumenta.
func (r *LotRepo) Update(ctx context.Context, lot *entity.InventoryLot) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventory_lots
		SET available_quantity = $2, status = $3, updated_at = $4
		WHERE id = $1 AND available_quantity >= $2`,
		lot.ID, lot.AvailableQuantity, string(lot.Status), lot.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return fmt.Errorf("update lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: lote %s inexistente o disponible en aumento", domain.ErrConflict, lot.ID)
	}
	return nil
}

// GetByProductAndNumber lote por producto y número; nil si no existe.
func (r *LotRepo) GetByProductAndNumber(ctx context.Context, productID, lotNumber string) (*entity.InventoryLot, error) {
	row := r.q.QueryRow(ctx, `SELECT `+lotColumns+` FROM inventory_lots WHERE product_id = $1 AND lot_number = $2`,
		productID, lotNumber)
	lot, err := scanLot(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

// ListByProduct todos los lotes del producto en orden FIFO.
func (r *LotRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryLot, error) {
	return r.list(ctx, `SELECT `+lotColumns+` FROM inventory_lots WHERE product_id = $1 ORDER BY entry_date, seq`, productID)
}

// ListActiveByProduct lotes ACTIVE en orden FIFO.
func (r *LotRepo) ListActiveByProduct(ctx context.Context, productID string) ([]*entity.InventoryLot, error) {
	return r.list(ctx, `SELECT `+lotColumns+` FROM inventory_lots
		WHERE product_id = $1 AND status = 'ACTIVE' ORDER BY entry_date, seq`, productID)
}

// ListActiveByProductForUpdate bloquea las filas (SELECT FOR UPDATE) para serializar el consumo por producto.
func (r *LotRepo) ListActiveByProductForUpdate(ctx context.Context, productID string) ([]*entity.InventoryLot, error) {
	return r.list(ctx, `SELECT `+lotColumns+` FROM inventory_lots
		WHERE product_id = $1 AND status = 'ACTIVE' ORDER BY entry_date, seq FOR UPDATE`, productID)
}

// ListExpiredActive lotes ACTIVE vencidos antes de asOf, bloqueados. Con businessID solo los
// de productos de ese negocio.
func (r *LotRepo) ListExpiredActive(ctx context.Context, businessID string, asOf time.Time) ([]*entity.InventoryLot, error) {
	qb := psql.Select(lotColumns).
		From("inventory_lots").
		Where("status = 'ACTIVE'").
		Where("expiration_date IS NOT NULL").
		Where(squirrel.Lt{"expiration_date": asOf}).
		OrderBy("entry_date", "seq").
		Suffix("FOR UPDATE")
	if businessID != "" {
		qb = qb.Where("product_id IN (SELECT id FROM products WHERE business_id = ?)", businessID)
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return r.list(ctx, query, args...)
}

func (r *LotRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryLot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var out []*entity.InventoryLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		out = append(out, lot)
	}
	return out, rows.Err()
}

func scanLot(row pgx.Row) (*entity.InventoryLot, error) {
	var (
		l                      entity.InventoryLot
		status                 string
		supplierID, purchaseID *string
	)
	err := row.Scan(
		&l.ID, &l.ProductID, &l.LotNumber, &l.Quantity, &l.AvailableQuantity, &l.UnitCost, &l.EntryDate,
		&l.ExpirationDate, &supplierID, &purchaseID, &l.Location, &status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = entity.LotStatus(status)
	l.SupplierID = derefString(supplierID)
	l.PurchaseID = derefString(purchaseID)
	return &l, nil
}
