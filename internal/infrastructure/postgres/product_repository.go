package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

var productColumns = []string{
	"id", "business_id", "sku", "name", "description", "price", "cost", "stock", "min_stock", "active", "created_at", "updated_at",
}

var productOrder = map[string]string{
	"name":      "name",
	"sku":       "sku",
	"price":     "price",
	"stock":     "stock",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. Cost y Stock inician en 0.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, business_id, sku, name, description, price, cost, stock, min_stock, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.BusinessID, product.SKU, product.Name, product.Description,
		product.Price, product.Cost, product.Stock, product.MinStock, product.Active, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, product.SKU)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, psql.Select(productColumns...).From("products").Where(squirrel.Eq{"id": id}))
}

// GetByBusinessAndSKU obtiene un producto por negocio y SKU (sin distinguir mayúsculas).
func (r *ProductRepo) GetByBusinessAndSKU(ctx context.Context, businessID, sku string) (*entity.Product, error) {
	return r.getOne(ctx, psql.Select(productColumns...).From("products").
		Where(squirrel.Eq{"business_id": businessID}).
		Where("LOWER(sku) = LOWER(?)", sku))
}

func (r *ProductRepo) getOne(ctx context.Context, qb squirrel.SelectBuilder) (*entity.Product, error) {
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product query: %w", err)
	}
	var p entity.Product
	err = r.q.QueryRow(ctx, sql, args...).Scan(productFields(&p)...)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// productFields destinos de Scan en el orden de productColumns.
func productFields(p *entity.Product) []any {
	return []any{
		&p.ID, &p.BusinessID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Cost, &p.Stock, &p.MinStock,
		&p.Active, &p.CreatedAt, &p.UpdatedAt,
	}
}

// Update actualiza datos de catálogo y el flag active. No modifica Cost ni Stock (los mantiene el motor de inventario).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET sku = $2, name = $3, description = $4, price = $5, min_stock = $6, active = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.Description, product.Price, product.MinStock,
		product.Active, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, product.SKU)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, product.ID)
	}
	return nil
}

// UpdateCost actualiza solo el costo del producto (usado por el motor de inventario).
func (r *ProductRepo) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE products SET cost = $2, updated_at = now() WHERE id = $1`,
		productID, cost,
	)
	if err != nil {
		return fmt.Errorf("update product cost: %w", err)
	}
	return nil
}

// UpdateStock guarda la suma disponible de lotes activos.
func (r *ProductRepo) UpdateStock(ctx context.Context, productID string, stock decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`,
		productID, stock,
	)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	return nil
}

// List catálogo del negocio con búsqueda por SKU o nombre, paginación y orden.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int, error) {
	params := filter.ListParams
	params.Normalize()
	qb := psql.Select(productColumns...).From("products").Where(squirrel.Eq{"business_id": filter.BusinessID})
	if !filter.IncludeInactive {
		qb = qb.Where(squirrel.Eq{"active": true})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"sku": pattern},
			squirrel.ILike{"name": pattern},
		})
	}
	return queryPage(ctx, r.q, paginate(qb, productOrder, params), func(rows pgx.Rows) (*entity.Product, int, error) {
		var (
			p     entity.Product
			total int
		)
		err := rows.Scan(append(productFields(&p), &total)...)
		return &p, total, err
	})
}

// IsReferenced busca historial del producto en lotes, kardex y líneas de compra o venta.
func (r *ProductRepo) IsReferenced(ctx context.Context, productID string) (bool, error) {
	var used bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM inventory_lots WHERE product_id = $1)
		    OR EXISTS (SELECT 1 FROM stock_movements WHERE product_id = $1)
		    OR EXISTS (SELECT 1 FROM purchase_details WHERE product_id = $1)
		    OR EXISTS (SELECT 1 FROM sale_details WHERE product_id = $1)`, productID).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("product references: %w", err)
	}
	return used, nil
}

// Delete borra el producto; una FK de historial lo impide con ErrConflict.
func (r *ProductRepo) Delete(ctx context.Context, productID string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el producto %s tiene historial", domain.ErrConflict, productID)
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	return nil
}
