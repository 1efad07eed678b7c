package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Negocio-api/internal/domain"
	"github.com/jhoicas/Negocio-api/internal/domain/entity"
	"github.com/jhoicas/Negocio-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo proveedores sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// Create persiste un proveedor.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO suppliers (id, business_id, name, contact_name, tax_id, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.BusinessID, s.Name, s.ContactName, s.TaxID, s.Email, s.Phone, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

// GetByID proveedor por ID; nil si no existe.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.q.QueryRow(ctx, `
		SELECT id, business_id, name, contact_name, tax_id, email, phone, created_at, updated_at
		FROM suppliers WHERE id = $1`, id).Scan(
		&s.ID, &s.BusinessID, &s.Name, &s.ContactName, &s.TaxID, &s.Email, &s.Phone, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

// Update reemplaza los datos de contacto del proveedor.
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE suppliers SET name = $2, contact_name = $3, tax_id = $4, email = $5, phone = $6, updated_at = $7
		WHERE id = $1`,
		s.ID, s.Name, s.ContactName, s.TaxID, s.Email, s.Phone, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, s.ID)
	}
	return nil
}

// Delete borra el proveedor si ninguna compra lo referencia.
func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el proveedor %s tiene compras", domain.ErrConflict, id)
		}
		return fmt.Errorf("delete supplier: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
	}
	return nil
}

// ListByBusiness proveedores del negocio, por defecto ordenados por nombre.
func (r *SupplierRepo) ListByBusiness(ctx context.Context, businessID string, params repository.ListParams) ([]*entity.Supplier, int, error) {
	if params.OrderBy == "" {
		params.OrderBy, params.OrderDirection = "name", "asc"
	}
	params.Normalize()
	qb := psql.Select("id", "business_id", "name", "contact_name", "tax_id", "email", "phone", "created_at", "updated_at").
		From("suppliers").Where(squirrel.Eq{"business_id": businessID})
	return queryPage(ctx, r.q, paginate(qb, directoryOrder, params), func(rows pgx.Rows) (*entity.Supplier, int, error) {
		var (
			s     entity.Supplier
			total int
		)
		err := rows.Scan(&s.ID, &s.BusinessID, &s.Name, &s.ContactName, &s.TaxID, &s.Email, &s.Phone,
			&s.CreatedAt, &s.UpdatedAt, &total)
		return &s, total, err
	})
}
