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

var _ repository.SaleRepository = (*SaleRepo)(nil)

var saleColumns = []string{
	"id", "business_id", "customer_id", "customer_name", "total_amount", "status", "created_at", "updated_at",
}

var saleOrder = map[string]string{
	"customerName": "LOWER(customer_name)",
	"totalAmount":  "total_amount",
	"status":       "status",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
}

// SaleRepo ventas y sus detalles.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta cabecera y detalles.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, business_id, customer_id, customer_name, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.BusinessID, nullString(s.CustomerID), s.CustomerName, s.TotalAmount, string(s.Status),
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: venta %s", domain.ErrDuplicate, s.ID)
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return r.insertDetails(ctx, s)
}

func (r *SaleRepo) insertDetails(ctx context.Context, s *entity.Sale) error {
	for i, d := range s.Details {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sale_details (id, sale_id, line_no, product_id, product_name, quantity, price, total_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			d.ID, s.ID, i, d.ProductID, d.ProductName, d.Quantity, d.Price, d.TotalAmount,
		)
		if err != nil {
			if isCheckViolation(err) {
				return fmt.Errorf("%w: detalle %d de la venta: %v", domain.ErrInvalidInput, i, err)
			}
			return fmt.Errorf("insert sale detail: %w", err)
		}
	}
	return nil
}

// GetByID venta con detalles; nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la venta hasta el fin de la transacción.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, id, true)
}

func (r *SaleRepo) get(ctx context.Context, id string, lock bool) (*entity.Sale, error) {
	qb := psql.Select(saleColumns...).From("sales").Where(squirrel.Eq{"id": id})
	if lock {
		qb = qb.Suffix("FOR UPDATE")
	}
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sale query: %w", err)
	}
	s, err := scanSale(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if s.Details, err = r.details(ctx, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SaleRepo) details(ctx context.Context, saleID string) ([]entity.SaleDetail, error) {
	rows, err := r.q.Query(ctx, `SELECT id, sale_id, product_id, product_name, quantity, price, total_amount
		FROM sale_details WHERE sale_id = $1 ORDER BY line_no`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale details: %w", err)
	}
	defer rows.Close()
	var out []entity.SaleDetail
	for rows.Next() {
		var d entity.SaleDetail
		if err := rows.Scan(&d.ID, &d.SaleID, &d.ProductID, &d.ProductName, &d.Quantity, &d.Price, &d.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan sale detail: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update reemplaza cabecera y detalles.
func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE sales SET customer_id = $2, customer_name = $3, total_amount = $4, status = $5, updated_at = $6
		WHERE id = $1`,
		s.ID, nullString(s.CustomerID), s.CustomerName, s.TotalAmount, string(s.Status), s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: venta %s", domain.ErrNotFound, s.ID)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_details WHERE sale_id = $1`, s.ID); err != nil {
		return fmt.Errorf("delete sale details: %w", err)
	}
	return r.insertDetails(ctx, s)
}

// List filtra por negocio, estado, cliente (ILIKE) y total exacto.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	f.Normalize()
	qb := psql.Select(saleColumns...).From("sales").Where(squirrel.Eq{"business_id": f.BusinessID})
	if f.Status != "" {
		qb = qb.Where(squirrel.Eq{"status": string(f.Status)})
	}
	if f.CustomerName != "" {
		qb = qb.Where(squirrel.ILike{"customer_name": "%" + f.CustomerName + "%"})
	}
	if f.TotalAmount != nil {
		qb = qb.Where(squirrel.Eq{"total_amount": *f.TotalAmount})
	}
	list, total, err := queryPage(ctx, r.q, paginate(qb, saleOrder, f.ListParams), func(rows pgx.Rows) (*entity.Sale, int, error) {
		var n int
		s, err := scanSale(rows, &n)
		return s, n, err
	})
	if err != nil {
		return nil, 0, err
	}
	for _, s := range list {
		if s.Details, err = r.details(ctx, s.ID); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

func scanSale(row pgx.Row, extra ...any) (*entity.Sale, error) {
	var (
		s          entity.Sale
		status     string
		customerID *string
	)
	dest := []any{&s.ID, &s.BusinessID, &customerID, &s.CustomerName, &s.TotalAmount, &status, &s.CreatedAt, &s.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	s.Status = entity.SaleStatus(status)
	s.CustomerID = derefString(customerID)
	return &s, nil
}
