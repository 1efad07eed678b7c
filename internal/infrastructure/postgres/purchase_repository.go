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

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

var purchaseColumns = []string{
	"id", "business_id", "supplier_id", "supplier_name", "total_amount", "status", "actual_delivery_date",
	"received_by", "invoice_number", "notes", "created_at", "updated_at",
}

var purchaseOrder = map[string]string{
	"supplierName": "LOWER(supplier_name)",
	"totalAmount":  "total_amount",
	"status":       "status",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
}

const purchaseDetailColumns = `id, purchase_id, product_id, product_name, quantity, quantity_received, price, total_amount,
	lot_number, entry_date, expiration_date, quality_check, quality_notes, warehouse_location`

// PurchaseRepo compras y sus detalles. Los detalles se reescriben completos en cada Update.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx.
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// Create inserta cabecera y detalles. Debe correr dentro de una transacción.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchases (id, business_id, supplier_id, supplier_name, total_amount, status, actual_delivery_date,
			received_by, invoice_number, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.BusinessID, nullString(p.SupplierID), p.SupplierName, p.TotalAmount, string(p.Status),
		p.ActualDeliveryDate, p.ReceivedBy, p.InvoiceNumber, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: compra %s", domain.ErrDuplicate, p.ID)
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	return r.insertDetails(ctx, p)
}

func (r *PurchaseRepo) insertDetails(ctx context.Context, p *entity.Purchase) error {
	for i, d := range p.Details {
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_details (id, purchase_id, line_no, product_id, product_name, quantity, quantity_received,
				price, total_amount, lot_number, entry_date, expiration_date, quality_check, quality_notes, warehouse_location)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			d.ID, p.ID, i, d.ProductID, d.ProductName, d.Quantity, d.QuantityReceived,
			d.Price, d.TotalAmount, d.LotNumber, d.EntryDate, d.ExpirationDate, string(d.QualityCheck),
			d.QualityNotes, d.WarehouseLocation,
		)
		if err != nil {
			if isCheckViolation(err) {
				return fmt.Errorf("%w: detalle %d de la compra: %v", domain.ErrInvalidInput, i, err)
			}
			return fmt.Errorf("insert purchase detail: %w", err)
		}
	}
	return nil
}

// GetByID compra con detalles; nil si no existe.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate igual que GetByID pero bloquea la fila de la compra.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.get(ctx, id, true)
}

func (r *PurchaseRepo) get(ctx context.Context, id string, lock bool) (*entity.Purchase, error) {
	qb := psql.Select(purchaseColumns...).From("purchases").Where(squirrel.Eq{"id": id})
	if lock {
		qb = qb.Suffix("FOR UPDATE")
	}
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build purchase query: %w", err)
	}
	p, err := scanPurchase(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	if p.Details, err = r.details(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PurchaseRepo) details(ctx context.Context, purchaseID string) ([]entity.PurchaseDetail, error) {
	rows, err := r.q.Query(ctx, `SELECT `+purchaseDetailColumns+` FROM purchase_details
		WHERE purchase_id = $1 ORDER BY line_no`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase details: %w", err)
	}
	defer rows.Close()
	var out []entity.PurchaseDetail
	for rows.Next() {
		var (
			d       entity.PurchaseDetail
			quality string
		)
		if err := rows.Scan(&d.ID, &d.PurchaseID, &d.ProductID, &d.ProductName, &d.Quantity, &d.QuantityReceived,
			&d.Price, &d.TotalAmount, &d.LotNumber, &d.EntryDate, &d.ExpirationDate, &quality, &d.QualityNotes,
			&d.WarehouseLocation); err != nil {
			return nil, fmt.Errorf("scan purchase detail: %w", err)
		}
		d.QualityCheck = entity.QualityCheckStatus(quality)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update reemplaza cabecera y detalles.
func (r *PurchaseRepo) Update(ctx context.Context, p *entity.Purchase) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchases SET supplier_id = $2, supplier_name = $3, total_amount = $4, status = $5,
			actual_delivery_date = $6, received_by = $7, invoice_number = $8, notes = $9, updated_at = $10
		WHERE id = $1`,
		p.ID, nullString(p.SupplierID), p.SupplierName, p.TotalAmount, string(p.Status), p.ActualDeliveryDate,
		p.ReceivedBy, p.InvoiceNumber, p.Notes, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: compra %s", domain.ErrNotFound, p.ID)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM purchase_details WHERE purchase_id = $1`, p.ID); err != nil {
		return fmt.Errorf("delete purchase details: %w", err)
	}
	return r.insertDetails(ctx, p)
}

// Delete elimina la compra; los detalles caen por ON DELETE CASCADE.
func (r *PurchaseRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: compra %s", domain.ErrNotFound, id)
	}
	return nil
}

// List filtra por negocio, estado, proveedor (ILIKE) y total exacto. Devuelve cabeceras con sus detalles.
func (r *PurchaseRepo) List(ctx context.Context, f repository.PurchaseFilter) ([]*entity.Purchase, int, error) {
	f.Normalize()
	qb := psql.Select(purchaseColumns...).From("purchases").Where(squirrel.Eq{"business_id": f.BusinessID})
	if f.Status != "" {
		qb = qb.Where(squirrel.Eq{"status": string(f.Status)})
	}
	if f.SupplierName != "" {
		qb = qb.Where(squirrel.ILike{"supplier_name": "%" + f.SupplierName + "%"})
	}
	if f.TotalAmount != nil {
		qb = qb.Where(squirrel.Eq{"total_amount": *f.TotalAmount})
	}
	list, total, err := queryPage(ctx, r.q, paginate(qb, purchaseOrder, f.ListParams), func(rows pgx.Rows) (*entity.Purchase, int, error) {
		var n int
		p, err := scanPurchase(rows, &n)
		return p, n, err
	})
	if err != nil {
		return nil, 0, err
	}
	for _, p := range list {
		if p.Details, err = r.details(ctx, p.ID); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

// scanPurchase lee la cabecera; extra recibe columnas adicionales (p. ej. el total del listado).
func scanPurchase(row pgx.Row, extra ...any) (*entity.Purchase, error) {
	var (
		p          entity.Purchase
		status     string
		supplierID *string
	)
	dest := []any{
		&p.ID, &p.BusinessID, &supplierID, &p.SupplierName, &p.TotalAmount, &status, &p.ActualDeliveryDate,
		&p.ReceivedBy, &p.InvoiceNumber, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	p.Status = entity.PurchaseStatus(status)
	p.SupplierID = derefString(supplierID)
	return &p, nil
}
