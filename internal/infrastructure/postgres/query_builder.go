package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Negocio-api/internal/domain/repository"
)

// psql builder con placeholders $n de PostgreSQL.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// orderBy traduce el campo público a columna; los campos desconocidos ordenan por created_at.
// El id desempata para que la paginación sea estable.
func orderBy(columns map[string]string, params repository.ListParams) []string {
	col, ok := columns[params.OrderBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if params.OrderDirection == "asc" {
		dir = "ASC"
	}
	return []string{col + " " + dir, "id " + dir}
}

// paginate aplica orden, LIMIT/OFFSET y el total de filas vía COUNT(*) OVER().
func paginate(qb squirrel.SelectBuilder, columns map[string]string, params repository.ListParams) squirrel.SelectBuilder {
	return qb.Column("COUNT(*) OVER()").
		OrderBy(orderBy(columns, params)...).
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset()))
}

// queryPage ejecuta un listado paginado. scan recibe las filas y devuelve el total leído de la última columna.
func queryPage[T any](ctx context.Context, q Querier, qb squirrel.SelectBuilder, scan func(pgx.Rows) (T, int, error)) ([]T, int, error) {
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query page: %w", err)
	}
	defer rows.Close()
	var (
		out   []T
		total int
	)
	for rows.Next() {
		item, n, err := scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan page: %w", err)
		}
		total = n
		out = append(out, item)
	}
	return out, total, rows.Err()
}
