package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stockroomhq/warehouse-ops/internal/data/pgxutil"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
)

// ProductRepo provides the product reads used by the background jobs.
type ProductRepo struct {
	DB *sql.DB
}

// NewProductRepo creates a new ProductRepo instance with the given database connection.
func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{DB: db}
}

const productColumns = `id, sku, name, quantity, minimum_stock_level, updated_by, updated_at`

// FindLowStock returns every product at or below its reorder threshold.
func (r *ProductRepo) FindLowStock(ctx context.Context) ([]*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE quantity <= minimum_stock_level
		ORDER BY sku ASC`

	var products []*model.Product
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, err := pgxConn.Query(ctx, query)
		if err != nil {
			return err
		}
		products, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Product])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("find low stock products: %w", err)
	}

	return products, nil
}

// CountLowStock returns the number of products at or below their threshold.
func (r *ProductRepo) CountLowStock(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE quantity <= minimum_stock_level`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count low stock products: %w", err)
	}
	return count, nil
}
