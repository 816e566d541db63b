package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stockroomhq/warehouse-ops/internal/data/pgxutil"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
)

// ArchiveRepo persists immutable order snapshots.
type ArchiveRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewArchiveRepo creates a new ArchiveRepo instance with the given database connection.
func NewArchiveRepo(db *sql.DB) *ArchiveRepo {
	return &ArchiveRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

const archivedOrderColumns = `id, original_order_id, order_number, status, customer_id, total_amount, items, order_created_at, order_updated_at, archived_at, archived_by`

// Insert writes the snapshot. original_order_id carries a unique constraint,
// so a snapshot retried after a crash between snapshot and source delete is
// a no-op instead of a duplicate. The bool reports whether a row was written.
func (r *ArchiveRepo) Insert(ctx context.Context, snapshot *model.ArchivedOrder) (bool, error) {
	if snapshot == nil {
		return false, errors.New("archive snapshot is required")
	}
	if snapshot.OriginalOrderID == "" {
		return false, errors.New("original order id is required")
	}

	archivedAt := snapshot.ArchivedAt
	if archivedAt.IsZero() {
		archivedAt = r.timeProvider.Now()
	}

	items := snapshot.Items
	if items == nil {
		items = []byte("[]")
	}

	query := `
		INSERT INTO archived_orders
			(id, original_order_id, order_number, status, customer_id, total_amount, items,
			 order_created_at, order_updated_at, archived_at, archived_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (original_order_id) DO NOTHING`

	res, err := r.DB.ExecContext(ctx, query,
		uuid.NewString(), snapshot.OriginalOrderID, snapshot.OrderNumber, snapshot.Status,
		snapshot.CustomerID, snapshot.TotalAmount, items,
		snapshot.OrderCreatedAt, snapshot.OrderUpdatedAt, archivedAt, snapshot.ArchivedBy,
	)
	if err != nil {
		// ON CONFLICT covers the common case; surface any other
		// constraint violation with its code for metric tagging.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return false, nil
		}
		return false, fmt.Errorf("insert archived order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert archived order: rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetByOriginalOrderID fetches the snapshot written for an order.
func (r *ArchiveRepo) GetByOriginalOrderID(
	ctx context.Context,
	originalOrderID string,
) (*model.ArchivedOrder, error) {
	query := `SELECT ` + archivedOrderColumns + ` FROM archived_orders WHERE original_order_id = $1`

	var archived model.ArchivedOrder
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, err := pgxConn.Query(ctx, query, originalOrderID)
		if err != nil {
			return err
		}
		defer rows.Close()

		archived, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ArchivedOrder])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrArchiveNotFound
		}
		return nil, fmt.Errorf("get archived order: %w", err)
	}

	return &archived, nil
}
