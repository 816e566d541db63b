package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stockroomhq/warehouse-ops/internal/data/pgxutil"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
)

// NotificationRepo provides database operations for notification records.
type NotificationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewNotificationRepo creates a new NotificationRepo instance with the given database connection.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// notificationColumns defines the column list for notification SELECT queries
// to ensure consistent field mapping.
const notificationColumns = `id, title, message, recipient_id, type, metadata, read_status, read_at, is_deleted, deleted_at, created_at`

const (
	defaultNotificationPageSize = 20
	maxNotificationPageSize     = 100
)

// Create inserts a new notification row. Recipient validation is the
// service layer's concern; this method only persists.
func (r *NotificationRepo) Create(
	ctx context.Context,
	req *model.CreateNotificationRequest,
) (*model.Notification, error) {
	if req == nil {
		return nil, errors.New("create notification request is required")
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = []byte("{}")
	}

	now := r.timeProvider.Now()
	query := `
		INSERT INTO notifications (id, title, message, recipient_id, type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + notificationColumns

	var notification model.Notification
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, err := pgxConn.Query(ctx, query,
			uuid.NewString(), req.Title, req.Message, req.RecipientID, req.Type, metadata, now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		notification, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Notification])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	return &notification, nil
}

// GetByID fetches a notification regardless of owner. Soft-deleted rows are
// excluded.
func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1 AND is_deleted = FALSE`

	var notification model.Notification
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, err := pgxConn.Query(ctx, query, id)
		if err != nil {
			return err
		}
		defer rows.Close()

		notification, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Notification])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}

	return &notification, nil
}

// ListForUser returns one page of a user's notifications, newest first,
// excluding soft-deleted rows, with total and unread counts.
func (r *NotificationRepo) ListForUser(
	ctx context.Context,
	userID string,
	opts model.NotificationListOptions,
) (*model.NotificationPage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultNotificationPageSize
	}
	if limit > maxNotificationPageSize {
		limit = maxNotificationPageSize
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	where, args := buildNotificationFilter(userID, opts)

	page := &model.NotificationPage{Items: []*model.Notification{}}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		listQuery := `SELECT ` + notificationColumns + ` FROM notifications ` + where +
			` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) +
			` OFFSET $` + strconv.Itoa(len(args)+2)

		rows, err := pgxConn.Query(ctx, listQuery, append(args, limit, offset)...)
		if err != nil {
			return err
		}
		items, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Notification])
		if err != nil {
			return err
		}
		page.Items = items

		countQuery := `SELECT COUNT(*) FROM notifications ` + where
		if err := pgxConn.QueryRow(ctx, countQuery, args...).Scan(&page.Total); err != nil {
			return err
		}

		unreadQuery := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_deleted = FALSE AND read_status = FALSE`
		return pgxConn.QueryRow(ctx, unreadQuery, userID).Scan(&page.UnreadCount)
	})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return page, nil
}

// buildNotificationFilter assembles the WHERE clause shared by the list and
// count queries.
func buildNotificationFilter(userID string, opts model.NotificationListOptions) (string, []any) {
	clauses := []string{"recipient_id = $1", "is_deleted = FALSE"}
	args := []any{userID}

	if opts.UnreadOnly {
		clauses = append(clauses, "read_status = FALSE")
	}
	if opts.Type != nil {
		args = append(args, *opts.Type)
		clauses = append(clauses, "type = $"+strconv.Itoa(len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// MarkRead sets read state on one owned notification. The second return
// value is false when the notification was already read, in which case the
// stored read_at is preserved.
func (r *NotificationRepo) MarkRead(
	ctx context.Context,
	id, userID string,
) (*model.Notification, bool, error) {
	now := r.timeProvider.Now()

	// The read_status guard makes the update a no-op for already-read rows,
	// so a second call cannot move read_at.
	updateQuery := `
		UPDATE notifications
		SET read_status = TRUE, read_at = $3
		WHERE id = $1 AND recipient_id = $2 AND is_deleted = FALSE AND read_status = FALSE
		RETURNING ` + notificationColumns

	var notification model.Notification
	changed := false
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, err := pgxConn.Query(ctx, updateQuery, id, userID, now)
		if err != nil {
			return err
		}
		notification, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Notification])
		if err == nil {
			changed = true
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		// Nothing updated: either already read (return current row) or
		// not owned / missing (not found).
		selectQuery := `SELECT ` + notificationColumns + ` FROM notifications
			WHERE id = $1 AND recipient_id = $2 AND is_deleted = FALSE`
		rows, err = pgxConn.Query(ctx, selectQuery, id, userID)
		if err != nil {
			return err
		}
		notification, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Notification])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrNotificationNotFound
		}
		return nil, false, fmt.Errorf("mark notification read: %w", err)
	}

	return &notification, changed, nil
}

// MarkAllRead marks every unread notification of the user and returns the
// number of rows changed.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	now := r.timeProvider.Now()
	query := `
		UPDATE notifications
		SET read_status = TRUE, read_at = $2
		WHERE recipient_id = $1 AND is_deleted = FALSE AND read_status = FALSE`

	res, err := r.DB.ExecContext(ctx, query, userID, now)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: rows affected: %w", err)
	}
	return int(affected), nil
}

// SoftDelete flags one owned notification as deleted. There is no hard
// delete path.
func (r *NotificationRepo) SoftDelete(ctx context.Context, id, userID string) error {
	now := r.timeProvider.Now()
	query := `
		UPDATE notifications
		SET is_deleted = TRUE, deleted_at = $3
		WHERE id = $1 AND recipient_id = $2 AND is_deleted = FALSE`

	res, err := r.DB.ExecContext(ctx, query, id, userID, now)
	if err != nil {
		return fmt.Errorf("soft delete notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete notification: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
