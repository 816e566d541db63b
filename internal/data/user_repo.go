package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stockroomhq/warehouse-ops/internal/data/pgxutil"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
)

// UserRepo provides the account reads and the credential clear used by the
// background jobs. Account creation and profile updates belong to the
// request-side CRUD surface.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo creates a new UserRepo instance with the given database connection.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

const userColumns = `id, email, role, is_active, is_deleted, refresh_token, last_login_at`

// GetByID fetches a single user, including soft-deleted rows so callers can
// distinguish "deleted" from "never existed".
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, err := pgxConn.Query(ctx, query, id)
		if err != nil {
			return err
		}
		defer rows.Close()

		user, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// FindActiveByRoles returns active, non-deleted users holding any of the
// given roles.
func (r *UserRepo) FindActiveByRoles(
	ctx context.Context,
	roles []model.UserRole,
) ([]*model.User, error) {
	if len(roles) == 0 {
		return []*model.User{}, nil
	}

	placeholders := make([]string, 0, len(roles))
	args := make([]any, 0, len(roles))
	for i, role := range roles {
		placeholders = append(placeholders, "$"+strconv.Itoa(i+1))
		args = append(args, role)
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role IN (` + strings.Join(placeholders, ", ") + `)
			AND is_active = TRUE AND is_deleted = FALSE
		ORDER BY email ASC`

	var users []*model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, err := pgxConn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		users, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.User])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("find active users by roles: %w", err)
	}

	return users, nil
}

// FindWithRefreshToken pages through users holding a stored refresh
// credential, in stable id order so batch windows do not overlap.
func (r *UserRepo) FindWithRefreshToken(
	ctx context.Context,
	limit, offset int,
) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE refresh_token IS NOT NULL AND refresh_token <> ''
		ORDER BY id ASC
		LIMIT $1 OFFSET $2`

	var users []*model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, err := pgxConn.Query(ctx, query, limit, offset)
		if err != nil {
			return err
		}
		users, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.User])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("find users with refresh token: %w", err)
	}

	return users, nil
}

// ClearRefreshToken drops the stored credential. Clearing an already-clear
// credential is a no-op, which keeps the cleanup job convergent.
func (r *UserRepo) ClearRefreshToken(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET refresh_token = NULL WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// CountActiveSince counts non-deleted users whose last login falls after since.
func (r *UserRepo) CountActiveSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users
		WHERE is_deleted = FALSE AND last_login_at IS NOT NULL AND last_login_at >= $1`,
		since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}
	return count, nil
}
