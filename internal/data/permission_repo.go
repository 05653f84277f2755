package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gpjen/bookingroom/internal/data/pgxutil"
	"github.com/gpjen/bookingroom/internal/domain/model"
)

var (
	// ErrPermissionNotFound is returned when a permission key is not registered.
	ErrPermissionNotFound = errors.New("permission not found")
	// ErrPermissionKeyExists is returned when registering a duplicate permission key.
	ErrPermissionKeyExists = errors.New("permission key already exists")
	// ErrPermissionInUse is returned when deleting a permission key referenced by a role.
	ErrPermissionInUse = errors.New("permission key is referenced by a role")
)

// PermissionRepo provides database operations for permission keys.
type PermissionRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewPermissionRepo creates a new PermissionRepo.
func NewPermissionRepo(db *sql.DB) *PermissionRepo {
	return &PermissionRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Create registers a permission key.
func (r *PermissionRepo) Create(ctx context.Context, req *model.CreatePermissionRequest) (*model.Permission, error) {
	if req == nil {
		return nil, errors.New("create permission request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Permission
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO permissions (key, description, category, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING key, description, category, created_at`,
			strings.TrimSpace(req.Key), req.Description, req.Category, r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Permission])
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrPermissionKeyExists
		}
		return nil, fmt.Errorf("failed to create permission: %w", err)
	}
	return &out, nil
}

// GetByKey retrieves a permission by its key.
func (r *PermissionRepo) GetByKey(ctx context.Context, key string) (*model.Permission, error) {
	var out model.Permission
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT key, description, category, created_at
			FROM permissions WHERE key = $1`, key)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Permission])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPermissionNotFound
		}
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	return &out, nil
}

// List retrieves all permission keys ordered by category then key.
func (r *PermissionRepo) List(ctx context.Context) ([]*model.Permission, error) {
	var rowsOut []model.Permission
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT key, description, category, created_at
			FROM permissions
			ORDER BY category ASC, key ASC`)
		if err != nil {
			return err
		}
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Permission])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	res := make([]*model.Permission, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Delete removes a permission key. Keys referenced by any role cannot be
// deleted.
func (r *PermissionRepo) Delete(ctx context.Context, key string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM permissions WHERE key = $1`, key)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return false, ErrPermissionInUse
		}
		return false, fmt.Errorf("failed to delete permission: %w", err)
	}
	return rows > 0, nil
}
