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
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameExists is returned when attempting to create/update a role with a duplicate name.
	ErrRoleNameExists = errors.New("role name already exists")
	// ErrUnknownPermissionKey is returned when a role references a permission key that is not registered.
	ErrUnknownPermissionKey = errors.New("unknown permission key")
)

// RoleRepo provides database operations for roles and their permission lists.
type RoleRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewRoleRepo creates a new RoleRepo with real time provider.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewRoleRepoWithTimeProvider creates a new RoleRepo with a custom time provider (useful for tests).
func NewRoleRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *RoleRepo {
	return &RoleRepo{DB: db, timeProvider: tp}
}

// Create inserts a role and its permission key list in one transaction.
func (r *RoleRepo) Create(ctx context.Context, req *model.CreateRoleRequest) (*model.Role, error) {
	if req == nil {
		return nil, errors.New("create role request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	var out model.Role
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO roles (name, system, created_at, updated_at)
			VALUES ($1, $2, $3, $3)
			RETURNING id, name, system, created_at, updated_at`,
			strings.TrimSpace(req.Name), req.System, now)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Role])
		if err != nil {
			return err
		}
		return replaceRolePermissions(ctx, tx, out.ID, req.PermissionKeys)
	}})
	if err != nil {
		return nil, r.mapWriteErr(err, false)
	}
	out.PermissionKeys = normalizeKeys(req.PermissionKeys)
	return &out, nil
}

// GetByID retrieves a role with its permission keys.
func (r *RoleRepo) GetByID(ctx context.Context, id string) (*model.Role, error) {
	return r.getByQuery(ctx, roleGetByIDQuery, "failed to get role by ID", id)
}

// GetByName retrieves a role with its permission keys by name.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (*model.Role, error) {
	return r.getByQuery(ctx, roleGetByNameQuery, "failed to get role by name", name)
}

// List retrieves roles with pagination, permission keys included.
func (r *RoleRepo) List(ctx context.Context, limit, offset int) ([]*model.Role, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.Role
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, roleListQuery, limit, offset)
		if err != nil {
			return err
		}
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Role])
		if err != nil {
			return err
		}
		for i := range rowsOut {
			keys, keysErr := rolePermissionKeys(ctx, conn, rowsOut[i].ID)
			if keysErr != nil {
				return keysErr
			}
			rowsOut[i].PermissionKeys = keys
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	res := make([]*model.Role, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates a role's name and/or permission key list.
func (r *RoleRepo) Update(ctx context.Context, id string, req model.UpdateRoleRequest) (*model.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	var out model.Role
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		query := `
			UPDATE roles SET updated_at = $2 WHERE id = $1
			RETURNING id, name, system, created_at, updated_at`
		args := []any{id, now}
		if req.Name != nil {
			query = `
				UPDATE roles SET name = $2, updated_at = $3 WHERE id = $1
				RETURNING id, name, system, created_at, updated_at`
			args = []any{id, strings.TrimSpace(*req.Name), now}
		}
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Role])
		if err != nil {
			return err
		}
		if req.PermissionKeys != nil {
			if delErr := deleteRolePermissions(ctx, tx, id); delErr != nil {
				return delErr
			}
			return replaceRolePermissions(ctx, tx, id, *req.PermissionKeys)
		}
		return nil
	}})
	if err != nil {
		return nil, r.mapWriteErr(err, true)
	}
	return r.GetByID(ctx, out.ID)
}

// Delete deletes a role by ID. Role permission links cascade.
func (r *RoleRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete role: %w", err)
	}
	return rows > 0, nil
}

// AssignmentCount returns the number of user role assignments referencing the role.
func (r *RoleRepo) AssignmentCount(ctx context.Context, roleID string) (int, error) {
	var count int
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT COUNT(*) FROM user_role_assignments WHERE role_id = $1`, roleID,
		).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count role assignments: %w", err)
	}
	return count, nil
}

// --- helpers ---

const (
	roleGetByIDQuery = `
		SELECT id, name, system, created_at, updated_at
		FROM roles
		WHERE id = $1`

	roleGetByNameQuery = `
		SELECT id, name, system, created_at, updated_at
		FROM roles
		WHERE name = $1`

	roleListQuery = `
		SELECT id, name, system, created_at, updated_at
		FROM roles
		ORDER BY name ASC
		LIMIT $1 OFFSET $2`
)

func (r *RoleRepo) getByQuery(ctx context.Context, q, errMsg string, args ...any) (*model.Role, error) {
	var role model.Role
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		role, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Role])
		if err != nil {
			return err
		}
		role.PermissionKeys, err = rolePermissionKeys(ctx, conn, role.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return &role, nil
}

func rolePermissionKeys(ctx context.Context, conn *pgx.Conn, roleID string) ([]string, error) {
	rows, err := conn.Query(ctx, `
		SELECT permission_key FROM role_permissions
		WHERE role_id = $1
		ORDER BY permission_key ASC`, roleID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func replaceRolePermissions(ctx context.Context, tx pgx.Tx, roleID string, keys []string) error {
	for _, key := range normalizeKeys(keys) {
		if _, err := tx.Exec(ctx, `
			INSERT INTO role_permissions (role_id, permission_key)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, roleID, key); err != nil {
			return err
		}
	}
	return nil
}

func deleteRolePermissions(ctx context.Context, tx pgx.Tx, roleID string) error {
	_, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID)
	return err
}

// normalizeKeys trims and deduplicates permission keys, preserving order.
func normalizeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func (r *RoleRepo) mapWriteErr(err error, includeNotFound bool) error {
	if err == nil {
		return nil
	}
	if includeNotFound && errors.Is(err, pgx.ErrNoRows) {
		return ErrRoleNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrRoleNameExists
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrUnknownPermissionKey, pgErr.Detail)
		}
	}
	return err
}
