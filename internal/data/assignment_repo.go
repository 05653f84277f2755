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
	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
	"github.com/gpjen/bookingroom/internal/domain/model"
	"github.com/gpjen/bookingroom/internal/ports"
)

var (
	// ErrAssignmentNotFound is returned when a user role assignment is not found.
	ErrAssignmentNotFound = errors.New("user role assignment not found")
	// ErrAssignmentExists is returned when the identity already holds the role in the same company scope.
	ErrAssignmentExists = errors.New("user already holds this role in this company scope")
	// ErrAssignmentRoleMissing is returned when the referenced role does not exist.
	ErrAssignmentRoleMissing = errors.New("referenced role does not exist")
)

// AssignmentRepo provides database operations for user role assignments. It
// also implements ports.DirectoryReader for permission resolution.
type AssignmentRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAssignmentRepo creates a new AssignmentRepo.
func NewAssignmentRepo(db *sql.DB) *AssignmentRepo {
	return &AssignmentRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Create inserts a user role assignment. The identity key is derived from
// the username by case-folding.
func (r *AssignmentRepo) Create(ctx context.Context, req *model.CreateAssignmentRequest) (*model.UserRoleAssignment, error) {
	if req == nil {
		return nil, errors.New("create assignment request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	identityKey := domainauth.IdentityKeyOf(req.Username)
	var out model.UserRoleAssignment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			WITH inserted AS (
				INSERT INTO user_role_assignments (
					identity_key, username, display_name, email, role_id, company_code, created_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id, identity_key, username, display_name, email, role_id, company_code, created_at
			)
			SELECT i.id, i.identity_key, i.username, i.display_name, i.email,
			       i.role_id, r.name AS role_name, i.company_code, i.created_at
			FROM inserted i
			JOIN roles r ON r.id = i.role_id`,
			identityKey,
			strings.TrimSpace(req.Username),
			strings.TrimSpace(req.DisplayName),
			strings.TrimSpace(req.Email),
			req.RoleID,
			normalizeCompanyCode(req.CompanyCode),
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.UserRoleAssignment])
		return err
	})
	if err != nil {
		return nil, r.mapWriteErr(err)
	}
	return &out, nil
}

// List retrieves assignments with pagination, newest first.
func (r *AssignmentRepo) List(ctx context.Context, limit, offset int) ([]*model.UserRoleAssignment, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return r.listByQuery(ctx, assignmentListQuery, "failed to list assignments", limit, offset)
}

// ListByIdentity retrieves all assignments for one case-folded identity key.
func (r *AssignmentRepo) ListByIdentity(ctx context.Context, identityKey string) ([]*model.UserRoleAssignment, error) {
	return r.listByQuery(ctx, assignmentListByIdentityQuery, "failed to list assignments by identity", identityKey)
}

// Delete removes an assignment by ID.
func (r *AssignmentRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM user_role_assignments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete assignment: %w", err)
	}
	return rows > 0, nil
}

// RoleGrants loads the role assignments reachable from an identity key with
// each role's full permission key list. Implements ports.DirectoryReader.
func (r *AssignmentRepo) RoleGrants(ctx context.Context, identityKey string) ([]ports.RoleGrant, error) {
	type grantRow struct {
		RoleID      string  `db:"role_id"`
		RoleName    string  `db:"role_name"`
		CompanyCode *string `db:"company_code"`
	}

	var grants []ports.RoleGrant
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT a.role_id, r.name AS role_name, a.company_code
			FROM user_role_assignments a
			JOIN roles r ON r.id = a.role_id
			WHERE a.identity_key = $1
			ORDER BY a.created_at ASC`, identityKey)
		if err != nil {
			return err
		}
		grantRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[grantRow])
		if err != nil {
			return err
		}
		grants = make([]ports.RoleGrant, 0, len(grantRows))
		for _, g := range grantRows {
			keys, keysErr := rolePermissionKeys(ctx, conn, g.RoleID)
			if keysErr != nil {
				return keysErr
			}
			grants = append(grants, ports.RoleGrant{
				RoleName:       g.RoleName,
				CompanyCode:    g.CompanyCode,
				PermissionKeys: keys,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load role grants: %w", err)
	}
	return grants, nil
}

// BuildingGrants loads the buildings an identity key has access to.
// Implements ports.DirectoryReader.
func (r *AssignmentRepo) BuildingGrants(ctx context.Context, identityKey string) ([]domainauth.BuildingRef, error) {
	var refs []domainauth.BuildingRef
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT b.id, b.code, b.name, b.area
			FROM building_access_grants g
			JOIN buildings b ON b.id = g.building_id
			WHERE g.identity_key = $1
			ORDER BY b.code ASC`, identityKey)
		if err != nil {
			return err
		}
		refs, err = pgx.CollectRows(rows, pgx.RowToStructByName[domainauth.BuildingRef])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load building grants: %w", err)
	}
	return refs, nil
}

// --- helpers ---

const (
	assignmentColumns = `
		a.id, a.identity_key, a.username, a.display_name, a.email,
		a.role_id, r.name AS role_name, a.company_code, a.created_at`

	assignmentListQuery = `
		SELECT ` + assignmentColumns + `
		FROM user_role_assignments a
		JOIN roles r ON r.id = a.role_id
		ORDER BY a.created_at DESC
		LIMIT $1 OFFSET $2`

	assignmentListByIdentityQuery = `
		SELECT ` + assignmentColumns + `
		FROM user_role_assignments a
		JOIN roles r ON r.id = a.role_id
		WHERE a.identity_key = $1
		ORDER BY a.created_at ASC`
)

func (r *AssignmentRepo) listByQuery(
	ctx context.Context,
	q string,
	errMsg string,
	args ...any,
) ([]*model.UserRoleAssignment, error) {
	var rowsOut []model.UserRoleAssignment
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.UserRoleAssignment])
		return err
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}

	res := make([]*model.UserRoleAssignment, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// normalizeCompanyCode lowercases a company scope for storage; company codes
// compare case-insensitively.
func normalizeCompanyCode(code *string) *string {
	if code == nil {
		return nil
	}
	c := strings.ToLower(strings.TrimSpace(*code))
	return &c
}

func (r *AssignmentRepo) mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		// The post-insert join only misses when the role row is gone.
		return ErrAssignmentRoleMissing
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrAssignmentExists
		case pgerrcode.ForeignKeyViolation:
			return ErrAssignmentRoleMissing
		case pgerrcode.InvalidTextRepresentation:
			// Malformed UUID in role_id.
			return ErrAssignmentRoleMissing
		}
	}
	return err
}
