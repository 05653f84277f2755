package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gpjen/bookingroom/internal/data/pgxutil"
	"github.com/gpjen/bookingroom/internal/domain/model"
)

var (
	// ErrGrantNotFound is returned when a building access grant is not found.
	ErrGrantNotFound = errors.New("building access grant not found")
	// ErrGrantExists is returned when the identity already has access to the building.
	ErrGrantExists = errors.New("building access already granted")
	// ErrGrantBuildingMissing is returned when the referenced building does not exist.
	ErrGrantBuildingMissing = errors.New("referenced building does not exist")
)

// GrantRepo provides database operations for building access grants.
type GrantRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewGrantRepo creates a new GrantRepo.
func NewGrantRepo(db *sql.DB) *GrantRepo {
	return &GrantRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Create grants an identity access to a building. The identity key is
// supplied by the caller already case-folded.
func (r *GrantRepo) Create(ctx context.Context, identityKey string, req *model.CreateGrantRequest) (*model.BuildingAccessGrant, error) {
	if req == nil {
		return nil, errors.New("create grant request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.BuildingAccessGrant
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO building_access_grants (identity_key, building_id, created_at)
			VALUES ($1, $2, $3)
			RETURNING id, identity_key, building_id, created_at`,
			identityKey, req.BuildingID, r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BuildingAccessGrant])
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return nil, ErrGrantExists
			case pgerrcode.ForeignKeyViolation, pgerrcode.InvalidTextRepresentation:
				return nil, ErrGrantBuildingMissing
			}
		}
		return nil, fmt.Errorf("failed to create building access grant: %w", err)
	}
	return &out, nil
}

// ListByIdentity retrieves all grants for one identity key.
func (r *GrantRepo) ListByIdentity(ctx context.Context, identityKey string) ([]*model.BuildingAccessGrant, error) {
	var rowsOut []model.BuildingAccessGrant
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, identity_key, building_id, created_at
			FROM building_access_grants
			WHERE identity_key = $1
			ORDER BY created_at ASC`, identityKey)
		if err != nil {
			return err
		}
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.BuildingAccessGrant])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list building access grants: %w", err)
	}

	res := make([]*model.BuildingAccessGrant, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Delete removes a grant by ID.
func (r *GrantRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM building_access_grants WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete building access grant: %w", err)
	}
	return rows > 0, nil
}
