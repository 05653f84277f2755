package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gpjen/bookingroom/internal/data/pgxutil"
	"github.com/gpjen/bookingroom/internal/domain/model"
)

var (
	// ErrBuildingNotFound is returned when a building is not found.
	ErrBuildingNotFound = errors.New("building not found")
	// ErrBuildingCodeExists is returned when a building code is already registered.
	ErrBuildingCodeExists = errors.New("building code already exists")
	// ErrRoomNotFound is returned when a room is not found.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomCodeExists is returned when a room code is already used within the building.
	ErrRoomCodeExists = errors.New("room code already exists in this building")
	// ErrBedNotFound is returned when a bed is not found.
	ErrBedNotFound = errors.New("bed not found")
	// ErrBedCodeExists is returned when a bed code is already used within the room.
	ErrBedCodeExists = errors.New("bed code already exists in this room")
)

// BuildingRepo provides database operations for buildings, rooms, and beds.
type BuildingRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewBuildingRepo creates a new BuildingRepo with real time provider.
func NewBuildingRepo(db *sql.DB) *BuildingRepo {
	return &BuildingRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewBuildingRepoWithTimeProvider creates a new BuildingRepo with a custom time provider.
func NewBuildingRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *BuildingRepo {
	return &BuildingRepo{DB: db, timeProvider: tp}
}

// CreateBuilding inserts a building.
func (r *BuildingRepo) CreateBuilding(ctx context.Context, req *model.CreateBuildingRequest) (*model.Building, error) {
	if req == nil {
		return nil, errors.New("create building request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	var out model.Building
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO buildings (code, name, area, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			RETURNING id, code, name, area, created_at, updated_at`,
			strings.TrimSpace(req.Code), strings.TrimSpace(req.Name), strings.TrimSpace(req.Area), now)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Building])
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrBuildingCodeExists
		}
		return nil, fmt.Errorf("failed to create building: %w", err)
	}
	return &out, nil
}

// GetBuilding retrieves a building by ID.
func (r *BuildingRepo) GetBuilding(ctx context.Context, id string) (*model.Building, error) {
	return r.getBuildingByQuery(ctx, `
		SELECT id, code, name, area, created_at, updated_at
		FROM buildings WHERE id = $1`, id)
}

// GetBuildingByCode retrieves a building by its code.
func (r *BuildingRepo) GetBuildingByCode(ctx context.Context, code string) (*model.Building, error) {
	return r.getBuildingByQuery(ctx, `
		SELECT id, code, name, area, created_at, updated_at
		FROM buildings WHERE code = $1`, code)
}

// ListBuildings retrieves buildings with pagination ordered by code.
func (r *BuildingRepo) ListBuildings(ctx context.Context, limit, offset int) ([]*model.Building, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.Building
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, code, name, area, created_at, updated_at
			FROM buildings
			ORDER BY code ASC
			LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return err
		}
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Building])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}

	res := make([]*model.Building, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// CreateRoom inserts a room.
func (r *BuildingRepo) CreateRoom(ctx context.Context, req *model.CreateRoomRequest) (*model.Room, error) {
	if req == nil {
		return nil, errors.New("create room request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Room
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO rooms (building_id, code, floor, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, building_id, code, floor, created_at`,
			req.BuildingID, strings.TrimSpace(req.Code), req.Floor, r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Room])
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrRoomCodeExists
		}
		if isForeignKeyOrBadUUID(err) {
			return nil, ErrBuildingNotFound
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &out, nil
}

// GetRoom retrieves a room by ID.
func (r *BuildingRepo) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	var out model.Room
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, building_id, code, floor, created_at
			FROM rooms WHERE id = $1`, id)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Room])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &out, nil
}

// ListRooms retrieves the rooms of a building ordered by floor then code.
func (r *BuildingRepo) ListRooms(ctx context.Context, buildingID string) ([]*model.Room, error) {
	var rowsOut []model.Room
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, building_id, code, floor, created_at
			FROM rooms
			WHERE building_id = $1
			ORDER BY floor ASC, code ASC`, buildingID)
		if err != nil {
			return err
		}
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Room])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	res := make([]*model.Room, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// CreateBed inserts a bed in the available state.
func (r *BuildingRepo) CreateBed(ctx context.Context, req *model.CreateBedRequest) (*model.Bed, error) {
	if req == nil {
		return nil, errors.New("create bed request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Bed
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO beds (room_id, code, status, updated_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, room_id, code, status, updated_at`,
			req.RoomID, strings.TrimSpace(req.Code), model.BedStatusAvailable, r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Bed])
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrBedCodeExists
		}
		if isForeignKeyOrBadUUID(err) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to create bed: %w", err)
	}
	return &out, nil
}

// GetBed retrieves a bed by ID.
func (r *BuildingRepo) GetBed(ctx context.Context, id string) (*model.Bed, error) {
	var out model.Bed
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, room_id, code, status, updated_at
			FROM beds WHERE id = $1`, id)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Bed])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBedNotFound
		}
		return nil, fmt.Errorf("failed to get bed: %w", err)
	}
	return &out, nil
}

// ListBeds retrieves the beds of a room ordered by code.
func (r *BuildingRepo) ListBeds(ctx context.Context, roomID string) ([]*model.Bed, error) {
	var rowsOut []model.Bed
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, room_id, code, status, updated_at
			FROM beds
			WHERE room_id = $1
			ORDER BY code ASC`, roomID)
		if err != nil {
			return err
		}
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Bed])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list beds: %w", err)
	}

	res := make([]*model.Bed, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// UpdateBedStatus applies a bed state transition. The current row is locked
// so concurrent transitions serialize, and the transition table is enforced
// before writing.
func (r *BuildingRepo) UpdateBedStatus(ctx context.Context, id string, next model.BedStatus) (*model.Bed, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("invalid bed status: %s", next)
	}

	var out model.Bed
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		return applyBedTransition(ctx, tx, id, next, r.timeProvider.Now().UTC(), &out)
	}})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// OccupancySummaries aggregates bed counts and pending booking requests per building.
func (r *BuildingRepo) OccupancySummaries(ctx context.Context) ([]model.OccupancySummary, error) {
	var out []model.OccupancySummary
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT b.id AS building_id,
			       b.code AS building_code,
			       b.name AS building_name,
			       COUNT(*) FILTER (WHERE bd.status = 'available')::int AS available,
			       COUNT(*) FILTER (WHERE bd.status = 'reserved')::int AS reserved,
			       COUNT(*) FILTER (WHERE bd.status = 'occupied')::int AS occupied,
			       COUNT(*) FILTER (WHERE bd.status = 'maintenance')::int AS maintenance,
			       (SELECT COUNT(*) FROM booking_requests br
			        WHERE br.building_id = b.id AND br.status = 'pending')::int AS pending_requests
			FROM buildings b
			LEFT JOIN rooms rm ON rm.building_id = b.id
			LEFT JOIN beds bd ON bd.room_id = rm.id
			GROUP BY b.id, b.code, b.name
			ORDER BY b.code ASC`)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.OccupancySummary])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to aggregate occupancy: %w", err)
	}
	return out, nil
}

// --- helpers ---

// applyBedTransition locks the bed row, validates the transition, and writes
// the new status. Shared with the booking repo so booking transitions flip
// beds inside their own transaction.
func applyBedTransition(
	ctx context.Context,
	tx pgx.Tx,
	bedID string,
	next model.BedStatus,
	now time.Time,
	out *model.Bed,
) error {
	rows, err := tx.Query(ctx, `
		SELECT id, room_id, code, status, updated_at
		FROM beds WHERE id = $1
		FOR UPDATE`, bedID)
	if err != nil {
		return err
	}
	current, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Bed])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBedNotFound
		}
		return fmt.Errorf("lock bed: %w", err)
	}

	if !current.Status.CanTransitionTo(next) {
		return &model.ErrInvalidBedTransition{From: current.Status, To: next}
	}

	rows, err = tx.Query(ctx, `
		UPDATE beds SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, room_id, code, status, updated_at`,
		bedID, next, now)
	if err != nil {
		return err
	}
	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Bed])
	if err != nil {
		return fmt.Errorf("update bed status: %w", err)
	}
	*out = updated
	return nil
}

func (r *BuildingRepo) getBuildingByQuery(ctx context.Context, q string, args ...any) (*model.Building, error) {
	var out model.Building
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Building])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBuildingNotFound
		}
		return nil, fmt.Errorf("failed to get building: %w", err)
	}
	return &out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyOrBadUUID(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.ForeignKeyViolation || pgErr.Code == pgerrcode.InvalidTextRepresentation
}
