package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gpjen/bookingroom/internal/core"
	"github.com/gpjen/bookingroom/internal/data/pgxutil"
	"github.com/gpjen/bookingroom/internal/domain/model"
)

var (
	// ErrBookingNotFound is returned when a booking request is not found.
	ErrBookingNotFound = errors.New("booking request not found")
	// ErrBookingReferenceExists is returned on a duplicate booking reference.
	ErrBookingReferenceExists = errors.New("booking reference already exists")
	// ErrBookingBedMissing is returned when the referenced bed or building does not exist.
	ErrBookingBedMissing = errors.New("referenced bed or building does not exist")
)

// ErrInvalidBookingTransition is returned when a booking status change is
// not allowed by the state machine.
type ErrInvalidBookingTransition struct {
	From model.BookingStatus
	To   model.BookingStatus
}

func (e *ErrInvalidBookingTransition) Error() string {
	return fmt.Sprintf("invalid booking transition %s -> %s", e.From, e.To)
}

// BookingRepo provides database operations for booking requests. Status
// transitions that affect a bed run in one transaction with the bed update.
type BookingRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewBookingRepo creates a new BookingRepo with real time provider.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewBookingRepoWithTimeProvider creates a new BookingRepo with a custom time provider.
func NewBookingRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *BookingRepo {
	return &BookingRepo{DB: db, timeProvider: tp}
}

const bookingColumns = `
	id, reference, identity_key, username, bed_id, building_id, status,
	start_date, end_date, note, decided_by, decided_at, created_at, updated_at`

// Create inserts a booking request in the pending state.
func (r *BookingRepo) Create(ctx context.Context, params core.CreateBookingParams) (*model.BookingRequest, error) {
	if params.Reference == "" {
		return nil, errors.New("booking reference is required")
	}

	now := r.timeProvider.Now().UTC()
	var out model.BookingRequest
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO booking_requests (
				reference, identity_key, username, bed_id, building_id, status,
				start_date, end_date, note, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
			RETURNING`+bookingColumns,
			params.Reference,
			params.IdentityKey,
			strings.TrimSpace(params.Username),
			params.BedID,
			params.BuildingID,
			model.BookingStatusPending,
			params.StartDate,
			params.EndDate,
			params.Note,
			now,
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BookingRequest])
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return nil, ErrBookingReferenceExists
			case pgerrcode.ForeignKeyViolation, pgerrcode.InvalidTextRepresentation:
				return nil, ErrBookingBedMissing
			}
		}
		return nil, fmt.Errorf("failed to create booking request: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a booking request by ID.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.BookingRequest, error) {
	return r.getByQuery(ctx, `
		SELECT`+bookingColumns+`
		FROM booking_requests WHERE id = $1`, id)
}

// GetByReference retrieves a booking request by its user-facing reference.
func (r *BookingRepo) GetByReference(ctx context.Context, reference string) (*model.BookingRequest, error) {
	return r.getByQuery(ctx, `
		SELECT`+bookingColumns+`
		FROM booking_requests WHERE reference = $1`, reference)
}

// List retrieves booking requests with the given filters, newest first.
func (r *BookingRepo) List(ctx context.Context, opts model.BookingsListOptions) ([]*model.BookingRequest, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	where, args := buildBookingFilters(opts)
	args = append(args, limit, offset)
	query := `
		SELECT` + bookingColumns + `
		FROM booking_requests` + where + `
		ORDER BY created_at DESC
		LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	var rowsOut []model.BookingRequest
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.BookingRequest])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list booking requests: %w", err)
	}

	res := make([]*model.BookingRequest, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Transition applies a booking status change, and the bed status change when
// one is requested, in a single transaction. The booking row is locked first
// so concurrent decisions serialize.
func (r *BookingRepo) Transition(ctx context.Context, params core.TransitionBookingParams) (*model.BookingRequest, error) {
	if !params.Next.Valid() {
		return nil, fmt.Errorf("invalid booking status: %s", params.Next)
	}

	now := r.timeProvider.Now().UTC()
	var out model.BookingRequest
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT`+bookingColumns+`
			FROM booking_requests WHERE id = $1
			FOR UPDATE`, params.BookingID)
		if err != nil {
			return err
		}
		current, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BookingRequest])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("lock booking: %w", err)
		}

		if !current.Status.CanTransitionTo(params.Next) {
			return &ErrInvalidBookingTransition{From: current.Status, To: params.Next}
		}

		if params.BedStatus != nil {
			var bed model.Bed
			if bedErr := applyBedTransition(ctx, tx, current.BedID, *params.BedStatus, now, &bed); bedErr != nil {
				return bedErr
			}
		}

		query := `
			UPDATE booking_requests
			SET status = $2, updated_at = $3
			WHERE id = $1
			RETURNING` + bookingColumns
		args := []any{params.BookingID, params.Next, now}
		if params.DecidedBy != nil {
			query = `
				UPDATE booking_requests
				SET status = $2, updated_at = $3, decided_by = $4, decided_at = $3
				WHERE id = $1
				RETURNING` + bookingColumns
			args = append(args, *params.DecidedBy)
		}
		rows, err = tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BookingRequest])
		return err
	}})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// --- helpers ---

func buildBookingFilters(opts model.BookingsListOptions) (string, []any) {
	var conds []string
	var args []any
	next := func() string { return "$" + strconv.Itoa(len(args)) }

	if opts.Status != nil {
		args = append(args, *opts.Status)
		conds = append(conds, "status = "+next())
	}
	if opts.BuildingID != nil {
		args = append(args, *opts.BuildingID)
		conds = append(conds, "building_id = "+next())
	}
	if opts.IdentityKey != nil {
		args = append(args, *opts.IdentityKey)
		conds = append(conds, "identity_key = "+next())
	}
	if len(opts.BuildingIDs) > 0 {
		args = append(args, opts.BuildingIDs)
		conds = append(conds, "building_id = ANY("+next()+")")
	}

	if len(conds) == 0 {
		return "", args
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND "), args
}

func (r *BookingRepo) getByQuery(ctx context.Context, q string, args ...any) (*model.BookingRequest, error) {
	var out model.BookingRequest
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BookingRequest])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking request: %w", err)
	}
	return &out, nil
}
