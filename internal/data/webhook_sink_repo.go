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
	// ErrWebhookSinkNotFound is returned when a webhook sink is not found.
	ErrWebhookSinkNotFound = errors.New("webhook sink not found")
	// ErrWebhookSinkNameExists is returned on a duplicate sink name.
	ErrWebhookSinkNameExists = errors.New("webhook sink name already exists")
)

// WebhookSinkRepo provides database operations for webhook sinks.
type WebhookSinkRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewWebhookSinkRepo creates a new WebhookSinkRepo.
func NewWebhookSinkRepo(db *sql.DB) *WebhookSinkRepo {
	return &WebhookSinkRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

const webhookSinkColumns = `id, name, uri, selector, enabled, created_at`

// Create registers a webhook sink. Enabled defaults to true.
func (r *WebhookSinkRepo) Create(ctx context.Context, req *model.CreateWebhookSinkRequest) (*model.WebhookSink, error) {
	if req == nil {
		return nil, errors.New("create webhook sink request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	var selector *string
	if req.Selector != nil && strings.TrimSpace(*req.Selector) != "" {
		s := strings.TrimSpace(*req.Selector)
		selector = &s
	}

	var out model.WebhookSink
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO webhook_sinks (name, uri, selector, enabled, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+webhookSinkColumns,
			req.Name, req.URI, selector, enabled, r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.WebhookSink])
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrWebhookSinkNameExists
		}
		return nil, fmt.Errorf("failed to create webhook sink: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a webhook sink by ID.
func (r *WebhookSinkRepo) GetByID(ctx context.Context, id string) (*model.WebhookSink, error) {
	var out model.WebhookSink
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+webhookSinkColumns+`
			FROM webhook_sinks WHERE id = $1`, id)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.WebhookSink])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWebhookSinkNotFound
		}
		return nil, fmt.Errorf("failed to get webhook sink: %w", err)
	}
	return &out, nil
}

// List retrieves webhook sinks with pagination ordered by name.
func (r *WebhookSinkRepo) List(ctx context.Context, limit, offset int) ([]*model.WebhookSink, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.WebhookSink
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+webhookSinkColumns+`
			FROM webhook_sinks
			ORDER BY name ASC
			LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return err
		}
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.WebhookSink])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list webhook sinks: %w", err)
	}

	res := make([]*model.WebhookSink, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// ListEnabled retrieves all enabled sinks for event delivery.
func (r *WebhookSinkRepo) ListEnabled(ctx context.Context) ([]model.WebhookSink, error) {
	var out []model.WebhookSink
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+webhookSinkColumns+`
			FROM webhook_sinks
			WHERE enabled
			ORDER BY name ASC`)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.WebhookSink])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list enabled webhook sinks: %w", err)
	}
	return out, nil
}

// SetEnabled toggles a sink.
func (r *WebhookSinkRepo) SetEnabled(ctx context.Context, id string, enabled bool) (*model.WebhookSink, error) {
	var out model.WebhookSink
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE webhook_sinks SET enabled = $2
			WHERE id = $1
			RETURNING `+webhookSinkColumns, id, enabled)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.WebhookSink])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWebhookSinkNotFound
		}
		return nil, fmt.Errorf("failed to toggle webhook sink: %w", err)
	}
	return &out, nil
}

// Delete removes a webhook sink by ID.
func (r *WebhookSinkRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM webhook_sinks WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete webhook sink: %w", err)
	}
	return rows > 0, nil
}
