package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gpjen/bookingroom/internal/adapters/webhook"
	"github.com/gpjen/bookingroom/internal/core"
	"github.com/gpjen/bookingroom/internal/data"
	"github.com/gpjen/bookingroom/internal/domain/model"
)

// ErrInvalidSelector is returned when a sink selector fails JMESPath
// compilation.
var ErrInvalidSelector = errors.New("invalid selector expression")

// WebhookServiceOptions configures NewWebhookService.
type WebhookServiceOptions struct {
	Sinks     core.WebhookSinkRepository
	Evaluator webhook.JMESPathEvaluator
	Logger    *slog.Logger
}

// WebhookService manages webhook sink registrations. Selector expressions are
// compiled at registration time so delivery never sees a syntactically bad
// selector.
type WebhookService struct {
	sinks     core.WebhookSinkRepository
	evaluator webhook.JMESPathEvaluator
	logger    *slog.Logger
}

// NewWebhookService creates a WebhookService.
func NewWebhookService(opts WebhookServiceOptions) (*WebhookService, error) {
	if opts.Sinks == nil {
		return nil, errors.New("webhook sink repository is required")
	}
	if opts.Evaluator == nil {
		opts.Evaluator = webhook.LibEvaluator{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &WebhookService{
		sinks:     opts.Sinks,
		evaluator: opts.Evaluator,
		logger:    opts.Logger.With("component", "webhook_service"),
	}, nil
}

// Create registers a sink after validating its selector.
func (s *WebhookService) Create(ctx context.Context, req *model.CreateWebhookSinkRequest) (*model.WebhookSink, error) {
	if req == nil {
		return nil, errors.New("create webhook sink request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Selector != nil {
		if err := s.evaluator.Validate(*req.Selector); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSelector, err)
		}
	}

	sink, err := s.sinks.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "webhook sink registered", "name", sink.Name)
	return sink, nil
}

// Get retrieves a sink by ID.
func (s *WebhookService) Get(ctx context.Context, id string) (*model.WebhookSink, error) {
	return s.sinks.GetByID(ctx, id)
}

// List retrieves sinks with pagination.
func (s *WebhookService) List(ctx context.Context, limit, offset int) ([]*model.WebhookSink, error) {
	return s.sinks.List(ctx, limit, offset)
}

// SetEnabled toggles a sink.
func (s *WebhookService) SetEnabled(ctx context.Context, id string, enabled bool) (*model.WebhookSink, error) {
	return s.sinks.SetEnabled(ctx, id, enabled)
}

// Delete removes a sink.
func (s *WebhookService) Delete(ctx context.Context, id string) error {
	ok, err := s.sinks.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return data.ErrWebhookSinkNotFound
	}
	return nil
}
