package webhook

// Package webhook delivers booking lifecycle events to configured HTTP sinks.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/sync/errgroup"

	"github.com/gpjen/bookingroom/internal/domain/model"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// LibEvaluator implements JMESPathEvaluator using go-jmespath.
type LibEvaluator struct{}

func (LibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (LibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// NotifierOptions groups dependencies for Notifier.
type NotifierOptions struct {
	HTTPClient *http.Client       // Optional, defaults to a 10s-timeout client
	Evaluator  JMESPathEvaluator  // Optional, defaults to LibEvaluator
	Logger     *slog.Logger       // Optional
	MaxInFlight int               // Optional, defaults to 4 concurrent deliveries
}

// Notifier fans a booking event out to enabled sinks. Delivery is best
// effort: a failed sink is logged and does not block the others or the
// originating booking operation.
type Notifier struct {
	client      *http.Client
	jems        JMESPathEvaluator
	logger      *slog.Logger
	maxInFlight int
}

// NewNotifier constructs a Notifier.
func NewNotifier(opts NotifierOptions) *Notifier {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	jems := opts.Evaluator
	if jems == nil {
		jems = LibEvaluator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxInFlight := opts.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 4
	}
	return &Notifier{
		client:      client,
		jems:        jems,
		logger:      logger.With("component", "webhook_notifier"),
		maxInFlight: maxInFlight,
	}
}

// Notify delivers the event to every enabled sink concurrently and returns
// after all deliveries finish. Per-sink failures are logged, not returned.
func (n *Notifier) Notify(ctx context.Context, sinks []model.WebhookSink, event model.BookingEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.ErrorContext(ctx, "marshal booking event", "error", err, "reference", event.Reference)
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n.maxInFlight)
	for _, sink := range sinks {
		if !sink.Enabled {
			continue
		}
		g.Go(func() error {
			if deliverErr := n.deliver(ctx, sink, payload); deliverErr != nil {
				n.logger.WarnContext(ctx, "webhook delivery failed",
					"sink_id", sink.ID,
					"sink_name", sink.Name,
					"event_type", event.Type,
					"reference", event.Reference,
					"error", deliverErr,
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// deliver posts one payload to one sink, applying its selector when set.
func (n *Notifier) deliver(ctx context.Context, sink model.WebhookSink, payload []byte) error {
	body, err := n.deriveBody(sink.Selector, payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sink.URI, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// deriveBody applies the sink's JMESPath selector to the payload, or passes
// the payload through unchanged when no selector is set.
func (n *Notifier) deriveBody(selector *string, payload []byte) ([]byte, error) {
	expr := ""
	if selector != nil {
		expr = strings.TrimSpace(*selector)
	}
	if expr == "" {
		return payload, nil
	}

	var data any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("invalid payload JSON: %w", err)
	}
	res, err := n.jems.Evaluate(expr, data)
	if err != nil {
		return nil, fmt.Errorf("evaluate selector: %w", err)
	}
	b, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal derived body: %w", err)
	}
	return b, nil
}
