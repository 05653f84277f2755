package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpjen/bookingroom/internal/domain/model"
	"github.com/gpjen/bookingroom/internal/testutil"
)

func testEvent() model.BookingEvent {
	return model.BookingEvent{
		Type:       "booking.approved",
		Reference:  "01J0000000000000000000TEST",
		BookingID:  "b-1",
		BedID:      "bed-1",
		BuildingID: "bld-1",
		Username:   "a.resident",
		Status:     model.BookingStatusApproved,
		OccurredAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifier_DeliversToEnabledSinks(t *testing.T) {
	var mu sync.Mutex
	var bodies [][]byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, b)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(NotifierOptions{Logger: quietLogger()})
	sinks := []model.WebhookSink{
		{ID: "s1", Name: "ops", URI: srv.URL, Enabled: true},
		{ID: "s2", Name: "disabled", URI: srv.URL, Enabled: false},
	}

	n.Notify(context.Background(), sinks, testEvent())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 1)

	var got model.BookingEvent
	require.NoError(t, json.Unmarshal(bodies[0], &got))
	assert.Equal(t, "booking.approved", got.Type)
	assert.Equal(t, "01J0000000000000000000TEST", got.Reference)
}

func TestNotifier_AppliesSelector(t *testing.T) {
	var mu sync.Mutex
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		body = b
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(NotifierOptions{Logger: quietLogger()})
	sinks := []model.WebhookSink{
		{ID: "s1", Name: "slim", URI: srv.URL, Enabled: true, Selector: testutil.StringPtr("{ref: reference, status: status}")},
	}

	n.Notify(context.Background(), sinks, testEvent())

	mu.Lock()
	defer mu.Unlock()
	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "01J0000000000000000000TEST", got["ref"])
	assert.Equal(t, "approved", got["status"])
	assert.NotContains(t, got, "bed_id")
}

func TestNotifier_FailedSinkDoesNotBlockOthers(t *testing.T) {
	var mu sync.Mutex
	delivered := 0
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		delivered++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	n := NewNotifier(NotifierOptions{Logger: quietLogger()})
	sinks := []model.WebhookSink{
		{ID: "s1", Name: "failing", URI: failing.URL, Enabled: true},
		{ID: "s2", Name: "ok", URI: ok.URL, Enabled: true},
	}

	n.Notify(context.Background(), sinks, testEvent())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, delivered)
}

func TestLibEvaluator_Validate(t *testing.T) {
	ev := LibEvaluator{}
	assert.NoError(t, ev.Validate(""))
	assert.NoError(t, ev.Validate("  "))
	assert.NoError(t, ev.Validate("reference"))
	assert.Error(t, ev.Validate("[invalid"))
}
