package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gpjen/bookingroom/internal/domain/model"
	"github.com/gpjen/bookingroom/internal/mocks"
)

func newTestWebhookService(t *testing.T) (*WebhookService, *mocks.MockWebhookSinkRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockWebhookSinkRepository(ctrl)
	svc, err := NewWebhookService(WebhookServiceOptions{Sinks: repo})
	require.NoError(t, err)
	return svc, repo
}

func TestWebhookService_Create_ValidSelector(t *testing.T) {
	svc, repo := newTestWebhookService(t)
	ctx := context.Background()

	selector := "{ref: reference, status: status}"
	req := &model.CreateWebhookSinkRequest{Name: "ops", URI: "https://hooks.example.com/ops", Selector: &selector}
	repo.EXPECT().Create(ctx, req).Return(&model.WebhookSink{ID: "sink-1", Name: "ops", Selector: &selector}, nil)

	sink, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "ops", sink.Name)
}

func TestWebhookService_Create_InvalidSelector(t *testing.T) {
	svc, _ := newTestWebhookService(t)
	ctx := context.Background()

	selector := "{{not valid jmespath"
	_, err := svc.Create(ctx, &model.CreateWebhookSinkRequest{
		Name:     "ops",
		URI:      "https://hooks.example.com/ops",
		Selector: &selector,
	})
	require.ErrorIs(t, err, ErrInvalidSelector)
}

func TestWebhookService_Create_InvalidURI(t *testing.T) {
	svc, _ := newTestWebhookService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &model.CreateWebhookSinkRequest{Name: "ops", URI: "not-a-url"})
	require.Error(t, err)
}

func TestWebhookService_Delete_NotFound(t *testing.T) {
	svc, repo := newTestWebhookService(t)
	ctx := context.Background()

	repo.EXPECT().Delete(ctx, "sink-404").Return(false, nil)

	err := svc.Delete(ctx, "sink-404")
	require.Error(t, err)
}
