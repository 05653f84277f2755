package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpjen/bookingroom/internal/domain/model"
	"github.com/gpjen/bookingroom/internal/testutil"
)

func TestWebhookSinkRepo_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := NewWebhookSinkRepo(db)
	ctx := context.Background()

	selector := "{ref: reference, status: status}"
	sink, err := repo.Create(ctx, &model.CreateWebhookSinkRequest{
		Name:     "ops-channel",
		URI:      "https://hooks.example.com/ops",
		Selector: &selector,
	})
	require.NoError(t, err)
	assert.True(t, sink.Enabled)
	require.NotNil(t, sink.Selector)
	assert.Equal(t, selector, *sink.Selector)

	_, err = repo.Create(ctx, &model.CreateWebhookSinkRequest{Name: "ops-channel", URI: "https://hooks.example.com/dup"})
	assert.ErrorIs(t, err, ErrWebhookSinkNameExists)

	got, err := repo.GetByID(ctx, sink.ID)
	require.NoError(t, err)
	assert.Equal(t, sink.Name, got.Name)

	disabled, err := repo.SetEnabled(ctx, sink.ID, false)
	require.NoError(t, err)
	assert.False(t, disabled.Enabled)

	enabled, err := repo.ListEnabled(ctx)
	require.NoError(t, err)
	assert.Empty(t, enabled)

	_, err = repo.SetEnabled(ctx, sink.ID, true)
	require.NoError(t, err)
	enabled, err = repo.ListEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, sink.ID, enabled[0].ID)

	ok, err := repo.Delete(ctx, sink.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.GetByID(ctx, sink.ID)
	assert.ErrorIs(t, err, ErrWebhookSinkNotFound)
}
