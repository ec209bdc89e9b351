package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_errors "github.com/threadview-dev/threadview/internal/errors"
	"github.com/threadview-dev/threadview/internal/persistence"
	"github.com/threadview-dev/threadview/internal/persistence/memory"
)

func TestSaveUnsave(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	notifier := &mockNotifier{}
	svc := NewSaved(mem.Saved, notifier)

	saved, err := svc.IsSaved(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, saved)

	require.NoError(t, svc.Save(ctx, 1, 10))
	saved, err = svc.IsSaved(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, saved)

	// saving twice keeps a single marker
	require.NoError(t, svc.Save(ctx, 1, 10))
	recs, err := mem.Saved.FetchMany(ctx, nil, persistence.Order{})
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	// another user's bookmark is independent
	saved, err = svc.IsSaved(ctx, 2, 10)
	require.NoError(t, err)
	assert.False(t, saved)

	require.NoError(t, svc.Unsave(ctx, 1, 10))
	saved, err = svc.IsSaved(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestSaveFailure(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	notifier := &mockNotifier{}
	svc := NewSaved(mem.Saved, notifier)

	mem.Saved.SetFail("upsert", errors.New("boom"))
	err := svc.Save(ctx, 1, 10)
	assert.True(t, internal_errors.Is[*internal_errors.MutationError](err))
	assert.NotEmpty(t, notifier.errors)
}
