package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadview-dev/threadview/internal/domain"
	"github.com/threadview-dev/threadview/internal/persistence/memory"
)

type markKey struct {
	client int64
	thread int64
}

type mockMarks struct {
	seen    map[markKey]bool
	seenErr error
	markErr error
}

func newMockMarks() *mockMarks {
	return &mockMarks{seen: make(map[markKey]bool)}
}

func (m *mockMarks) Seen(clientId, threadId int64) (bool, error) {
	return m.seen[markKey{clientId, threadId}], m.seenErr
}

func (m *mockMarks) Mark(clientId, threadId int64) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.seen[markKey{clientId, threadId}] = true
	return nil
}

func TestRegisterView(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	thread, err := mem.Threads.Insert(ctx, domain.Thread{Title: "t", Author: 1, CreatedAt: time.Now()})
	require.NoError(t, err)

	marks := newMockMarks()
	svc := NewView(mem.Threads, marks)

	require.NoError(t, svc.RegisterView(ctx, 1, thread.Id))
	got, err := mem.Threads.FetchOne(ctx, thread.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views)

	// the marker makes every later visit by the same client a no-op
	require.NoError(t, svc.RegisterView(ctx, 1, thread.Id))
	require.NoError(t, svc.RegisterView(ctx, 1, thread.Id))
	got, err = mem.Threads.FetchOne(ctx, thread.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views)
}

func TestRegisterViewCountsEachClientOnce(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	thread, err := mem.Threads.Insert(ctx, domain.Thread{Title: "t", Author: 1, CreatedAt: time.Now()})
	require.NoError(t, err)

	marks := newMockMarks()
	svc := NewView(mem.Threads, marks)

	// one client's view never suppresses another client's increment
	require.NoError(t, svc.RegisterView(ctx, 1, thread.Id))
	require.NoError(t, svc.RegisterView(ctx, 2, thread.Id))
	got, err := mem.Threads.FetchOne(ctx, thread.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)

	require.NoError(t, svc.RegisterView(ctx, 1, thread.Id))
	require.NoError(t, svc.RegisterView(ctx, 2, thread.Id))
	got, err = mem.Threads.FetchOne(ctx, thread.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)
}

func TestRegisterViewRetriesAfterFailedIncrement(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	thread, err := mem.Threads.Insert(ctx, domain.Thread{Title: "t", Author: 1, CreatedAt: time.Now()})
	require.NoError(t, err)

	marks := newMockMarks()
	svc := NewView(mem.Threads, marks)

	mem.Threads.SetFail("update", errors.New("boom"))
	require.Error(t, svc.RegisterView(ctx, 1, thread.Id))
	assert.False(t, marks.seen[markKey{1, thread.Id}], "a failed increment must not be marked as seen")

	mem.Threads.SetFail("update", nil)
	require.NoError(t, svc.RegisterView(ctx, 1, thread.Id))
	got, err := mem.Threads.FetchOne(ctx, thread.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views)
	assert.True(t, marks.seen[markKey{1, thread.Id}])
}

func TestRegisterViewSeenFailure(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	thread, err := mem.Threads.Insert(ctx, domain.Thread{Title: "t", Author: 1, CreatedAt: time.Now()})
	require.NoError(t, err)

	marks := newMockMarks()
	marks.seenErr = errors.New("db locked")
	svc := NewView(mem.Threads, marks)

	require.Error(t, svc.RegisterView(ctx, 1, thread.Id))
	got, err := mem.Threads.FetchOne(ctx, thread.Id)
	require.NoError(t, err)
	assert.Zero(t, got.Views, "the counter must not move when the marker store is unreadable")
}
