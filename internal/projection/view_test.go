package projection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadview-dev/threadview/internal/domain"
	"github.com/threadview-dev/threadview/internal/persistence/memory"
	"github.com/threadview-dev/threadview/internal/store"
)

func TestBuild(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()

	_, err := mem.Profiles.Insert(ctx, domain.Profile{Id: 1, DisplayName: "alice"})
	require.NoError(t, err)
	_, err = mem.Profiles.Insert(ctx, domain.Profile{Id: 2, DisplayName: "bob"})
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	thread, err := mem.Threads.Insert(ctx, domain.Thread{Title: "t", Author: 1, CreatedAt: base})
	require.NoError(t, err)
	a, err := mem.Posts.Insert(ctx, domain.Post{ThreadId: thread.Id, Author: 1, Content: "first *post*", CreatedAt: base})
	require.NoError(t, err)
	b, err := mem.Posts.Insert(ctx, domain.Post{ThreadId: thread.Id, Author: 2, Content: "thanks @alice", CreatedAt: base.Add(time.Minute), ParentId: &a.Id})
	require.NoError(t, err)
	c, err := mem.Posts.Insert(ctx, domain.Post{ThreadId: thread.Id, Author: 1, Content: "second", CreatedAt: base.Add(2 * time.Minute)})
	require.NoError(t, err)

	_, err = mem.Votes.Insert(ctx, domain.Vote{PostId: c.Id, UserId: 2, IsLike: true})
	require.NoError(t, err)
	_, err = mem.Votes.Insert(ctx, domain.Vote{PostId: c.Id, UserId: 9, IsLike: true})
	require.NoError(t, err)
	_, err = mem.Votes.Insert(ctx, domain.Vote{PostId: a.Id, UserId: 2, IsLike: false})
	require.NoError(t, err)

	s := store.New(mem.Persistence())
	require.NoError(t, s.Load(ctx, thread.Id))

	prefs := NewPrefs()
	renderer := NewRenderer()

	view, ok := Build(s, prefs, renderer)
	require.True(t, ok)
	assert.Equal(t, "alice", view.AuthorName)
	require.Len(t, view.Posts, 2)

	// default order is oldest first; replies hang under their parent
	first := view.Posts[0]
	assert.Equal(t, a.Id, first.Post.Id)
	assert.Equal(t, Counts{Dislikes: 1}, first.Counts)
	assert.Contains(t, first.HTML, "<em>post</em>")
	assert.False(t, first.Expanded)
	require.Len(t, first.Replies, 1)
	assert.Equal(t, b.Id, first.Replies[0].Post.Id)
	assert.Equal(t, "bob", first.Replies[0].AuthorName)

	// the reply's mention resolved against the author directory
	spans := first.Replies[0].Spans
	require.Len(t, spans, 2)
	assert.Equal(t, Span{Text: "@alice", Mention: true, Name: "alice"}, spans[1])

	assert.Equal(t, Counts{Likes: 2}, view.Posts[1].Counts)

	// most-liked ordering flips the top level, children stay put
	prefs.SetSortMode(SortMostLiked)
	view, ok = Build(s, prefs, renderer)
	require.True(t, ok)
	assert.Equal(t, c.Id, view.Posts[0].Post.Id)
	assert.Equal(t, a.Id, view.Posts[1].Post.Id)
	require.Len(t, view.Posts[1].Replies, 1)

	// collapse flags come straight from prefs
	prefs.Expand(a.Id)
	view, _ = Build(s, prefs, renderer)
	assert.True(t, view.Posts[1].Expanded)
}

func TestBuildWithoutLoadedThread(t *testing.T) {
	s := store.New(memory.New().Persistence())
	_, ok := Build(s, NewPrefs(), NewRenderer())
	assert.False(t, ok)
}
