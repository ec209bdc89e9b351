package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/threadview-dev/threadview/internal/domain"
)

func post(id domain.PostId, createdAt time.Time) domain.Post {
	return domain.Post{Id: id, CreatedAt: createdAt}
}

func TestCountVotes(t *testing.T) {
	votes := []domain.Vote{
		{Id: "a", PostId: 1, UserId: 1, IsLike: true},
		{Id: "b", PostId: 1, UserId: 2, IsLike: true},
		{Id: "c", PostId: 1, UserId: 3, IsLike: false},
		{Id: "d", PostId: 2, UserId: 1, IsLike: false},
	}

	counts := CountVotes(votes)
	assert.Equal(t, Counts{Likes: 2, Dislikes: 1}, counts[1])
	assert.Equal(t, Counts{Likes: 0, Dislikes: 1}, counts[2])
	assert.Zero(t, counts[3], "posts without votes tally to zero")
}

func TestSortPosts(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := []domain.Post{
		post(1, base),
		post(2, base.Add(2*time.Hour)),
		post(3, base.Add(time.Hour)),
	}
	counts := map[domain.PostId]Counts{
		1: {Likes: 1},
		3: {Likes: 5},
	}

	oldest := SortPosts(posts, SortOldest, counts)
	assert.Equal(t, []domain.PostId{1, 3, 2}, ids(oldest))

	newest := SortPosts(posts, SortNewest, counts)
	assert.Equal(t, []domain.PostId{2, 3, 1}, ids(newest))

	liked := SortPosts(posts, SortMostLiked, counts)
	assert.Equal(t, []domain.PostId{3, 1, 2}, ids(liked))

	// the input slice is never reordered
	assert.Equal(t, []domain.PostId{1, 2, 3}, ids(posts))
}

func TestSortPostsStable(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := []domain.Post{post(10, at), post(20, at), post(30, at)}

	// equal keys keep insertion order in every mode
	for _, mode := range []SortMode{SortOldest, SortNewest, SortMostLiked} {
		got := SortPosts(posts, mode, nil)
		assert.Equal(t, []domain.PostId{10, 20, 30}, ids(got), string(mode))
	}
}

func ids(posts []domain.Post) []domain.PostId {
	out := make([]domain.PostId, len(posts))
	for i, p := range posts {
		out[i] = p.Id
	}
	return out
}

func TestPrefsDefaultCollapsed(t *testing.T) {
	p := NewPrefs()
	assert.False(t, p.Expanded(1))

	p.Expand(1)
	assert.True(t, p.Expanded(1))
	assert.False(t, p.Expanded(2), "expanding one post leaves the rest collapsed")

	p.Toggle(1)
	assert.False(t, p.Expanded(1))
	p.Toggle(2)
	assert.True(t, p.Expanded(2))
}

func TestClientPrefsAreIsolated(t *testing.T) {
	c := NewClientPrefs()

	c.For(1).SetSortMode(SortNewest)
	assert.Equal(t, SortNewest, c.For(1).SortMode())
	assert.Equal(t, SortOldest, c.For(2).SortMode(), "one client's sort mode must not leak into another's")

	c.Expand(1, 10)
	assert.True(t, c.For(1).Expanded(10))
	assert.False(t, c.For(2).Expanded(10))

	c.For(2).Toggle(10)
	assert.True(t, c.For(2).Expanded(10))
	c.For(2).Toggle(10)
	assert.False(t, c.For(2).Expanded(10))
	assert.True(t, c.For(1).Expanded(10), "toggling as one client leaves the other untouched")

	assert.Same(t, c.For(1), c.For(1), "repeat lookups return the same Prefs")
}

func TestRenderer(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name    string
		in      string
		want    string
		exclude string
	}{
		{"emphasis", "some *emphasis* here", "<em>emphasis</em>", ""},
		{"code span", "inline `code` here", "<code>code</code>", ""},
		{"fenced block", "```\nx := 1\n```", "<pre>", ""},
		{"strikethrough", "~~gone~~", "<del>gone</del>", ""},
		{"heading stays literal", "# not a heading", "# not a heading", "<h1>"},
		{"script stripped", "<script>alert(1)</script>hi", "hi", "<script>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Render(tc.in)
			assert.NoError(t, err)
			assert.Contains(t, got, tc.want)
			if tc.exclude != "" {
				assert.NotContains(t, got, tc.exclude)
			}
		})
	}
}
