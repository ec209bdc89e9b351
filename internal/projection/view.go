package projection

import (
	"github.com/threadview-dev/threadview/internal/domain"
)

// ViewStore is the read surface of the tree store this package projects
// from.
type ViewStore interface {
	Thread() (domain.Thread, bool)
	TopLevel() []domain.Post
	GroupByParent() map[domain.PostId][]domain.Post
	Votes() []domain.Vote
	DisplayName(id domain.UserId) domain.DisplayName
	KnownNames() map[string]bool
}

// PostView is one post ready for rendering.
type PostView struct {
	Post       domain.Post
	AuthorName domain.DisplayName
	HTML       string
	Spans      []Span
	Counts     Counts
	Expanded   bool
	Replies    []PostView
}

// ThreadView is the complete projected thread.
type ThreadView struct {
	Thread     domain.Thread
	AuthorName domain.DisplayName
	Posts      []PostView
}

// Build assembles the render model: top-level posts in the preferred
// order, each with its ordered children, fresh vote tallies, collapse
// flags and mention spans.
func Build(store ViewStore, prefs *Prefs, renderer *Renderer) (ThreadView, bool) {
	thread, ok := store.Thread()
	if !ok {
		return ThreadView{}, false
	}

	counts := CountVotes(store.Votes())
	known := store.KnownNames()
	children := store.GroupByParent()

	top := SortPosts(store.TopLevel(), prefs.SortMode(), counts)
	posts := make([]PostView, 0, len(top))
	for _, p := range top {
		pv := buildPost(store, renderer, p, counts, known)
		pv.Expanded = prefs.Expanded(p.Id)
		// children always stay in creation order
		for _, child := range children[p.Id] {
			pv.Replies = append(pv.Replies, buildPost(store, renderer, child, counts, known))
		}
		posts = append(posts, pv)
	}

	return ThreadView{
		Thread:     thread,
		AuthorName: store.DisplayName(thread.Author),
		Posts:      posts,
	}, true
}

func buildPost(store ViewStore, renderer *Renderer, p domain.Post, counts map[domain.PostId]Counts, known map[string]bool) PostView {
	html, err := renderer.Render(p.Content)
	if err != nil {
		html = ""
	}
	return PostView{
		Post:       p,
		AuthorName: store.DisplayName(p.Author),
		HTML:       html,
		Spans:      MentionSpans(p.Content, known),
		Counts:     counts[p.Id],
	}
}
