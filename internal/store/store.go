// Package store holds the single source of truth for the currently open
// thread: its post collection, vote collection, and the derived author
// directory. The other components mutate it optimistically and reconcile
// against persistence; the projection package derives everything shown to
// the user from it.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/threadview-dev/threadview/internal/domain"
	internal_errors "github.com/threadview-dev/threadview/internal/errors"
	"github.com/threadview-dev/threadview/internal/logger"
	"github.com/threadview-dev/threadview/internal/persistence"
)

// PlaceholderName labels authors whose profile could not be resolved.
const PlaceholderName = "unknown"

// TreeStore is exclusively owned by the single active thread view. The
// generation counter lets a completion that raced a reload or teardown
// recognize that its target state no longer exists and become a no-op.
type TreeStore struct {
	p *persistence.Persistence

	mu         sync.RWMutex
	generation uint64
	closed     bool
	thread     domain.Thread
	loaded     bool
	posts      []domain.Post
	votes      []domain.Vote
	names      domain.AuthorDirectory
}

func New(p *persistence.Persistence) *TreeStore {
	return &TreeStore{p: p, names: domain.AuthorDirectory{}}
}

// Load fetches the thread, its posts ordered by creation time, the union
// of votes for those posts, and the author directory. The thread itself
// is the only hard dependency: a missing thread returns NotFound and a
// failed thread fetch a LoadError. Every other sub-fetch degrades
// independently; the store keeps whatever loaded and the returned
// LoadError names the first part that failed.
func (s *TreeStore) Load(ctx context.Context, threadId domain.ThreadId) error {
	thread, err := s.p.Threads.FetchOne(ctx, threadId)
	if err != nil {
		if errors.Is(err, internal_errors.NotFound) {
			return internal_errors.NotFound
		}
		return &internal_errors.LoadError{Part: internal_errors.PartThread, Err: err}
	}
	if thread.Deleted {
		// deletion is terminal, the row only lingers for audit
		return internal_errors.NotFound
	}

	posts, votes, names, partErr := s.fetchCollections(ctx, thread)

	s.mu.Lock()
	s.generation++
	s.thread = thread
	s.loaded = true
	s.posts = posts
	s.votes = votes
	s.names = names
	s.mu.Unlock()

	return partErr
}

// Refresh re-fetches posts, votes and author names for the already
// loaded thread. Used after a successful reply submission: the design
// trades a full reload for the guarantee that no derived view observes a
// stale author directory or vote count.
func (s *TreeStore) Refresh(ctx context.Context) error {
	s.mu.RLock()
	if !s.loaded || s.closed {
		s.mu.RUnlock()
		return internal_errors.NotFound
	}
	thread := s.thread
	s.mu.RUnlock()

	posts, votes, names, partErr := s.fetchCollections(ctx, thread)
	if partErr != nil {
		// keep the current view rather than replacing it with holes
		return partErr
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return internal_errors.NotFound
	}
	s.generation++
	s.posts = posts
	s.votes = votes
	s.names = names
	s.mu.Unlock()
	return nil
}

func (s *TreeStore) fetchCollections(ctx context.Context, thread domain.Thread) ([]domain.Post, []domain.Vote, domain.AuthorDirectory, error) {
	var partErr error

	posts, err := s.p.Posts.FetchMany(ctx,
		persistence.Filter{"thread_id": thread.Id},
		persistence.Order{Field: "created_at"},
	)
	if err != nil {
		logger.Log.Warn("replies failed to load", "thread", thread.Id, "err", err)
		partErr = &internal_errors.LoadError{Part: internal_errors.PartReplies, Err: err}
		posts = nil
	}

	var votes []domain.Vote
	if len(posts) > 0 {
		postIds := make([]int64, len(posts))
		for i, p := range posts {
			postIds[i] = p.Id
		}
		votes, err = s.p.Votes.FetchMany(ctx, persistence.Filter{"post_id": postIds}, persistence.Order{})
		if err != nil {
			logger.Log.Warn("votes failed to load", "thread", thread.Id, "err", err)
			if partErr == nil {
				partErr = &internal_errors.LoadError{Part: internal_errors.PartVotes, Err: err}
			}
			votes = nil
		}
	}

	names, err := s.fetchNames(ctx, thread, posts)
	if err != nil {
		logger.Log.Warn("author names failed to load", "thread", thread.Id, "err", err)
		if partErr == nil {
			partErr = &internal_errors.LoadError{Part: internal_errors.PartAuthors, Err: err}
		}
		names = domain.AuthorDirectory{}
	}

	return posts, votes, names, partErr
}

// fetchNames resolves the distinct set of author ids referenced by the
// thread and its posts to display names.
func (s *TreeStore) fetchNames(ctx context.Context, thread domain.Thread, posts []domain.Post) (domain.AuthorDirectory, error) {
	distinct := map[domain.UserId]bool{thread.Author: true}
	for _, p := range posts {
		distinct[p.Author] = true
	}
	ids := make([]int64, 0, len(distinct))
	for id := range distinct {
		ids = append(ids, id)
	}

	profiles, err := s.p.Profiles.FetchMany(ctx, persistence.Filter{"id": ids}, persistence.Order{})
	if err != nil {
		return nil, err
	}
	names := make(domain.AuthorDirectory, len(profiles))
	for _, p := range profiles {
		names[p.Id] = p.DisplayName
	}
	return names, nil
}

// Close tears the view down. Outstanding persistence completions see a
// closed store and do nothing.
func (s *TreeStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.generation++
	s.mu.Unlock()
}

// Generation identifies the currently loaded view. Completions capture it
// before suspending and pass it back to the guarded mutators.
func (s *TreeStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *TreeStore) Thread() (domain.Thread, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thread, s.loaded && !s.closed
}

func (s *TreeStore) Posts() []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

func (s *TreeStore) Post(id domain.PostId) (domain.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.Id == id {
			return p, true
		}
	}
	return domain.Post{}, false
}

// Votes returns a snapshot of the vote collection. The snapshot doubles
// as the rollback point for optimistic vote mutations.
func (s *TreeStore) Votes() []domain.Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Vote, len(s.votes))
	copy(out, s.votes)
	return out
}

// AppendPost adds a post to the collection, keeping creation order.
func (s *TreeStore) AppendPost(p domain.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.posts = append(s.posts, p)
}

// RemovePost hard-deletes the post from the collection together with any
// votes attached to it.
func (s *TreeStore) RemovePost(id domain.PostId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for i, p := range s.posts {
		if p.Id == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			break
		}
	}
	kept := s.votes[:0]
	for _, v := range s.votes {
		if v.PostId != id {
			kept = append(kept, v)
		}
	}
	s.votes = kept
}

// ReplaceVotes swaps the vote collection wholesale.
func (s *TreeStore) ReplaceVotes(votes []domain.Vote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.votes = votes
}

// ReplaceVotesIfCurrent swaps the vote collection only if the store still
// shows the generation the caller captured before suspending. Returns
// false when the view was reloaded or torn down in the meantime.
func (s *TreeStore) ReplaceVotesIfCurrent(gen uint64, votes []domain.Vote) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.generation != gen {
		return false
	}
	s.votes = votes
	return true
}

// GroupByParent maps each top-level post to the ordered list of its
// direct children. Grandchildren cannot exist (the depth invariant is
// enforced before any mutation), so one level is always enough.
func (s *TreeStore) GroupByParent() map[domain.PostId][]domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grouped := make(map[domain.PostId][]domain.Post)
	for _, p := range s.posts {
		if p.ParentId != nil {
			grouped[*p.ParentId] = append(grouped[*p.ParentId], p)
		}
	}
	return grouped
}

// TopLevel returns the posts with no parent, in creation order.
func (s *TreeStore) TopLevel() []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Post
	for _, p := range s.posts {
		if p.ParentId == nil {
			out = append(out, p)
		}
	}
	return out
}

// DisplayName resolves an author id, falling back to a placeholder when
// the directory is incomplete.
func (s *TreeStore) DisplayName(id domain.UserId) domain.DisplayName {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name, ok := s.names[id]; ok {
		return name
	}
	return PlaceholderName
}

// KnownNames returns the set of display names for mention matching.
func (s *TreeStore) KnownNames() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	known := make(map[string]bool, len(s.names))
	for _, name := range s.names {
		known[name] = true
	}
	return known
}
