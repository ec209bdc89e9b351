package service

import (
	"context"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/threadview-dev/threadview/internal/domain"
	internal_errors "github.com/threadview-dev/threadview/internal/errors"
	"github.com/threadview-dev/threadview/internal/logger"
	"github.com/threadview-dev/threadview/internal/notify"
	"github.com/threadview-dev/threadview/internal/persistence"
)

// ReplyStore is the slice of the tree store the composition controller
// needs.
type ReplyStore interface {
	Thread() (domain.Thread, bool)
	Post(id domain.PostId) (domain.Post, bool)
	Refresh(ctx context.Context) error
}

// FocusSink receives the reveal-then-focus sequence when a reply target
// is set. Reveal is always called before Focus.
type FocusSink interface {
	Reveal(postId domain.PostId)
	Focus()
}

// ReplyPrefs is the expand hook on the view preferences: a freshly
// submitted reply forces its parent's reply list open for the author.
type ReplyPrefs interface {
	Expand(clientId domain.UserId, postId domain.PostId)
}

type ReplyService interface {
	SetReplyTarget(post *domain.Post)
	Target() *domain.Post
	Submit(ctx context.Context, author domain.UserId, text string, parentId *domain.PostId) (domain.Post, error)
}

// Reply manages the pending-reply cursor and the submission lifecycle.
type Reply struct {
	store    ReplyStore
	posts    persistence.Collection[domain.Post, domain.PostId]
	prefs    ReplyPrefs
	notifier notify.Notifier
	focus    FocusSink // optional
	maxLen   int
	policy   *bluemonday.Policy

	mu     sync.Mutex
	target *domain.Post
}

func NewReply(store ReplyStore, posts persistence.Collection[domain.Post, domain.PostId], prefs ReplyPrefs, notifier notify.Notifier, focus FocusSink, maxLen int) *Reply {
	return &Reply{
		store:    store,
		posts:    posts,
		prefs:    prefs,
		notifier: notifier,
		focus:    focus,
		maxLen:   maxLen,
		policy:   bluemonday.StrictPolicy(),
	}
}

// SetReplyTarget moves the cursor. Targeting a post that is itself a
// reply re-parents the cursor to its top-level ancestor so the depth cap
// holds no matter which reply button the surface exposed.
func (s *Reply) SetReplyTarget(post *domain.Post) {
	s.mu.Lock()
	if post == nil {
		s.target = nil
		s.mu.Unlock()
		return
	}
	target := *post
	if target.IsReply() {
		if ancestor, ok := s.store.Post(*target.ParentId); ok {
			target = ancestor
		}
	}
	s.target = &target
	s.mu.Unlock()

	if s.focus != nil {
		// reveal before focus, in this order
		s.focus.Reveal(target.Id)
		s.focus.Focus()
	}
}

func (s *Reply) Target() *domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil {
		return nil
	}
	t := *s.target
	return &t
}

// Submit validates and persists a new post, then re-fetches the full
// post and vote collections. The full refresh is deliberate: a new post
// can change several derived views at once (author directory included),
// and reloading keeps them consistent by construction.
func (s *Reply) Submit(ctx context.Context, author domain.UserId, text string, parentId *domain.PostId) (domain.Post, error) {
	thread, ok := s.store.Thread()
	if !ok {
		return domain.Post{}, internal_errors.NotFound
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return domain.Post{}, &internal_errors.ValidationError{Message: "reply text is empty"}
	}
	if s.maxLen > 0 && len(trimmed) > s.maxLen {
		return domain.Post{}, &internal_errors.ValidationError{Message: "reply text is too long"}
	}
	if parentId != nil {
		parent, ok := s.store.Post(*parentId)
		if !ok {
			return domain.Post{}, &internal_errors.ValidationError{Message: "unknown parent post"}
		}
		if parent.Depth()+1 > domain.MaxReplyDepth {
			return domain.Post{}, &internal_errors.ValidationError{Message: "replies are capped at one level"}
		}
	}

	created, err := s.posts.Insert(ctx, domain.Post{
		ThreadId: thread.Id,
		Author:   author,
		Content:  s.policy.Sanitize(trimmed),
		ParentId: parentId,
	})
	if err != nil {
		s.notifier.Error("failed to post reply")
		return domain.Post{}, &internal_errors.MutationError{Op: "reply", Err: err}
	}

	s.mu.Lock()
	s.target = nil
	s.mu.Unlock()

	if err := s.store.Refresh(ctx); err != nil {
		// the reply is persisted; the view just could not be refreshed
		logger.Log.Warn("post-submit refresh failed", "thread", thread.Id, "err", err)
	}
	if parentId != nil {
		s.prefs.Expand(author, *parentId)
	}
	s.notifier.Success("reply posted")
	return created, nil
}
