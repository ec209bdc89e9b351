package service

import (
	"context"

	"github.com/threadview-dev/threadview/internal/domain"
	internal_errors "github.com/threadview-dev/threadview/internal/errors"
	"github.com/threadview-dev/threadview/internal/notify"
	"github.com/threadview-dev/threadview/internal/persistence"
)

// ThreadStore is the slice of the tree store the thread service needs.
type ThreadStore interface {
	Thread() (domain.Thread, bool)
	Post(id domain.PostId) (domain.Post, bool)
	RemovePost(id domain.PostId)
	Close()
}

type ThreadService interface {
	UpdateThread(ctx context.Context, actor domain.UserId, title domain.ThreadTitle, category domain.Category) error
	DeleteThread(ctx context.Context, actor domain.UserId) error
	DeletePost(ctx context.Context, actor domain.UserId, postId domain.PostId) error
}

// Thread owns the author-only mutations on the open thread and its
// posts.
type Thread struct {
	store    ThreadStore
	threads  persistence.Collection[domain.Thread, domain.ThreadId]
	posts    persistence.Collection[domain.Post, domain.PostId]
	notifier notify.Notifier
}

func NewThreadService(store ThreadStore, threads persistence.Collection[domain.Thread, domain.ThreadId], posts persistence.Collection[domain.Post, domain.PostId], notifier notify.Notifier) *Thread {
	return &Thread{store: store, threads: threads, posts: posts, notifier: notifier}
}

func (s *Thread) UpdateThread(ctx context.Context, actor domain.UserId, title domain.ThreadTitle, category domain.Category) error {
	thread, ok := s.store.Thread()
	if !ok {
		return internal_errors.NotFound
	}
	if thread.Author != actor {
		return &internal_errors.ErrorWithStatusCode{Message: "only the author can edit a thread", StatusCode: 403}
	}
	if title == "" {
		return &internal_errors.ValidationError{Message: "title is empty"}
	}

	patch := persistence.Patch{"title": title, "category": category}
	if _, err := s.threads.Update(ctx, thread.Id, patch); err != nil {
		s.notifier.Error("failed to update thread")
		return &internal_errors.MutationError{Op: "update thread", Err: err}
	}
	return nil
}

// DeleteThread removes the thread. Deletion is terminal: the store is
// closed so no further mutation against this view is valid.
func (s *Thread) DeleteThread(ctx context.Context, actor domain.UserId) error {
	thread, ok := s.store.Thread()
	if !ok {
		return internal_errors.NotFound
	}
	if thread.Author != actor {
		return &internal_errors.ErrorWithStatusCode{Message: "only the author can delete a thread", StatusCode: 403}
	}

	if err := s.threads.Delete(ctx, thread.Id); err != nil {
		s.notifier.Error("failed to delete thread")
		return &internal_errors.MutationError{Op: "delete thread", Err: err}
	}
	s.store.Close()
	s.notifier.Success("thread deleted")
	return nil
}

// DeletePost hard-deletes a post: the row disappears from persistence
// and from the in-memory collection, it is not merely flagged.
func (s *Thread) DeletePost(ctx context.Context, actor domain.UserId, postId domain.PostId) error {
	post, ok := s.store.Post(postId)
	if !ok {
		return internal_errors.NotFound
	}
	if post.Author != actor {
		return &internal_errors.ErrorWithStatusCode{Message: "only the author can delete a post", StatusCode: 403}
	}

	if err := s.posts.Delete(ctx, postId); err != nil {
		s.notifier.Error("failed to delete post")
		return &internal_errors.MutationError{Op: "delete post", Err: err}
	}
	s.store.RemovePost(postId)
	return nil
}
