package service

import (
	"context"

	"github.com/threadview-dev/threadview/internal/domain"
	internal_errors "github.com/threadview-dev/threadview/internal/errors"
	"github.com/threadview-dev/threadview/internal/notify"
	"github.com/threadview-dev/threadview/internal/persistence"
)

type SavedService interface {
	Save(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) error
	Unsave(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) error
	IsSaved(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) (bool, error)
}

// Saved manages the existence-only bookmark markers.
type Saved struct {
	saved    persistence.Collection[domain.SavedThread, int64]
	notifier notify.Notifier
}

func NewSaved(saved persistence.Collection[domain.SavedThread, int64], notifier notify.Notifier) *Saved {
	return &Saved{saved: saved, notifier: notifier}
}

func (s *Saved) Save(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) error {
	key := persistence.Filter{"user_id": userId, "thread_id": threadId}
	_, err := s.saved.Upsert(ctx, key, domain.SavedThread{UserId: userId, ThreadId: threadId})
	if err != nil {
		s.notifier.Error("failed to save thread")
		return &internal_errors.MutationError{Op: "save thread", Err: err}
	}
	s.notifier.Success("thread saved")
	return nil
}

func (s *Saved) Unsave(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) error {
	err := s.saved.DeleteWhere(ctx, persistence.Filter{"user_id": userId, "thread_id": threadId})
	if err != nil {
		s.notifier.Error("failed to unsave thread")
		return &internal_errors.MutationError{Op: "unsave thread", Err: err}
	}
	s.notifier.Success("thread removed from saved")
	return nil
}

func (s *Saved) IsSaved(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) (bool, error) {
	recs, err := s.saved.FetchMany(ctx, persistence.Filter{"user_id": userId, "thread_id": threadId}, persistence.Order{})
	if err != nil {
		return false, err
	}
	return len(recs) > 0, nil
}
