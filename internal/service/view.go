package service

import (
	"context"

	"github.com/threadview-dev/threadview/internal/domain"
	internal_errors "github.com/threadview-dev/threadview/internal/errors"
	"github.com/threadview-dev/threadview/internal/persistence"
)

// ViewMarks is the durable marker store gating the counter, keyed by
// (client, thread).
type ViewMarks interface {
	Seen(clientId, threadId int64) (bool, error)
	Mark(clientId, threadId int64) error
}

type ViewService interface {
	RegisterView(ctx context.Context, clientId domain.UserId, threadId domain.ThreadId) error
}

// View increments a thread's view counter at most once per client. The
// counter is read-increment-write with no server-side idempotency key, so
// two clients racing on the same thread may double-count; the result is a
// possibly over-counted, never under-counted approximation. Anonymous
// clients carry the zero client id.
type View struct {
	threads persistence.Collection[domain.Thread, domain.ThreadId]
	marks   ViewMarks
}

func NewView(threads persistence.Collection[domain.Thread, domain.ThreadId], marks ViewMarks) *View {
	return &View{threads: threads, marks: marks}
}

func (s *View) RegisterView(ctx context.Context, clientId domain.UserId, threadId domain.ThreadId) error {
	seen, err := s.marks.Seen(clientId, threadId)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	thread, err := s.threads.FetchOne(ctx, threadId)
	if err != nil {
		return err
	}
	if _, err := s.threads.Update(ctx, threadId, persistence.Patch{"views": thread.Views + 1}); err != nil {
		return &internal_errors.MutationError{Op: "view count", Err: err}
	}

	// marked only after the increment landed, so a failed attempt can be
	// retried on the next visit
	return s.marks.Mark(clientId, threadId)
}
