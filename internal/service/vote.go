package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/threadview-dev/threadview/internal/domain"
	internal_errors "github.com/threadview-dev/threadview/internal/errors"
	"github.com/threadview-dev/threadview/internal/notify"
	"github.com/threadview-dev/threadview/internal/persistence"
)

// VoteStore is the slice of the tree store the reconciliation engine
// needs.
type VoteStore interface {
	Post(id domain.PostId) (domain.Post, bool)
	Votes() []domain.Vote
	ReplaceVotes(votes []domain.Vote)
	ReplaceVotesIfCurrent(gen uint64, votes []domain.Vote) bool
	Generation() uint64
}

type VoteService interface {
	Cast(ctx context.Context, postId domain.PostId, userId domain.UserId, isLike bool) error
}

// Vote applies optimistic like/dislike toggles and reconciles them
// against the persistence response: replace the predicted record with the
// confirmed one on success, restore the pre-optimistic snapshot on
// failure. Never a blind merge.
type Vote struct {
	store    VoteStore
	votes    persistence.Collection[domain.Vote, domain.VoteId]
	notifier notify.Notifier

	mu       sync.Mutex
	inflight map[string]bool
}

func NewVote(store VoteStore, votes persistence.Collection[domain.Vote, domain.VoteId], notifier notify.Notifier) *Vote {
	return &Vote{
		store:    store,
		votes:    votes,
		notifier: notifier,
		inflight: make(map[string]bool),
	}
}

// ErrVoteInFlight rejects a user's second cast on a post while their
// first is still suspended. Votes by other users or on other posts are
// independent and never blocked.
var ErrVoteInFlight = &internal_errors.ValidationError{Message: "vote already in flight"}

func (s *Vote) Cast(ctx context.Context, postId domain.PostId, userId domain.UserId, isLike bool) error {
	if _, ok := s.store.Post(postId); !ok {
		return &internal_errors.ValidationError{Message: "unknown post"}
	}

	// serialized per (post, user) so a like and a dislike by the same
	// user cannot race each other's snapshots
	key := fmt.Sprintf("%d|%d", postId, userId)
	s.mu.Lock()
	if s.inflight[key] {
		s.mu.Unlock()
		return ErrVoteInFlight
	}
	s.inflight[key] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}()

	// snapshot is both the toggle-rule input and the rollback point
	snapshot := s.store.Votes()
	current, hasCurrent := findVote(snapshot, postId, userId)

	optimistic := make([]domain.Vote, 0, len(snapshot)+1)
	var placeholder domain.Vote
	switch {
	case !hasCurrent:
		// absent -> insert
		optimistic = append(optimistic, snapshot...)
		placeholder = domain.Vote{Id: "pending-" + uuid.NewString(), PostId: postId, UserId: userId, IsLike: isLike}
		optimistic = append(optimistic, placeholder)
	case current.IsLike == isLike:
		// same polarity -> withdraw
		for _, v := range snapshot {
			if v.Id != current.Id {
				optimistic = append(optimistic, v)
			}
		}
	default:
		// opposite polarity -> flip
		for _, v := range snapshot {
			if v.Id == current.Id {
				v.IsLike = isLike
			}
			optimistic = append(optimistic, v)
		}
	}

	// local state updates synchronously, before the suspend point
	gen := s.store.Generation()
	s.store.ReplaceVotes(optimistic)

	reconciled, err := s.persist(ctx, optimistic, placeholder, current, hasCurrent, isLike)
	if err != nil {
		s.store.ReplaceVotesIfCurrent(gen, snapshot)
		s.notifier.Error("vote failed, please try again")
		return &internal_errors.MutationError{Op: "vote", Err: err}
	}
	s.store.ReplaceVotesIfCurrent(gen, reconciled)
	return nil
}

// persist issues the insert/update/delete matching the computed
// transition and returns the reconciled collection, with any placeholder
// swapped for the authoritative server record.
func (s *Vote) persist(ctx context.Context, optimistic []domain.Vote, placeholder domain.Vote, current domain.Vote, hasCurrent, isLike bool) ([]domain.Vote, error) {
	switch {
	case !hasCurrent:
		confirmed, err := s.votes.Insert(ctx, domain.Vote{PostId: placeholder.PostId, UserId: placeholder.UserId, IsLike: isLike})
		if err != nil {
			return nil, err
		}
		return replaceVote(optimistic, placeholder.Id, confirmed), nil
	case current.IsLike == isLike:
		if err := s.votes.Delete(ctx, current.Id); err != nil {
			return nil, err
		}
		return optimistic, nil
	default:
		confirmed, err := s.votes.Update(ctx, current.Id, persistence.Patch{"is_like": isLike})
		if err != nil {
			return nil, err
		}
		return replaceVote(optimistic, current.Id, confirmed), nil
	}
}

func findVote(votes []domain.Vote, postId domain.PostId, userId domain.UserId) (domain.Vote, bool) {
	for _, v := range votes {
		if v.PostId == postId && v.UserId == userId {
			return v, true
		}
	}
	return domain.Vote{}, false
}

func replaceVote(votes []domain.Vote, oldId domain.VoteId, confirmed domain.Vote) []domain.Vote {
	out := make([]domain.Vote, len(votes))
	for i, v := range votes {
		if v.Id == oldId {
			out[i] = confirmed
		} else {
			out[i] = v
		}
	}
	return out
}
