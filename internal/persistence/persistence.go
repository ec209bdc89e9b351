// Package persistence defines the generic collaborator the core talks to.
// Every call is asynchronous from the caller's point of view, may fail with
// a transport or validation error, and carries no built-in retry; retry
// policy belongs to the caller.
package persistence

import (
	"context"

	"github.com/threadview-dev/threadview/internal/domain"
)

// Filter is a conjunction of field = value conditions. Field names are
// the wire/column names (json tags of the domain structs). A []int64
// value means "field is any of these", used to pull the vote union for
// a whole post set in one call.
type Filter map[string]any

// Patch is a partial update keyed by wire/column name.
type Patch map[string]any

type Order struct {
	Field string
	Desc  bool
}

// Collection is one entity table. Implementations: memory (tests, dev),
// rest (hosted table API), pg (direct postgres).
type Collection[T any, ID comparable] interface {
	FetchOne(ctx context.Context, id ID) (T, error)
	FetchMany(ctx context.Context, filter Filter, order Order) ([]T, error)
	Insert(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id ID, patch Patch) (T, error)
	Delete(ctx context.Context, id ID) error
	DeleteWhere(ctx context.Context, filter Filter) error
	// Upsert inserts or replaces the row matching key. Used only for the
	// saved-thread marker.
	Upsert(ctx context.Context, key Filter, rec T) (T, error)
}

// Persistence bundles the typed collections the discussion core uses.
type Persistence struct {
	Threads  Collection[domain.Thread, domain.ThreadId]
	Posts    Collection[domain.Post, domain.PostId]
	Votes    Collection[domain.Vote, domain.VoteId]
	Saved    Collection[domain.SavedThread, int64]
	Reports  Collection[domain.Report, int64]
	Profiles Collection[domain.Profile, domain.UserId]
}
