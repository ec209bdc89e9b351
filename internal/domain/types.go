package domain

type (
	ThreadId = int64
	PostId   = int64
	UserId   = int64

	// Vote rows are uuid-keyed so optimistic placeholders and
	// server-assigned rows share one keyspace.
	VoteId = string

	ThreadTitle = string
	Category    = string
	PostText    = string
	DisplayName = string
)

// AuthorDirectory maps author ids to display names. Read-only for
// rendering paths; rebuilt wholesale by the tree store.
type AuthorDirectory = map[UserId]DisplayName
