package memory

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/threadview-dev/threadview/internal/domain"
	"github.com/threadview-dev/threadview/internal/persistence"
)

// Store owns the six in-memory collections. The concrete types are
// exposed so tests can reach the SetFail hooks.
type Store struct {
	Threads  *Collection[domain.Thread, domain.ThreadId]
	Posts    *Collection[domain.Post, domain.PostId]
	Votes    *Collection[domain.Vote, domain.VoteId]
	Saved    *Collection[domain.SavedThread, int64]
	Reports  *Collection[domain.Report, int64]
	Profiles *Collection[domain.Profile, domain.UserId]

	seq atomic.Int64
}

func New() *Store {
	s := &Store{}

	s.Threads = newCollection(
		func(t domain.Thread) domain.ThreadId { return t.Id },
		threadField,
		applyThreadPatch,
		func(t domain.Thread) domain.Thread {
			if t.Id == 0 {
				t.Id = s.nextId()
			}
			return t
		},
	)
	s.Posts = newCollection(
		func(p domain.Post) domain.PostId { return p.Id },
		postField,
		applyPostPatch,
		func(p domain.Post) domain.Post {
			if p.Id == 0 {
				p.Id = s.nextId()
			}
			return p
		},
	)
	s.Votes = newCollection(
		func(v domain.Vote) domain.VoteId { return v.Id },
		voteField,
		applyVotePatch,
		func(v domain.Vote) domain.Vote {
			// server side always assigns its own identity
			v.Id = uuid.NewString()
			return v
		},
	)
	s.Saved = newCollection(
		func(m domain.SavedThread) int64 { return m.Id },
		savedField,
		applySavedPatch,
		func(m domain.SavedThread) domain.SavedThread {
			if m.Id == 0 {
				m.Id = s.nextId()
			}
			return m
		},
	)
	s.Reports = newCollection(
		func(r domain.Report) int64 { return r.Id },
		reportField,
		applyReportPatch,
		func(r domain.Report) domain.Report {
			if r.Id == 0 {
				r.Id = s.nextId()
			}
			return r
		},
	)
	s.Profiles = newCollection(
		func(p domain.Profile) domain.UserId { return p.Id },
		profileField,
		applyProfilePatch,
		func(p domain.Profile) domain.Profile { return p },
	)

	return s
}

// Persistence returns the interface bundle the core consumes.
func (s *Store) Persistence() *persistence.Persistence {
	return &persistence.Persistence{
		Threads:  s.Threads,
		Posts:    s.Posts,
		Votes:    s.Votes,
		Saved:    s.Saved,
		Reports:  s.Reports,
		Profiles: s.Profiles,
	}
}

func (s *Store) nextId() int64 {
	return s.seq.Add(1)
}

func threadField(t domain.Thread, field string) any {
	switch field {
	case "id":
		return t.Id
	case "title":
		return t.Title
	case "author_id":
		return t.Author
	case "category":
		return t.Category
	case "created_at":
		return t.CreatedAt
	case "views":
		return t.Views
	case "deleted":
		return t.Deleted
	}
	return nil
}

func applyThreadPatch(t domain.Thread, patch persistence.Patch) domain.Thread {
	for field, v := range patch {
		switch field {
		case "id":
			t.Id = asInt64(v)
		case "title":
			t.Title = v.(string)
		case "category":
			t.Category = v.(string)
		case "views":
			t.Views = asInt64(v)
		case "deleted":
			t.Deleted = v.(bool)
		}
	}
	return t
}

func postField(p domain.Post, field string) any {
	switch field {
	case "id":
		return p.Id
	case "thread_id":
		return p.ThreadId
	case "author_id":
		return p.Author
	case "content":
		return p.Content
	case "created_at":
		return p.CreatedAt
	case "parent_id":
		return p.ParentId
	case "deleted":
		return p.Deleted
	}
	return nil
}

func applyPostPatch(p domain.Post, patch persistence.Patch) domain.Post {
	for field, v := range patch {
		switch field {
		case "id":
			p.Id = asInt64(v)
		case "content":
			p.Content = v.(string)
		case "deleted":
			p.Deleted = v.(bool)
		}
	}
	return p
}

func voteField(v domain.Vote, field string) any {
	switch field {
	case "id":
		return v.Id
	case "post_id":
		return v.PostId
	case "user_id":
		return v.UserId
	case "is_like":
		return v.IsLike
	}
	return nil
}

func applyVotePatch(v domain.Vote, patch persistence.Patch) domain.Vote {
	for field, val := range patch {
		switch field {
		case "id":
			v.Id = val.(string)
		case "is_like":
			v.IsLike = val.(bool)
		}
	}
	return v
}

func savedField(m domain.SavedThread, field string) any {
	switch field {
	case "id":
		return m.Id
	case "user_id":
		return m.UserId
	case "thread_id":
		return m.ThreadId
	}
	return nil
}

func applySavedPatch(m domain.SavedThread, patch persistence.Patch) domain.SavedThread {
	for field, v := range patch {
		switch field {
		case "id":
			m.Id = asInt64(v)
		}
	}
	return m
}

func reportField(r domain.Report, field string) any {
	switch field {
	case "id":
		return r.Id
	case "post_id":
		return r.PostId
	case "reporter_id":
		return r.ReporterId
	case "reason":
		return r.Reason
	case "details":
		return r.Details
	}
	return nil
}

func applyReportPatch(r domain.Report, patch persistence.Patch) domain.Report {
	for field, v := range patch {
		switch field {
		case "id":
			r.Id = asInt64(v)
		case "reason":
			r.Reason = v.(string)
		case "details":
			r.Details = v.(string)
		}
	}
	return r
}

func profileField(p domain.Profile, field string) any {
	switch field {
	case "id":
		return p.Id
	case "display_name":
		return p.DisplayName
	}
	return nil
}

func applyProfilePatch(p domain.Profile, patch persistence.Patch) domain.Profile {
	for field, v := range patch {
		switch field {
		case "display_name":
			p.DisplayName = v.(string)
		}
	}
	return p
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
