package pg

import (
	"database/sql"

	"github.com/threadview-dev/threadview/internal/domain"
	"github.com/threadview-dev/threadview/internal/persistence"
)

// Persistence returns the typed collection bundle backed by this database.
func (s *Storage) Persistence() *persistence.Persistence {
	return &persistence.Persistence{
		Threads:  s.threads(),
		Posts:    s.posts(),
		Votes:    s.votes(),
		Saved:    s.saved(),
		Reports:  s.reports(),
		Profiles: s.profiles(),
	}
}

func (s *Storage) threads() *table[domain.Thread, domain.ThreadId] {
	return &table[domain.Thread, domain.ThreadId]{
		db:   s.db,
		name: "threads",
		cols: []string{"id", "title", "author_id", "category", "created_at", "views", "deleted"},
		scan: func(r rowScanner) (domain.Thread, error) {
			var t domain.Thread
			err := r.Scan(&t.Id, &t.Title, &t.Author, &t.Category, &t.CreatedAt, &t.Views, &t.Deleted)
			return t, err
		},
		insertCols: []string{"title", "author_id", "category"},
		insertVals: func(t domain.Thread) []any {
			return []any{t.Title, t.Author, t.Category}
		},
	}
}

func (s *Storage) posts() *table[domain.Post, domain.PostId] {
	return &table[domain.Post, domain.PostId]{
		db:   s.db,
		name: "posts",
		cols: []string{"id", "thread_id", "author_id", "content", "created_at", "parent_id", "deleted"},
		scan: func(r rowScanner) (domain.Post, error) {
			var p domain.Post
			var parent sql.NullInt64
			err := r.Scan(&p.Id, &p.ThreadId, &p.Author, &p.Content, &p.CreatedAt, &parent, &p.Deleted)
			if parent.Valid {
				p.ParentId = &parent.Int64
			}
			return p, err
		},
		insertCols: []string{"thread_id", "author_id", "content", "parent_id"},
		insertVals: func(p domain.Post) []any {
			var parent any
			if p.ParentId != nil {
				parent = *p.ParentId
			}
			return []any{p.ThreadId, p.Author, p.Content, parent}
		},
	}
}

func (s *Storage) votes() *table[domain.Vote, domain.VoteId] {
	return &table[domain.Vote, domain.VoteId]{
		db:   s.db,
		name: "votes",
		cols: []string{"id", "post_id", "user_id", "is_like"},
		scan: func(r rowScanner) (domain.Vote, error) {
			var v domain.Vote
			err := r.Scan(&v.Id, &v.PostId, &v.UserId, &v.IsLike)
			return v, err
		},
		insertCols: []string{"post_id", "user_id", "is_like"},
		insertVals: func(v domain.Vote) []any {
			return []any{v.PostId, v.UserId, v.IsLike}
		},
		conflict: []string{"post_id", "user_id"},
	}
}

func (s *Storage) saved() *table[domain.SavedThread, int64] {
	return &table[domain.SavedThread, int64]{
		db:   s.db,
		name: "saved_threads",
		cols: []string{"id", "user_id", "thread_id"},
		scan: func(r rowScanner) (domain.SavedThread, error) {
			var m domain.SavedThread
			err := r.Scan(&m.Id, &m.UserId, &m.ThreadId)
			return m, err
		},
		insertCols: []string{"user_id", "thread_id"},
		insertVals: func(m domain.SavedThread) []any {
			return []any{m.UserId, m.ThreadId}
		},
		conflict: []string{"user_id", "thread_id"},
	}
}

func (s *Storage) reports() *table[domain.Report, int64] {
	return &table[domain.Report, int64]{
		db:   s.db,
		name: "reports",
		cols: []string{"id", "post_id", "reporter_id", "reason", "details"},
		scan: func(r rowScanner) (domain.Report, error) {
			var rep domain.Report
			err := r.Scan(&rep.Id, &rep.PostId, &rep.ReporterId, &rep.Reason, &rep.Details)
			return rep, err
		},
		insertCols: []string{"post_id", "reporter_id", "reason", "details"},
		insertVals: func(rep domain.Report) []any {
			return []any{rep.PostId, rep.ReporterId, rep.Reason, rep.Details}
		},
		conflict: []string{"post_id", "reporter_id"},
	}
}

func (s *Storage) profiles() *table[domain.Profile, domain.UserId] {
	return &table[domain.Profile, domain.UserId]{
		db:   s.db,
		name: "profiles",
		cols: []string{"id", "display_name"},
		scan: func(r rowScanner) (domain.Profile, error) {
			var p domain.Profile
			err := r.Scan(&p.Id, &p.DisplayName)
			return p, err
		},
		insertCols: []string{"id", "display_name"},
		insertVals: func(p domain.Profile) []any {
			return []any{p.Id, p.DisplayName}
		},
	}
}
