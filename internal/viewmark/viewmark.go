// Package viewmark keeps the durable per-client "already viewed" markers
// that gate the thread view counter. It is the only piece of durable
// client-local state in the system.
package viewmark

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db *sqlx.DB
}

func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open view marker db: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS seen_threads (
		client_id INTEGER NOT NULL,
		thread_id INTEGER NOT NULL,
		seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (client_id, thread_id)
	);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create view marker table: %w", err)
	}
	return &Store{db: db}, nil
}

// Seen reports whether this client already counted a view for the thread,
// in this session or any earlier one. Markers are per client: one
// client's view never suppresses another's.
func (s *Store) Seen(clientId, threadId int64) (bool, error) {
	var count int
	if err := s.db.Get(&count, "SELECT COUNT(*) FROM seen_threads WHERE client_id = ? AND thread_id = ?", clientId, threadId); err != nil {
		return false, fmt.Errorf("failed to check view marker: %w", err)
	}
	return count > 0, nil
}

func (s *Store) Mark(clientId, threadId int64) error {
	if _, err := s.db.Exec("INSERT OR IGNORE INTO seen_threads (client_id, thread_id) VALUES (?, ?)", clientId, threadId); err != nil {
		return fmt.Errorf("failed to write view marker: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
