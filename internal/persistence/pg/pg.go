package pg

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/threadview-dev/threadview/internal/config"
)

type Storage struct {
	db *sql.DB
}

func New(cfg *config.Config) (*Storage, error) {
	log.Print("Connecting to db")
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	log.Print("Succesfully connected to db")
	return &Storage{db}, nil
}

func Connect(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Public.Pg.Host, cfg.Public.Pg.Port, cfg.Public.Pg.User, cfg.Public.Pg.Password, cfg.Public.Pg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// EnsureSchema creates the discussion tables if they do not exist yet.
// Production deployments run real migrations; this covers dev setups and
// integration tests.
func (s *Storage) EnsureSchema() error {
	_, err := s.db.Exec(`
        CREATE TABLE IF NOT EXISTS profiles (
            id BIGINT PRIMARY KEY,
            display_name TEXT NOT NULL
        );
        CREATE TABLE IF NOT EXISTS threads (
            id BIGSERIAL PRIMARY KEY,
            title TEXT NOT NULL,
            author_id BIGINT NOT NULL,
            category TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            views BIGINT NOT NULL DEFAULT 0,
            deleted BOOLEAN NOT NULL DEFAULT FALSE
        );
        CREATE TABLE IF NOT EXISTS posts (
            id BIGSERIAL PRIMARY KEY,
            thread_id BIGINT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
            author_id BIGINT NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            parent_id BIGINT REFERENCES posts(id) ON DELETE CASCADE,
            deleted BOOLEAN NOT NULL DEFAULT FALSE
        );
        CREATE TABLE IF NOT EXISTS votes (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
            user_id BIGINT NOT NULL,
            is_like BOOLEAN NOT NULL,
            UNIQUE (post_id, user_id)
        );
        CREATE TABLE IF NOT EXISTS saved_threads (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            thread_id BIGINT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
            UNIQUE (user_id, thread_id)
        );
        CREATE TABLE IF NOT EXISTS reports (
            id BIGSERIAL PRIMARY KEY,
            post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
            reporter_id BIGINT NOT NULL,
            reason TEXT NOT NULL,
            details TEXT NOT NULL DEFAULT '',
            UNIQUE (post_id, reporter_id)
        );
    `)
	return err
}
