package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// timestamps are fixed width so text ordering matches time ordering
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var openDB = sql.Open

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database file at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("memory: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("memory: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("memory: pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("memory: migration: %w", err)
	}
	log.Debug().Str("path", path).Msg("sqlite memory store ready")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS agent_memories (
			id         TEXT PRIMARY KEY,
			domain     TEXT NOT NULL,
			user_id    TEXT NOT NULL,
			content    TEXT NOT NULL,
			topics     TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_agent_memories_owner
			ON agent_memories(domain, user_id, created_at);
	`)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Add(ctx context.Context, m Memory) (Memory, error) {
	m, err := prepare(m, s.now())
	if err != nil {
		return Memory{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agent_memories (id, domain, user_id, content, topics, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Domain, m.UserID, m.Content, joinTopics(m.Topics),
		m.CreatedAt.Format(sqliteTimeLayout), m.UpdatedAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		return Memory{}, fmt.Errorf("memory: insert: %w", err)
	}
	return m, nil
}

func (s *SQLiteStore) List(ctx context.Context, domain, userID string, limit int) ([]Memory, error) {
	if err := checkOwner(domain, userID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, domain, user_id, content, topics, created_at, updated_at
		 FROM agent_memories
		 WHERE domain = ? AND user_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		strings.TrimSpace(domain), strings.TrimSpace(userID), clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("memory: list: %w", err)
	}
	defer rows.Close()

	var out []Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Update(ctx context.Context, domain, userID, id, content string, topics []string) (Memory, error) {
	if err := checkOwner(domain, userID); err != nil {
		return Memory{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Memory{}, ErrEmptyContent
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE agent_memories
		 SET content = ?, topics = ?, updated_at = ?
		 WHERE id = ? AND domain = ? AND user_id = ?`,
		content, joinTopics(normalizeTopics(topics)), s.now().UTC().Format(sqliteTimeLayout),
		id, strings.TrimSpace(domain), strings.TrimSpace(userID),
	)
	if err != nil {
		return Memory{}, fmt.Errorf("memory: update: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return Memory{}, err
	} else if n == 0 {
		return Memory{}, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, domain, user_id, content, topics, created_at, updated_at
		 FROM agent_memories WHERE id = ?`, id)
	return scanMemory(row)
}

func (s *SQLiteStore) Delete(ctx context.Context, domain, userID, id string) error {
	if err := checkOwner(domain, userID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM agent_memories WHERE id = ? AND domain = ? AND user_id = ?`,
		id, strings.TrimSpace(domain), strings.TrimSpace(userID),
	)
	if err != nil {
		return fmt.Errorf("memory: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(r rowScanner) (Memory, error) {
	var (
		m                Memory
		topics           string
		created, updated string
	)
	if err := r.Scan(&m.ID, &m.Domain, &m.UserID, &m.Content, &topics, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Memory{}, ErrNotFound
		}
		return Memory{}, fmt.Errorf("memory: scan: %w", err)
	}
	m.Topics = splitTopics(topics)

	var err error
	if m.CreatedAt, err = time.Parse(sqliteTimeLayout, created); err != nil {
		return Memory{}, fmt.Errorf("memory: parse created_at: %w", err)
	}
	if m.UpdatedAt, err = time.Parse(sqliteTimeLayout, updated); err != nil {
		return Memory{}, fmt.Errorf("memory: parse updated_at: %w", err)
	}
	return m, nil
}
