package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// DefaultSQLitePath is shared with the memory store; sessions live in their own table.
const DefaultSQLitePath = "data/spark_agents_memory.db"

// fixed width so that text comparison orders like time
const sessionTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps team sessions in the sessions table of a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultSQLitePath
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("state: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("state: open database: %w", err)
	}

	for _, p := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("state: pragma %q: %w", p, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id    TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL,
			channel_type  TEXT NOT NULL DEFAULT '',
			active_member TEXT NOT NULL DEFAULT '',
			summary       TEXT NOT NULL DEFAULT '',
			interactions  TEXT NOT NULL DEFAULT '[]',
			updated_at    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("state: migration: %w", err)
	}

	log.Debug().Str("path", path).Msg("sqlite session store ready")
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}

	st := SessionState{SessionID: sessionID}
	var interactions, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, channel_type, active_member, summary, interactions, updated_at
		FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&st.UserID, &st.ChannelType, &st.ActiveMember, &st.Summary, &interactions, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("state: load session: %w", err)
	}

	if err := json.Unmarshal([]byte(interactions), &st.Interactions); err != nil {
		return nil, fmt.Errorf("state: decode interactions: %w", err)
	}
	if st.UpdatedAt, err = time.Parse(sessionTimeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("state: parse updated_at: %w", err)
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session state loaded from store: %w", err)
	}
	return &st, nil
}

func (s *SQLiteStore) Save(ctx context.Context, st *SessionState) error {
	if err := prepareSave(st); err != nil {
		return err
	}

	turns := st.Interactions
	if turns == nil {
		turns = []Interaction{}
	}
	interactions, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("state: encode interactions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, user_id, channel_type, active_member, summary, interactions, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			user_id       = excluded.user_id,
			channel_type  = excluded.channel_type,
			active_member = excluded.active_member,
			summary       = excluded.summary,
			interactions  = excluded.interactions,
			updated_at    = excluded.updated_at`,
		st.SessionID, st.UserID, st.ChannelType, st.ActiveMember, st.Summary,
		string(interactions), st.UpdatedAt.Format(sessionTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("state: save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("state: delete session: %w", err)
	}
	return nil
}

// Prune deletes sessions not updated since before and returns how many were removed.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`,
		before.UTC().Format(sessionTimeLayout))
	if err != nil {
		return 0, fmt.Errorf("state: prune sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
