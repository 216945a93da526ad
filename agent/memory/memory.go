// Package memory stores what each agent remembers about a user.
//
// Memories are scoped by domain (the agent that owns them) and user id.
// Two backends exist: SQLite for a single process and PostgreSQL for shared
// deployments. Both order listings newest first.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("memory not found")
	ErrEmptyContent  = errors.New("memory content is empty")
	ErrInvalidOwner  = errors.New("memory domain and user id are required")
	ErrInvalidConfig = errors.New("invalid memory config")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultSQLitePath = "data/spark_agents_memory.db"
	DefaultListLimit  = 20
)

type Memory struct {
	ID        string    `json:"id"`
	Domain    string    `json:"domain"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Topics    []string  `json:"topics,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store interface {
	Add(ctx context.Context, m Memory) (Memory, error)
	// List returns up to limit memories for domain and user, newest first.
	List(ctx context.Context, domain, userID string, limit int) ([]Memory, error)
	Update(ctx context.Context, domain, userID, id, content string, topics []string) (Memory, error)
	Delete(ctx context.Context, domain, userID, id string) error
	Close() error
}

// Config selects the backend. An empty DSN means DefaultSQLitePath for sqlite;
// postgres needs an explicit postgres:// URL.
type Config struct {
	Driver      string `envconfig:"DRIVER" default:"sqlite"`
	DSN         string `envconfig:"DSN"`
	RecallLimit int    `envconfig:"RECALL_LIMIT" split_words:"true" default:"10"`
}

func (c Config) driver() string {
	switch d := strings.ToLower(strings.TrimSpace(c.Driver)); d {
	case "", DriverSQLite:
		return DriverSQLite
	case DriverPostgres, "postgresql", "pg":
		return DriverPostgres
	default:
		return d
	}
}

func (c Config) Validate() error {
	dsn := strings.TrimSpace(c.DSN)
	switch c.driver() {
	case DriverSQLite:
		return nil
	case DriverPostgres:
		if dsn == "" {
			return fmt.Errorf("%w: postgres driver needs MEMORY_DSN", ErrInvalidConfig)
		}
		if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
			return fmt.Errorf("%w: postgres dsn must be a postgres:// url", ErrInvalidConfig)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidConfig, c.Driver)
	}
}

// Open connects the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.driver() == DriverPostgres {
		return NewPostgresStore(ctx, strings.TrimSpace(cfg.DSN))
	}
	path := strings.TrimSpace(cfg.DSN)
	if path == "" {
		path = DefaultSQLitePath
	}
	return NewSQLiteStore(path)
}

// prepare validates m and fills id and timestamps.
func prepare(m Memory, now time.Time) (Memory, error) {
	m.Domain = strings.TrimSpace(m.Domain)
	m.UserID = strings.TrimSpace(m.UserID)
	m.Content = strings.TrimSpace(m.Content)
	if m.Domain == "" || m.UserID == "" {
		return Memory{}, ErrInvalidOwner
	}
	if m.Content == "" {
		return Memory{}, ErrEmptyContent
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Topics = normalizeTopics(m.Topics)
	now = now.UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	return m, nil
}

func checkOwner(domain, userID string) error {
	if strings.TrimSpace(domain) == "" || strings.TrimSpace(userID) == "" {
		return ErrInvalidOwner
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func normalizeTopics(topics []string) []string {
	if len(topics) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.TrimSpace(strings.ReplaceAll(t, ",", " "))
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func joinTopics(topics []string) string {
	return strings.Join(topics, ",")
}

func splitTopics(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return normalizeTopics(strings.Split(raw, ","))
}
