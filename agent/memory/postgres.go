package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type memoryModel struct {
	bun.BaseModel `bun:"table:agent_memories,alias:m"`

	ID        string    `bun:"id,pk"`
	Domain    string    `bun:"domain,notnull"`
	UserID    string    `bun:"user_id,notnull"`
	Content   string    `bun:"content,notnull"`
	Topics    string    `bun:"topics,notnull,default:''"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func toModel(m Memory) memoryModel {
	return memoryModel{
		ID:        m.ID,
		Domain:    m.Domain,
		UserID:    m.UserID,
		Content:   m.Content,
		Topics:    joinTopics(m.Topics),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (row memoryModel) memory() Memory {
	return Memory{
		ID:        row.ID,
		Domain:    row.Domain,
		UserID:    row.UserID,
		Content:   row.Content,
		Topics:    splitTopics(row.Topics),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type PostgresStore struct {
	db  *bun.DB
	now func() time.Time
}

// NewPostgresStore connects to dsn and creates the memories table when missing.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("memory: postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("memory: ping postgres: %w", err)
	}

	s := &PostgresStore{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("memory: migration: %w", err)
	}
	log.Debug().Msg("postgres memory store ready")
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*memoryModel)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}
	_, err := s.db.NewCreateIndex().
		Model((*memoryModel)(nil)).
		Index("idx_agent_memories_owner").
		Column("domain", "user_id", "created_at").
		IfNotExists().
		Exec(ctx)
	return err
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Add(ctx context.Context, m Memory) (Memory, error) {
	m, err := prepare(m, s.now())
	if err != nil {
		return Memory{}, err
	}
	row := toModel(m)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return Memory{}, fmt.Errorf("memory: insert: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) List(ctx context.Context, domain, userID string, limit int) ([]Memory, error) {
	if err := checkOwner(domain, userID); err != nil {
		return nil, err
	}
	var rows []memoryModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("domain = ?", strings.TrimSpace(domain)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		OrderExpr("created_at DESC, id DESC").
		Limit(clampLimit(limit)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("memory: list: %w", err)
	}

	out := make([]Memory, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.memory())
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, domain, userID, id, content string, topics []string) (Memory, error) {
	if err := checkOwner(domain, userID); err != nil {
		return Memory{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Memory{}, ErrEmptyContent
	}

	res, err := s.db.NewUpdate().
		Model((*memoryModel)(nil)).
		Set("content = ?", content).
		Set("topics = ?", joinTopics(normalizeTopics(topics))).
		Set("updated_at = ?", s.now().UTC()).
		Where("id = ?", id).
		Where("domain = ?", strings.TrimSpace(domain)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Exec(ctx)
	if err != nil {
		return Memory{}, fmt.Errorf("memory: update: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return Memory{}, err
	} else if n == 0 {
		return Memory{}, ErrNotFound
	}

	var row memoryModel
	if err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Memory{}, ErrNotFound
		}
		return Memory{}, fmt.Errorf("memory: reload: %w", err)
	}
	return row.memory(), nil
}

func (s *PostgresStore) Delete(ctx context.Context, domain, userID, id string) error {
	if err := checkOwner(domain, userID); err != nil {
		return err
	}
	res, err := s.db.NewDelete().
		Model((*memoryModel)(nil)).
		Where("id = ?", id).
		Where("domain = ?", strings.TrimSpace(domain)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Exec(ctx)
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
