// Package memory implements the long-term fact store: durable, cross-session
// facts keyed by (user, fact key). Writes are idempotent upserts; a repeated
// identical fact never duplicates an entry.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/careerninja/learntube/agent/contract"
)

type PostgresConfig struct {
	DSN          string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout      time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"4"`
}

type factRow struct {
	bun.BaseModel `bun:"table:long_term_facts"`

	UserID    string    `bun:"user_id,pk"`
	FactKey   string    `bun:"fact_key,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// PostgresStore is the durable contract.MemoryStore backed by Postgres.
type PostgresStore struct {
	db      *bun.DB
	timeout time.Duration
}

var _ contractx.MemoryStore = (*PostgresStore)(nil)

func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &PostgresStore{
		db:      bun.NewDB(sqldb, pgdialect.New()),
		timeout: timeout,
	}, nil
}

// EnsureSchema creates the facts table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*factRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: create long_term_facts: %v", contractx.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID, key string) (contractx.Fact, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var row factRow
	err := s.db.NewSelect().
		Model(&row).
		Where("user_id = ?", userID).
		Where("fact_key = ?", key).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return contractx.Fact{}, false, nil
	}
	if err != nil {
		return contractx.Fact{}, false, fmt.Errorf("%w: get fact: %v", contractx.ErrStorageUnavailable, err)
	}
	return toFact(row), true, nil
}

// Put overwrites by (user, key). Concurrent writers for the same key resolve
// last-writer-wins, which is safe because writes are idempotent overwrites.
func (s *PostgresStore) Put(ctx context.Context, userID, key, value string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(key) == "" {
		return fmt.Errorf("user id and fact key are required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row := factRow{
		UserID:    userID,
		FactKey:   key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (user_id, fact_key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: put fact: %v", contractx.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, userID string) ([]contractx.Fact, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []factRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list facts: %v", contractx.ErrStorageUnavailable, err)
	}

	facts := make([]contractx.Fact, 0, len(rows))
	for _, row := range rows {
		facts = append(facts, toFact(row))
	}
	return facts, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func toFact(row factRow) contractx.Fact {
	return contractx.Fact{
		UserID:    row.UserID,
		Key:       row.FactKey,
		Value:     row.Value,
		UpdatedAt: row.UpdatedAt,
	}
}
