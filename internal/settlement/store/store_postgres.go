package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"mintgate/internal/settlement"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

// PostgresSplitStore persists split configs in PostgreSQL, entries as JSONB.
type PostgresSplitStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresSplitStore {
	return &PostgresSplitStore{db: db}
}

func (s *PostgresSplitStore) Put(ctx context.Context, cfg *settlement.SplitConfig) error {
	entries, err := json.Marshal(cfg.Entries)
	if err != nil {
		return fmt.Errorf("encode split entries: %w", err)
	}
	query := `
		INSERT INTO split_configs (project_id, entries, default_recipient, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id) DO UPDATE SET
			entries = EXCLUDED.entries,
			default_recipient = EXCLUDED.default_recipient,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		cfg.ProjectID.String(), entries, cfg.DefaultRecipient.String(), cfg.UpdatedAt,
	); err != nil {
		return fmt.Errorf("put split config: %w", err)
	}
	return nil
}

func (s *PostgresSplitStore) Get(ctx context.Context, projectID domain.ProjectID) (*settlement.SplitConfig, error) {
	query := `
		SELECT project_id, entries, default_recipient, updated_at
		FROM split_configs
		WHERE project_id = $1
	`
	var (
		cfg       settlement.SplitConfig
		idStr     string
		entries   []byte
		recipient string
	)
	err := s.db.QueryRowContext(ctx, query, projectID.String()).
		Scan(&idStr, &entries, &recipient, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get split config: %w", err)
	}
	id, err := domain.ParseProjectID(idStr)
	if err != nil {
		return nil, err
	}
	cfg.ProjectID = id
	cfg.DefaultRecipient = domain.Address(recipient)
	if err := json.Unmarshal(entries, &cfg.Entries); err != nil {
		return nil, fmt.Errorf("decode split entries: %w", err)
	}
	return &cfg, nil
}
