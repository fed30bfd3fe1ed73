package binding

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mintgate/internal/minter/models"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

// PostgresStore persists policy bindings in PostgreSQL. The pricing config
// is stored as a JSONB document; the tagged-union shape round-trips through
// the model's JSON encoding.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, binding *models.PolicyBinding) error {
	cfg, err := json.Marshal(binding.Config)
	if err != nil {
		return fmt.Errorf("encode pricing config: %w", err)
	}
	query := `
		INSERT INTO policy_bindings (project_id, config, sales, bound_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_id) DO UPDATE SET
			config = EXCLUDED.config,
			sales = EXCLUDED.sales,
			bound_at = EXCLUDED.bound_at,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		binding.ProjectID.String(), cfg, binding.Sales, binding.BoundAt, binding.UpdatedAt,
	); err != nil {
		return fmt.Errorf("put binding: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, projectID domain.ProjectID) (*models.PolicyBinding, error) {
	query := `
		SELECT project_id, config, sales, bound_at, updated_at
		FROM policy_bindings
		WHERE project_id = $1
	`
	var (
		b     models.PolicyBinding
		idStr string
		cfg   []byte
	)
	err := s.db.QueryRowContext(ctx, query, projectID.String()).
		Scan(&idStr, &cfg, &b.Sales, &b.BoundAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get binding: %w", err)
	}
	id, err := domain.ParseProjectID(idStr)
	if err != nil {
		return nil, err
	}
	b.ProjectID = id
	if err := json.Unmarshal(cfg, &b.Config); err != nil {
		return nil, fmt.Errorf("decode pricing config: %w", err)
	}
	return &b, nil
}

func (s *PostgresStore) Delete(ctx context.Context, projectID domain.ProjectID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM policy_bindings WHERE project_id = $1`, projectID.String())
	if err != nil {
		return fmt.Errorf("delete binding: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete binding: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) RecordSale(ctx context.Context, projectID domain.ProjectID, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE policy_bindings SET sales = sales + 1, updated_at = $2 WHERE project_id = $1`,
		projectID.String(), now,
	)
	if err != nil {
		return fmt.Errorf("record sale: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record sale: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
