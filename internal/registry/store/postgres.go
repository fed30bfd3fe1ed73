package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"mintgate/internal/registry/models"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

// PostgresProjectStore persists projects in PostgreSQL. Pure I/O; the
// Execute callback pattern maps onto SELECT ... FOR UPDATE inside a
// transaction so invocation increments serialize across instances.
type PostgresProjectStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresProjectStore {
	return &PostgresProjectStore{db: db}
}

func (s *PostgresProjectStore) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, name, artist_address, currency, max_invocations, invocations, paused, starting_token_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		project.ID.String(),
		project.Name,
		project.ArtistAddress.String(),
		string(project.Currency),
		project.MaxInvocations,
		project.Invocations,
		project.Paused,
		uint64(project.StartingTokenID),
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (s *PostgresProjectStore) FindByID(ctx context.Context, id domain.ProjectID) (*models.Project, error) {
	query := `
		SELECT id, name, artist_address, currency, max_invocations, invocations, paused, starting_token_id, created_at, updated_at
		FROM projects
		WHERE id = $1
	`
	project, err := scanProject(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return project, nil
}

func (s *PostgresProjectStore) Execute(ctx context.Context, id domain.ProjectID,
	validate func(*models.Project) error,
	mutate func(*models.Project)) (*models.Project, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin project tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		SELECT id, name, artist_address, currency, max_invocations, invocations, paused, starting_token_id, created_at, updated_at
		FROM projects
		WHERE id = $1
		FOR UPDATE
	`
	project, err := scanProject(tx.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock project: %w", err)
	}

	if err := validate(project); err != nil {
		return nil, err
	}
	mutate(project)

	update := `
		UPDATE projects
		SET invocations = $2, paused = $3, updated_at = $4
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update,
		project.ID.String(),
		project.Invocations,
		project.Paused,
		project.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit project tx: %w", err)
	}
	return project, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		p             models.Project
		idStr         string
		artist        string
		currency      string
		startingToken uint64
	)
	if err := row.Scan(&idStr, &p.Name, &artist, &currency, &p.MaxInvocations, &p.Invocations, &p.Paused, &startingToken, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	id, err := domain.ParseProjectID(idStr)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.ArtistAddress = domain.Address(artist)
	p.Currency = domain.Currency(currency)
	p.StartingTokenID = domain.TokenID(startingToken)
	return &p, nil
}
