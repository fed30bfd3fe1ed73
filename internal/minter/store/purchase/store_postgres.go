package purchase

import (
	"context"
	"database/sql"
	"fmt"

	"mintgate/internal/minter/models"
	"mintgate/pkg/domain"
)

// PostgresStore persists purchase records in PostgreSQL. Insert-only; there
// is deliberately no update or delete path.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, record *models.PurchaseRecord) error {
	query := `
		INSERT INTO purchases (id, project_id, purchaser, price_paid, token_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID.String(),
		record.ProjectID.String(),
		record.Purchaser.String(),
		record.PricePaid,
		uint64(record.TokenID),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append purchase: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByProject(ctx context.Context, projectID domain.ProjectID) ([]*models.PurchaseRecord, error) {
	query := `
		SELECT id, project_id, purchaser, price_paid, token_id, created_at
		FROM purchases
		WHERE project_id = $1
		ORDER BY token_id
	`
	rows, err := s.db.QueryContext(ctx, query, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []*models.PurchaseRecord
	for rows.Next() {
		record, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return out, nil
}

func scanPurchase(rows *sql.Rows) (*models.PurchaseRecord, error) {
	var (
		r         models.PurchaseRecord
		idStr     string
		projStr   string
		purchaser string
		tokenID   uint64
	)
	if err := rows.Scan(&idStr, &projStr, &purchaser, &r.PricePaid, &tokenID, &r.CreatedAt); err != nil {
		return nil, err
	}
	if err := r.ID.UnmarshalText([]byte(idStr)); err != nil {
		return nil, err
	}
	projectID, err := domain.ParseProjectID(projStr)
	if err != nil {
		return nil, err
	}
	r.ProjectID = projectID
	r.Purchaser = domain.Address(purchaser)
	r.TokenID = domain.TokenID(tokenID)
	return &r, nil
}
