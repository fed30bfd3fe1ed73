package auction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mintgate/internal/minter/models"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

// PostgresStore persists auction state and escrow balances in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, projectID domain.ProjectID) (*models.AuctionState, error) {
	query := `
		INSERT INTO auction_states (project_id, high_bid, high_bidder, bid_count, settled, winner, clearing_price, token_id, updated_at)
		VALUES ($1, 0, '', 0, FALSE, '', 0, 0, NOW())
		ON CONFLICT (project_id) DO UPDATE SET project_id = EXCLUDED.project_id
		RETURNING project_id, high_bid, high_bidder, bid_count, settled, winner, clearing_price, token_id, updated_at
	`
	return scanState(s.db.QueryRowContext(ctx, query, projectID.String()))
}

func (s *PostgresStore) Get(ctx context.Context, projectID domain.ProjectID) (*models.AuctionState, error) {
	query := `
		SELECT project_id, high_bid, high_bidder, bid_count, settled, winner, clearing_price, token_id, updated_at
		FROM auction_states
		WHERE project_id = $1
	`
	state, err := scanState(s.db.QueryRowContext(ctx, query, projectID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return state, nil
}

func (s *PostgresStore) Update(ctx context.Context, state *models.AuctionState) error {
	query := `
		UPDATE auction_states
		SET high_bid = $2, high_bidder = $3, bid_count = $4, settled = $5, winner = $6, clearing_price = $7, token_id = $8, updated_at = $9
		WHERE project_id = $1
	`
	_, err := s.db.ExecContext(ctx, query,
		state.ProjectID.String(),
		state.HighBid,
		state.HighBidder.String(),
		state.BidCount,
		state.Settled,
		state.Winner.String(),
		state.Clearing,
		uint64(state.TokenID),
		state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update auction state: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddEscrow(ctx context.Context, projectID domain.ProjectID, bidder domain.Address, amount uint64) error {
	query := `
		INSERT INTO auction_escrows (project_id, bidder, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, bidder) DO UPDATE SET amount = auction_escrows.amount + EXCLUDED.amount
	`
	if _, err := s.db.ExecContext(ctx, query, projectID.String(), bidder.String(), amount); err != nil {
		return fmt.Errorf("add escrow: %w", err)
	}
	return nil
}

func (s *PostgresStore) TakeEscrow(ctx context.Context, projectID domain.ProjectID, bidder domain.Address) (uint64, error) {
	query := `
		DELETE FROM auction_escrows
		WHERE project_id = $1 AND bidder = $2
		RETURNING amount
	`
	var amount uint64
	err := s.db.QueryRowContext(ctx, query, projectID.String(), bidder.String()).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("take escrow: %w", err)
	}
	return amount, nil
}

func (s *PostgresStore) ListEscrows(ctx context.Context, projectID domain.ProjectID) (map[domain.Address]uint64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT bidder, amount FROM auction_escrows WHERE project_id = $1 AND amount > 0`,
		projectID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list escrows: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.Address]uint64)
	for rows.Next() {
		var (
			bidder string
			amount uint64
		)
		if err := rows.Scan(&bidder, &amount); err != nil {
			return nil, fmt.Errorf("scan escrow: %w", err)
		}
		out[domain.Address(bidder)] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list escrows: %w", err)
	}
	return out, nil
}

func scanState(row *sql.Row) (*models.AuctionState, error) {
	var (
		st      models.AuctionState
		idStr   string
		bidder  string
		winner  string
		tokenID uint64
	)
	if err := row.Scan(&idStr, &st.HighBid, &bidder, &st.BidCount, &st.Settled, &winner, &st.Clearing, &tokenID, &st.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan auction state: %w", err)
	}
	id, err := domain.ParseProjectID(idStr)
	if err != nil {
		return nil, err
	}
	st.ProjectID = id
	st.HighBidder = domain.Address(bidder)
	st.Winner = domain.Address(winner)
	st.TokenID = domain.TokenID(tokenID)
	return &st, nil
}
