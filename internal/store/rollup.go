package store

import (
	"database/sql"
	"fmt"

	"github.com/tobinmarsh/kidwallet/internal/model"
)

type RollupStore struct {
	db *sql.DB
}

func NewRollupStore(db *sql.DB) *RollupStore {
	return &RollupStore{db: db}
}

// GetByChildID fetches the precomputed wallet aggregate for a child.
// Returns nil (no error) when the rollup has no row for the id — a new
// child with no history, which callers render as a zero wallet.
func (s *RollupStore) GetByChildID(childID string) (*model.WalletRollup, error) {
	var r model.WalletRollup
	err := s.db.QueryRow(
		`SELECT child_id, lifetime_earned_pts, spent_cashout_pts, reserved_pts,
		        spent_total_pts, available_pts, balance_pts
		 FROM wallet_rollups WHERE child_id = ?`,
		childID,
	).Scan(&r.ChildID, &r.LifetimeEarned, &r.SpentCashout, &r.Reserved,
		&r.SpentTotal, &r.Available, &r.Balance)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get wallet rollup: %w", err)
	}
	return &r, nil
}
