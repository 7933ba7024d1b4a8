package model

// ChildWallet is a computed view, never stored. Invariants:
// balance = available + reserved, and spent never goes negative.
type ChildWallet struct {
	ChildID         string `json:"child_id"`
	TotalPoints     int    `json:"total_points"`
	ReservedPoints  int    `json:"reserved_points"`
	AvailablePoints int    `json:"available_points"`
	SpentPoints     int    `json:"spent_points"`
	BalancePoints   int    `json:"balance_points"`
}

// WalletRollup mirrors one row of the wallet_rollups aggregate, the
// authoritative source for wallet figures.
type WalletRollup struct {
	ChildID        string `json:"child_id"`
	LifetimeEarned int    `json:"lifetime_earned_pts"`
	SpentCashout   int    `json:"spent_cashout_pts"`
	Reserved       int    `json:"reserved_pts"`
	SpentTotal     int    `json:"spent_total_pts"`
	Available      int    `json:"available_pts"`
	Balance        int    `json:"balance_pts"`
}

// Breakdown partitions a child's positive ledger entries by the kind of
// activity that earned them. Total is always the sum of the buckets.
type Breakdown struct {
	ChildID          string `json:"child_id"`
	Daily            int    `json:"daily"`
	Checklists       int    `json:"checklists"`
	Games            int    `json:"games"`
	Targets          int    `json:"targets"`
	Wishlist         int    `json:"wishlist"`
	RewardEncourage  int    `json:"reward_encourage"`
	RewardRedemption int    `json:"reward_redemption"`
	Other            int    `json:"other"`
	Total            int    `json:"total"`
}
