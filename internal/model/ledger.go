package model

import "time"

// LedgerSource identifies which table a ledger entry came from.
type LedgerSource string

const (
	SourcePointsLedger      LedgerSource = "points_ledger"
	SourceChildPointsLedger LedgerSource = "child_points_ledger"
)

// LedgerEntry is the single internal shape for a point-affecting event.
// The two ledger tables carry different column names for the same concept
// (delta vs points); the store adapts both into this type so nothing above
// the store layer has to know there are two tables. Entries are append-only:
// corrections are new entries, never edits.
type LedgerEntry struct {
	ID        int64        `json:"id"`
	ChildRef  string       `json:"child_ref"`
	Delta     int          `json:"delta"`
	Reason    string       `json:"reason"`
	Source    LedgerSource `json:"source"`
	CreatedAt time.Time    `json:"created_at"`
}
