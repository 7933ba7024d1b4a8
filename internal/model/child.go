package model

import "time"

type Child struct {
	ID          string    `json:"id"`
	LegacyUID   string    `json:"legacy_uid"`
	FamilyID    string    `json:"family_id"`
	Name        string    `json:"name"`
	Nickname    string    `json:"nickname"`
	Color       string    `json:"color"`
	AvatarEmoji string    `json:"avatar_emoji"`
	HasPIN      bool      `json:"has_pin"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Identity holds both identifier forms for one child. A child created before
// the schema migration is still referenced by its legacy uid in the old
// ledger table, so every ledger query must cover both values.
type Identity struct {
	Canonical string `json:"canonical"`
	Legacy    string `json:"legacy"`
}

// IDs returns the distinct identifier values for ledger queries.
func (i Identity) IDs() []string {
	if i.Legacy == "" || i.Legacy == i.Canonical {
		return []string{i.Canonical}
	}
	return []string{i.Canonical, i.Legacy}
}
