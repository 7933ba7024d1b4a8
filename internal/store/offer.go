package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tobinmarsh/kidwallet/internal/model"
)

type OfferStore struct {
	db *sql.DB
}

func NewOfferStore(db *sql.DB) *OfferStore {
	return &OfferStore{db: db}
}

const offerCols = `id, child_id, reward_id, status, points_cost, points_cost_override, created_at, updated_at`

func scanOffer(scanner interface{ Scan(...any) error }) (*model.RewardOffer, error) {
	var o model.RewardOffer
	var rewardID sql.NullString
	var cost, override sql.NullInt64

	err := scanner.Scan(&o.ID, &o.ChildID, &rewardID, &o.Status, &cost, &override, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if rewardID.Valid {
		o.RewardID = &rewardID.String
	}
	if cost.Valid {
		v := int(cost.Int64)
		o.PointsCost = &v
	}
	if override.Valid {
		v := int(override.Int64)
		o.PointsCostOverride = &v
	}
	return &o, nil
}

// Create records an accepted offer for a child. The reward reference and
// both cost fields are optional; reservation math resolves the effective
// cost with override > direct cost > catalog lookup precedence.
func (s *OfferStore) Create(childID string, rewardID *string, pointsCost, pointsCostOverride *int) (*model.RewardOffer, error) {
	var rID sql.NullString
	if rewardID != nil {
		rID = sql.NullString{String: *rewardID, Valid: true}
	}
	var cost, override sql.NullInt64
	if pointsCost != nil {
		cost = sql.NullInt64{Int64: int64(*pointsCost), Valid: true}
	}
	if pointsCostOverride != nil {
		override = sql.NullInt64{Int64: int64(*pointsCostOverride), Valid: true}
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO reward_offers (id, child_id, reward_id, status, points_cost, points_cost_override)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, childID, rID, model.OfferAccepted, cost, override,
	)
	if err != nil {
		return nil, fmt.Errorf("insert offer: %w", err)
	}
	return s.GetByID(id)
}

func (s *OfferStore) GetByID(id string) (*model.RewardOffer, error) {
	row := s.db.QueryRow(`SELECT `+offerCols+` FROM reward_offers WHERE id = ?`, id)
	o, err := scanOffer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get offer: %w", err)
	}
	return o, nil
}

func (s *OfferStore) ListByChild(childID string) ([]model.RewardOffer, error) {
	rows, err := s.db.Query(
		`SELECT `+offerCols+` FROM reward_offers WHERE child_id = ? ORDER BY created_at DESC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list offers by child: %w", err)
	}
	defer rows.Close()
	return collectOffers(rows)
}

// ListAcceptedByChildRefs returns accepted offers for any of the given child
// identifier values. Only accepted offers hold a reservation.
func (s *OfferStore) ListAcceptedByChildRefs(refs []string) ([]model.RewardOffer, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(refs)+1)
	for _, r := range refs {
		args = append(args, r)
	}
	args = append(args, model.OfferAccepted)

	rows, err := s.db.Query(
		`SELECT `+offerCols+` FROM reward_offers
		 WHERE child_id IN (`+placeholders(len(refs))+`) AND status = ?
		 ORDER BY created_at`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list accepted offers: %w", err)
	}
	defer rows.Close()
	return collectOffers(rows)
}

func collectOffers(rows *sql.Rows) ([]model.RewardOffer, error) {
	var offers []model.RewardOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

// SetStatus transitions an offer. Redeeming or cancelling releases the
// reservation; the caller is responsible for the matching ledger write.
func (s *OfferStore) SetStatus(id string, status model.OfferStatus) (*model.RewardOffer, error) {
	_, err := s.db.Exec(
		`UPDATE reward_offers SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set offer status: %w", err)
	}
	return s.GetByID(id)
}
