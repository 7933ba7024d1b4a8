package model

import "time"

type Reward struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PointCost   int       `json:"point_cost"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// OfferStatus tracks a reward offer through its lifecycle. Only accepted
// offers reserve points; redeemed and cancelled offers release the hold.
type OfferStatus string

const (
	OfferAccepted  OfferStatus = "accepted"
	OfferRedeemed  OfferStatus = "redeemed"
	OfferCancelled OfferStatus = "cancelled"
)

type RewardOffer struct {
	ID                 string      `json:"id"`
	ChildID            string      `json:"child_id"`
	RewardID           *string     `json:"reward_id"`
	Status             OfferStatus `json:"status"`
	PointsCost         *int        `json:"points_cost"`
	PointsCostOverride *int        `json:"points_cost_override"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// EffectiveCost applies the cost precedence for reservation math:
// override wins, then the cost captured at accept time. Offers carrying
// neither need a catalog lookup, signalled by ok=false.
func (o RewardOffer) EffectiveCost() (cost int, ok bool) {
	if o.PointsCostOverride != nil {
		return *o.PointsCostOverride, true
	}
	if o.PointsCost != nil {
		return *o.PointsCost, true
	}
	return 0, false
}
