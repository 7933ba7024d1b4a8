package store

import (
	"testing"

	"github.com/tobinmarsh/kidwallet/internal/model"
)

func TestOfferCreateDefaultsToAccepted(t *testing.T) {
	db := setupTestDB(t)
	cs := NewChildStore(db)
	os := NewOfferStore(db)

	c, err := cs.Create("fam-1", "Maya", "", "#3B82F6", "")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	cost := 40
	offer, err := os.Create(c.ID, nil, &cost, nil)
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}
	if offer.Status != model.OfferAccepted {
		t.Errorf("status = %q, want %q", offer.Status, model.OfferAccepted)
	}
	if offer.PointsCost == nil || *offer.PointsCost != 40 {
		t.Errorf("points_cost = %v, want 40", offer.PointsCost)
	}
	if offer.PointsCostOverride != nil {
		t.Errorf("override = %v, want nil", offer.PointsCostOverride)
	}
}

func TestOfferStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	cs := NewChildStore(db)
	os := NewOfferStore(db)

	c, err := cs.Create("fam-1", "Theo", "", "#3B82F6", "")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	offer, err := os.Create(c.ID, nil, nil, nil)
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}

	accepted, err := os.ListAcceptedByChildRefs([]string{c.ID})
	if err != nil {
		t.Fatalf("list accepted: %v", err)
	}
	if len(accepted) != 1 {
		t.Fatalf("accepted = %d, want 1", len(accepted))
	}

	redeemed, err := os.SetStatus(offer.ID, model.OfferRedeemed)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if redeemed.Status != model.OfferRedeemed {
		t.Errorf("status = %q, want %q", redeemed.Status, model.OfferRedeemed)
	}

	accepted, err = os.ListAcceptedByChildRefs([]string{c.ID})
	if err != nil {
		t.Fatalf("list accepted: %v", err)
	}
	if len(accepted) != 0 {
		t.Errorf("accepted after redeem = %d, want 0", len(accepted))
	}
}

func TestOfferEffectiveCostPrecedence(t *testing.T) {
	cost, override := 50, 40

	o := model.RewardOffer{PointsCost: &cost, PointsCostOverride: &override}
	if got, ok := o.EffectiveCost(); !ok || got != 40 {
		t.Errorf("EffectiveCost = %d,%v, want 40,true", got, ok)
	}

	o = model.RewardOffer{PointsCost: &cost}
	if got, ok := o.EffectiveCost(); !ok || got != 50 {
		t.Errorf("EffectiveCost = %d,%v, want 50,true", got, ok)
	}

	o = model.RewardOffer{}
	if _, ok := o.EffectiveCost(); ok {
		t.Error("EffectiveCost ok for offer with no cost, want catalog signal")
	}
}
