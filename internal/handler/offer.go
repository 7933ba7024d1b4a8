package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tobinmarsh/kidwallet/internal/model"
	"github.com/tobinmarsh/kidwallet/internal/store"
	"github.com/tobinmarsh/kidwallet/internal/wallet"
	"golang.org/x/crypto/bcrypt"
)

type OfferHandler struct {
	offers   *store.OfferStore
	rewards  *store.RewardStore
	children *store.ChildStore
	engine   *wallet.Engine
	logger   *slog.Logger
}

func NewOfferHandler(offers *store.OfferStore, rewards *store.RewardStore, children *store.ChildStore, engine *wallet.Engine, logger *slog.Logger) *OfferHandler {
	return &OfferHandler{offers: offers, rewards: rewards, children: children, engine: engine, logger: logger}
}

// Accept records that a child has claimed a reward offer. Accepted offers
// reserve points immediately; the spend happens at redemption.
func (h *OfferHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChildID            string  `json:"child_id"`
		RewardID           *string `json:"reward_id"`
		PointsCost         *int    `json:"points_cost"`
		PointsCostOverride *int    `json:"points_cost_override"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	ident, err := h.engine.ResolveIdentifiers(req.ChildID)
	if err != nil {
		writeWalletError(w, h.logger, err)
		return
	}

	// Capture the catalog cost at accept time so later catalog edits do
	// not move an existing reservation.
	if req.PointsCost == nil && req.PointsCostOverride == nil && req.RewardID != nil {
		reward, err := h.rewards.GetByID(*req.RewardID)
		if err != nil {
			h.logger.Error("get reward", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to accept offer")
			return
		}
		if reward != nil {
			req.PointsCost = &reward.PointCost
		}
	}

	offer, err := h.offers.Create(ident.Canonical, req.RewardID, req.PointsCost, req.PointsCostOverride)
	if err != nil {
		h.logger.Error("create offer", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to accept offer")
		return
	}
	writeJSON(w, http.StatusCreated, offer)
}

func (h *OfferHandler) ListByChild(w http.ResponseWriter, r *http.Request) {
	ident, err := h.engine.ResolveIdentifiers(r.PathValue("id"))
	if err != nil {
		writeWalletError(w, h.logger, err)
		return
	}

	offers, err := h.offers.ListByChild(ident.Canonical)
	if err != nil {
		h.logger.Error("list offers", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list offers")
		return
	}
	if offers == nil {
		offers = []model.RewardOffer{}
	}
	writeJSON(w, http.StatusOK, offers)
}

// Redeem spends the reserved points: a negative ledger entry keyed to the
// offer id (idempotent, so a double-submit cannot charge twice) and a
// status flip releasing the reservation.
func (h *OfferHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	offerID := r.PathValue("id")

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	offer, err := h.offers.GetByID(offerID)
	if err != nil {
		h.logger.Error("get offer", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to redeem offer")
		return
	}
	if offer == nil {
		writeError(w, http.StatusNotFound, "offer not found")
		return
	}
	if offer.Status != model.OfferAccepted {
		writeError(w, http.StatusConflict, "offer is not accepted")
		return
	}

	// Children with a PIN confirm redemptions with it.
	hash, err := h.children.GetPINHash(offer.ChildID)
	if err != nil {
		h.logger.Error("get pin hash", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to redeem offer")
		return
	}
	if hash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)); err != nil {
			writeError(w, http.StatusUnauthorized, "incorrect PIN")
			return
		}
	}

	cost, title, err := h.effectiveCost(offer)
	if err != nil {
		h.logger.Error("resolve offer cost", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to redeem offer")
		return
	}

	if cost > 0 {
		_, err = h.engine.Award(wallet.AwardRequest{
			Child:  offer.ChildID,
			Delta:  -cost,
			Reason: "Reward redemption: " + title,
			Ref:    "redeem:" + offer.ID,
		})
		if err != nil {
			writeWalletError(w, h.logger, err)
			return
		}
	}

	updated, err := h.offers.SetStatus(offer.ID, model.OfferRedeemed)
	if err != nil {
		h.logger.Error("set offer status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to redeem offer")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Cancel releases the reservation without spending.
func (h *OfferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	offer, err := h.offers.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get offer", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to cancel offer")
		return
	}
	if offer == nil {
		writeError(w, http.StatusNotFound, "offer not found")
		return
	}
	if offer.Status != model.OfferAccepted {
		writeError(w, http.StatusConflict, "offer is not accepted")
		return
	}

	updated, err := h.offers.SetStatus(offer.ID, model.OfferCancelled)
	if err != nil {
		h.logger.Error("set offer status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to cancel offer")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *OfferHandler) effectiveCost(offer *model.RewardOffer) (int, string, error) {
	title := "reward"
	if offer.RewardID != nil {
		reward, err := h.rewards.GetByID(*offer.RewardID)
		if err != nil {
			return 0, "", err
		}
		if reward != nil {
			title = reward.Title
			if _, ok := offer.EffectiveCost(); !ok {
				return reward.PointCost, title, nil
			}
		}
	}
	cost, _ := offer.EffectiveCost()
	return cost, title, nil
}
