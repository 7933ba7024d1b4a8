package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tobinmarsh/kidwallet/internal/model"
	"github.com/tobinmarsh/kidwallet/internal/store"
	"github.com/tobinmarsh/kidwallet/internal/wallet"
)

type WalletHandler struct {
	engine   *wallet.Engine
	children *store.ChildStore
	logger   *slog.Logger
}

func NewWalletHandler(engine *wallet.Engine, children *store.ChildStore, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{engine: engine, children: children, logger: logger}
}

// writeWalletError maps engine errors onto HTTP statuses. A genuine backend
// failure must render as an error state, never as a zero wallet.
func writeWalletError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, wallet.ErrInvalidIdentifier):
		writeError(w, http.StatusBadRequest, "invalid child identifier")
	case errors.Is(err, wallet.ErrWalletUnavailable):
		logger.Error("wallet unavailable", "error", err)
		writeError(w, http.StatusBadGateway, "couldn't load wallet")
	default:
		logger.Error("wallet request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	billfold, err := h.engine.Wallet(r.PathValue("id"))
	if err != nil {
		writeWalletError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, billfold)
}

func (h *WalletHandler) GetReserved(w http.ResponseWriter, r *http.Request) {
	reserved, err := h.engine.ReservedPoints(r.PathValue("id"))
	if err != nil {
		writeWalletError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"reserved_points": reserved})
}

func (h *WalletHandler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.engine.EarningsBreakdown(r.PathValue("id"))
	if err != nil {
		writeWalletError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

// FamilyWallets returns a wallet per child of a family in one response.
func (h *WalletHandler) FamilyWallets(w http.ResponseWriter, r *http.Request) {
	children, err := h.children.ListByFamily(r.PathValue("family_id"))
	if err != nil {
		h.logger.Error("list family children", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list children")
		return
	}

	type entry struct {
		Child  model.Child       `json:"child"`
		Wallet model.ChildWallet `json:"wallet"`
	}
	wallets := make([]entry, 0, len(children))
	for _, c := range children {
		cw, err := h.engine.Wallet(c.ID)
		if err != nil {
			writeWalletError(w, h.logger, err)
			return
		}
		wallets = append(wallets, entry{Child: c, Wallet: cw})
	}
	writeJSON(w, http.StatusOK, wallets)
}
