package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tobinmarsh/kidwallet/internal/wallet"
)

type AwardHandler struct {
	engine *wallet.Engine
	logger *slog.Logger
}

func NewAwardHandler(engine *wallet.Engine, logger *slog.Logger) *AwardHandler {
	return &AwardHandler{engine: engine, logger: logger}
}

// Create applies a point award. With a ref the award is idempotent per
// child; without one, every call appends a ledger row.
func (h *AwardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req wallet.AwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	result, err := h.engine.Award(req)
	if err != nil {
		writeWalletError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
