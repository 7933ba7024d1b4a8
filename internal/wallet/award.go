package wallet

import (
	"fmt"

	"github.com/tobinmarsh/kidwallet/internal/events"
)

// AwardRequest describes one point-affecting event. Ref, when present, is a
// caller-supplied reference (see points.MakeIdemKey) that makes the award
// idempotent; without it no idempotency guarantee is requested.
type AwardRequest struct {
	Child  string `json:"child"`
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
	Ref    string `json:"ref"`
}

// AwardResult reports the outcome of an award. Awarded is false only when a
// duplicate idempotency key made the call a no-op; LedgerID then points at
// the original entry. Fallback marks awards that were written without the
// idempotency guard after the guarded path failed.
type AwardResult struct {
	Awarded  bool  `json:"awarded"`
	LedgerID int64 `json:"ledger_id"`
	Fallback bool  `json:"fallback,omitempty"`
}

// Award applies a point delta to the child's ledger, at most once per
// idempotency key. The key is scoped per child as {canonical}:{ref}.
//
// When the guarded insert fails outright, the entry is written as a plain
// ledger row instead. That sacrifices the idempotency guarantee rather than
// silently losing a legitimate award; an accepted risk, logged as a warning
// and flagged in the result, never surfaced to the child as an error.
func (e *Engine) Award(req AwardRequest) (AwardResult, error) {
	if err := validateIdentifier(req.Child); err != nil {
		return AwardResult{}, err
	}

	ident, err := e.resolveSoft(req.Child)
	if err != nil {
		return AwardResult{}, err
	}

	var result AwardResult
	if req.Ref != "" {
		idemKey := ident.Canonical + ":" + req.Ref
		ledgerID, awarded, err := e.ledgers.InsertIdempotent(ident.Canonical, req.Delta, req.Reason, idemKey)
		if err != nil {
			// Could not confirm idempotency. Losing a legitimate award is
			// worse than risking a duplicate, so fall through to a plain
			// insert.
			e.logger.Warn("idempotent award unconfirmed, using plain insert",
				"child_id", ident.Canonical, "ref", req.Ref, "error", err)
			id, insErr := e.ledgers.Insert(ident.Canonical, req.Delta, req.Reason)
			if insErr != nil {
				return AwardResult{}, fmt.Errorf("award fallback insert: %w", insErr)
			}
			result = AwardResult{Awarded: true, LedgerID: id, Fallback: true}
			e.metrics.AwardRecorded("fallback")
		} else if awarded {
			result = AwardResult{Awarded: true, LedgerID: ledgerID}
			e.metrics.AwardRecorded("awarded")
		} else {
			// Duplicate key: the event was already applied. No new row.
			e.metrics.AwardRecorded("duplicate")
			return AwardResult{Awarded: false, LedgerID: ledgerID}, nil
		}
	} else {
		id, err := e.ledgers.Insert(ident.Canonical, req.Delta, req.Reason)
		if err != nil {
			return AwardResult{}, fmt.Errorf("award insert: %w", err)
		}
		result = AwardResult{Awarded: true, LedgerID: id}
		e.metrics.AwardRecorded("awarded")
	}

	// Best-effort refresh hint for open wallet views.
	if e.bus != nil {
		e.bus.Publish(events.PointsChanged{ChildID: ident.Canonical})
	}
	return result, nil
}
