// Package wallet implements point reconciliation for children: identifier
// resolution across the schema migration boundary, wallet computation with
// an authoritative rollup path and a raw-ledger fallback, reserved-points
// math over accepted reward offers, earnings breakdowns, and the idempotent
// award write path.
package wallet

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tobinmarsh/kidwallet/internal/events"
	"github.com/tobinmarsh/kidwallet/internal/metrics"
	"github.com/tobinmarsh/kidwallet/internal/model"
	"github.com/tobinmarsh/kidwallet/internal/points"
)

// ChildResolver maps either identifier form of a child to the full pair.
type ChildResolver interface {
	ResolveIdentity(id string) (*model.Identity, error)
}

// LedgerSource reads and appends ledger entries.
type LedgerSource interface {
	ListByChildRefs(refs []string) ([]model.LedgerEntry, error)
	InsertIdempotent(childID string, delta int, reason, idemKey string) (ledgerID int64, awarded bool, err error)
	Insert(childID string, delta int, reason string) (int64, error)
}

// OfferSource lists the offers that hold point reservations.
type OfferSource interface {
	ListAcceptedByChildRefs(refs []string) ([]model.RewardOffer, error)
}

// Catalog batch-resolves reward costs for offers that carry none.
type Catalog interface {
	GetCostsByIDs(ids []string) (map[string]int, error)
}

// RollupSource serves the precomputed wallet aggregate.
type RollupSource interface {
	GetByChildID(childID string) (*model.WalletRollup, error)
}

// Engine is the wallet reconciliation engine. All methods are read-only
// except Award. Concurrent calls are safe: reads have no side effects and
// the idempotency key is the only guard against duplicate writes.
type Engine struct {
	children ChildResolver
	ledgers  LedgerSource
	offers   OfferSource
	catalog  Catalog
	rollups  RollupSource
	bus      *events.Bus
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewEngine(children ChildResolver, ledgers LedgerSource, offers OfferSource, catalog Catalog, rollups RollupSource, bus *events.Bus, met *metrics.Metrics, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		children: children,
		ledgers:  ledgers,
		offers:   offers,
		catalog:  catalog,
		rollups:  rollups,
		bus:      bus,
		metrics:  met,
		logger:   logger,
	}
}

// validateIdentifier rejects anything that is not a well-formed RFC 4122
// UUID (version 1-5) before any datastore access happens.
func validateIdentifier(id string) error {
	u, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	if v := u.Version(); u.Variant() != uuid.RFC4122 || v < 1 || v > 5 {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return nil
}

// ResolveIdentifiers returns both identifier forms for a child given either
// one. An unknown (but well-formed) id resolves to itself in both forms, so
// a not-yet-materialized child still renders a zero state instead of failing.
func (e *Engine) ResolveIdentifiers(id string) (model.Identity, error) {
	if err := validateIdentifier(id); err != nil {
		return model.Identity{}, err
	}

	ident, err := e.children.ResolveIdentity(id)
	if err != nil {
		return model.Identity{}, fmt.Errorf("resolve identifiers: %w", err)
	}
	if ident == nil {
		return model.Identity{Canonical: id, Legacy: id}, nil
	}
	return *ident, nil
}

// Wallet computes the canonical point wallet for a child. The rollup is
// authoritative; raw ledger aggregation is attempted only when the rollup
// query itself fails. Both paths produce the same figures for the same
// underlying rows.
func (e *Engine) Wallet(id string) (model.ChildWallet, error) {
	if err := validateIdentifier(id); err != nil {
		return model.ChildWallet{}, err
	}

	return e.runStrategies(id, []walletStrategy{
		{name: "rollup", run: func() (model.ChildWallet, error) { return e.walletFromRollup(id) }},
		{name: "ledger_fallback", run: func() (model.ChildWallet, error) { return e.walletFromLedger(id) }},
	})
}

func (e *Engine) walletFromRollup(id string) (model.ChildWallet, error) {
	// The rollup is keyed by canonical id; map a legacy uid over first.
	canonical := id
	if ident, err := e.children.ResolveIdentity(id); err != nil {
		return model.ChildWallet{}, fmt.Errorf("resolve for rollup: %w", err)
	} else if ident != nil {
		canonical = ident.Canonical
	}

	rollup, err := e.rollups.GetByChildID(canonical)
	if err != nil {
		return model.ChildWallet{}, err
	}
	if rollup == nil {
		// Queryable but no row: a new child, not an error.
		return model.ChildWallet{ChildID: canonical}, nil
	}

	return model.ChildWallet{
		ChildID:         canonical,
		TotalPoints:     rollup.LifetimeEarned,
		ReservedPoints:  rollup.Reserved,
		AvailablePoints: rollup.Available,
		SpentPoints:     rollup.SpentTotal,
		BalancePoints:   rollup.Balance,
	}, nil
}

func (e *Engine) walletFromLedger(id string) (model.ChildWallet, error) {
	ident, err := e.resolveSoft(id)
	if err != nil {
		return model.ChildWallet{}, err
	}

	entries, err := e.ledgers.ListByChildRefs(ident.IDs())
	if err != nil {
		return model.ChildWallet{}, fmt.Errorf("list ledger entries: %w", err)
	}

	var net, earned int
	for _, entry := range entries {
		net += entry.Delta
		if entry.Delta > 0 {
			earned += entry.Delta
		}
	}

	reserved, err := e.reservedForRefs(ident.IDs())
	if err != nil {
		return model.ChildWallet{}, fmt.Errorf("reserved points: %w", err)
	}

	available := max(0, net-reserved)
	spent := max(0, earned-available-reserved)

	return model.ChildWallet{
		ChildID:         ident.Canonical,
		TotalPoints:     earned,
		ReservedPoints:  reserved,
		AvailablePoints: available,
		SpentPoints:     spent,
		BalancePoints:   available + reserved,
	}, nil
}

// ReservedPoints sums the effective cost of every accepted offer for the
// child: cost override first, then the cost captured at accept time, then a
// batched catalog lookup, then zero.
func (e *Engine) ReservedPoints(id string) (int, error) {
	if err := validateIdentifier(id); err != nil {
		return 0, err
	}

	ident, err := e.resolveSoft(id)
	if err != nil {
		return 0, err
	}
	return e.reservedForRefs(ident.IDs())
}

func (e *Engine) reservedForRefs(refs []string) (int, error) {
	offers, err := e.offers.ListAcceptedByChildRefs(refs)
	if err != nil {
		return 0, fmt.Errorf("list accepted offers: %w", err)
	}

	total := 0
	var missing []string
	seen := make(map[string]bool)
	for _, o := range offers {
		if cost, ok := o.EffectiveCost(); ok {
			total += cost
			continue
		}
		if o.RewardID != nil && !seen[*o.RewardID] {
			seen[*o.RewardID] = true
			missing = append(missing, *o.RewardID)
		}
		// No reward reference at all: contributes zero.
	}

	if len(missing) == 0 {
		return total, nil
	}

	// One query for all unresolved costs, never one per offer.
	costs, err := e.catalog.GetCostsByIDs(missing)
	if err != nil {
		return 0, fmt.Errorf("catalog lookup: %w", err)
	}
	for _, o := range offers {
		if _, ok := o.EffectiveCost(); ok {
			continue
		}
		if o.RewardID != nil {
			total += costs[*o.RewardID] // unresolved refs stay zero
		}
	}
	return total, nil
}

// EarningsBreakdown partitions the child's positive ledger entries by the
// activity that earned them. Debug entries are excluded from the breakdown
// entirely but still count in the raw wallet aggregates; that asymmetry is
// long-standing behavior that downstream reports depend on.
func (e *Engine) EarningsBreakdown(id string) (model.Breakdown, error) {
	if err := validateIdentifier(id); err != nil {
		return model.Breakdown{}, err
	}

	ident, err := e.resolveSoft(id)
	if err != nil {
		return model.Breakdown{}, err
	}

	entries, err := e.ledgers.ListByChildRefs(ident.IDs())
	if err != nil {
		return model.Breakdown{}, fmt.Errorf("list ledger entries: %w", err)
	}

	b := model.Breakdown{ChildID: ident.Canonical}
	for _, entry := range entries {
		if entry.Delta <= 0 {
			continue
		}
		category, counted := points.Classify(entry.Reason)
		if !counted {
			continue
		}
		switch category {
		case points.CategoryDaily:
			b.Daily += entry.Delta
		case points.CategoryChecklists:
			b.Checklists += entry.Delta
		case points.CategoryGames:
			b.Games += entry.Delta
		case points.CategoryTargets:
			b.Targets += entry.Delta
		case points.CategoryWishlist:
			b.Wishlist += entry.Delta
		case points.CategoryRewardEncourage:
			b.RewardEncourage += entry.Delta
		case points.CategoryRewardRedemption:
			b.RewardRedemption += entry.Delta
		default:
			b.Other += entry.Delta
		}
	}

	// Total is the sum of the buckets, never recomputed independently.
	b.Total = b.Daily + b.Checklists + b.Games + b.Targets + b.Wishlist +
		b.RewardEncourage + b.RewardRedemption + b.Other

	e.metrics.BreakdownComputed()
	return b, nil
}

// resolveSoft resolves an identity, treating a lookup miss as "the input is
// both forms". Backend errors still propagate.
func (e *Engine) resolveSoft(id string) (model.Identity, error) {
	ident, err := e.children.ResolveIdentity(id)
	if err != nil {
		return model.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}
	if ident == nil {
		return model.Identity{Canonical: id, Legacy: id}, nil
	}
	return *ident, nil
}
