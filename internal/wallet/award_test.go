package wallet

import (
	"errors"
	"testing"
	"time"

	"github.com/tobinmarsh/kidwallet/internal/points"
	"github.com/tobinmarsh/kidwallet/internal/store"
)

func TestAwardIdempotence(t *testing.T) {
	f := newFixture(t)
	c := f.child(t, "Maya")

	req := AwardRequest{
		Child:  c.ID,
		Delta:  15,
		Reason: "Star Catcher level 2",
		Ref:    points.MakeIdemKey("star-catcher", "level-2"),
	}

	first, err := f.engine.Award(req)
	if err != nil {
		t.Fatalf("first award: %v", err)
	}
	if !first.Awarded {
		t.Fatal("first award not applied")
	}

	second, err := f.engine.Award(req)
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if second.Awarded {
		t.Error("duplicate award applied")
	}
	if second.LedgerID != first.LedgerID {
		t.Errorf("duplicate ledger id = %d, want %d", second.LedgerID, first.LedgerID)
	}

	n, err := f.ledgers.CountByIdemKey(c.ID + ":" + req.Ref)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("ledger rows for ref = %d, want 1", n)
	}
}

func TestAwardKeyScopedPerChild(t *testing.T) {
	f := newFixture(t)
	a := f.child(t, "Maya")
	b := f.child(t, "Theo")

	ref := points.MakeDailyIdemKey("quiz game", "round 1", time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC))
	for _, c := range []string{a.ID, b.ID} {
		res, err := f.engine.Award(AwardRequest{Child: c, Delta: 10, Reason: "Quiz Game round", Ref: ref})
		if err != nil {
			t.Fatalf("award for %s: %v", c, err)
		}
		if !res.Awarded {
			t.Errorf("award for %s not applied, same ref is scoped per child", c)
		}
	}
}

func TestAwardAcceptsLegacyIdentifier(t *testing.T) {
	f := newFixture(t)
	c := f.child(t, "Ada")

	res, err := f.engine.Award(AwardRequest{Child: c.LegacyUID, Delta: 5, Reason: "Checklist done", Ref: "chk-1"})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if !res.Awarded {
		t.Fatal("award not applied")
	}

	// The ledger row is attributed to the canonical id.
	n, err := f.ledgers.CountByIdemKey(c.ID + ":chk-1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("rows under canonical-scoped key = %d, want 1", n)
	}
}

func TestAwardWithoutRefHasNoGuarantee(t *testing.T) {
	f := newFixture(t)
	c := f.child(t, "Leo")

	for i := 0; i < 2; i++ {
		res, err := f.engine.Award(AwardRequest{Child: c.ID, Delta: 5, Reason: "spontaneous bonus"})
		if err != nil {
			t.Fatalf("award %d: %v", i, err)
		}
		if !res.Awarded {
			t.Errorf("award %d not applied", i)
		}
	}

	w, err := f.engine.Wallet(c.ID)
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if w.TotalPoints != 10 {
		t.Errorf("earned = %d, want 10 (two unguarded awards)", w.TotalPoints)
	}
}

// unconfirmedLedgers fails the guarded insert but accepts plain inserts,
// like a backend whose award procedure is down while the table is fine.
type unconfirmedLedgers struct {
	*store.LedgerStore
}

func (u unconfirmedLedgers) InsertIdempotent(string, int, string, string) (int64, bool, error) {
	return 0, false, errors.New("award procedure offline")
}

func TestAwardFallsBackWhenUnconfirmed(t *testing.T) {
	f := newFixture(t)
	c := f.child(t, "Iris")

	engine := NewEngine(f.children, unconfirmedLedgers{f.ledgers}, f.offers, f.rewards, f.rollups, f.bus, nil, nil)

	res, err := engine.Award(AwardRequest{Child: c.ID, Delta: 20, Reason: "Target: piano", Ref: "piano-1"})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if !res.Awarded || !res.Fallback {
		t.Errorf("result = %+v, want awarded via fallback", res)
	}

	w, err := f.engine.Wallet(c.ID)
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if w.TotalPoints != 20 {
		t.Errorf("earned = %d, want 20 (fallback row written)", w.TotalPoints)
	}
}

func TestAwardPublishesPointsChanged(t *testing.T) {
	f := newFixture(t)
	c := f.child(t, "Noor")

	ch, cancel := f.bus.Subscribe()
	defer cancel()

	if _, err := f.engine.Award(AwardRequest{Child: c.LegacyUID, Delta: 5, Reason: "Checklist done"}); err != nil {
		t.Fatalf("award: %v", err)
	}

	select {
	case ev := <-ch:
		if ev.ChildID != c.ID {
			t.Errorf("event child = %q, want canonical %q", ev.ChildID, c.ID)
		}
	default:
		t.Fatal("no points-changed event published")
	}
}

func TestAwardRejectsInvalidIdentifier(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Award(AwardRequest{Child: "nope", Delta: 5, Reason: "x"})
	if !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("err = %v, want ErrInvalidIdentifier", err)
	}
}
