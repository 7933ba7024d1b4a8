package store

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/tobinmarsh/kidwallet/internal/database"
	"golang.org/x/crypto/bcrypt"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestChildCreateAndGet(t *testing.T) {
	cs := NewChildStore(setupTestDB(t))

	c, err := cs.Create("fam-1", "Maya", "May", "#FF8800", "🦊")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if c.Name != "Maya" || c.Nickname != "May" || c.FamilyID != "fam-1" {
		t.Errorf("child = %+v", c)
	}
	if _, err := uuid.Parse(c.ID); err != nil {
		t.Errorf("canonical id %q not a uuid: %v", c.ID, err)
	}
	if _, err := uuid.Parse(c.LegacyUID); err != nil {
		t.Errorf("legacy uid %q not a uuid: %v", c.LegacyUID, err)
	}
	if c.ID == c.LegacyUID {
		t.Error("canonical id and legacy uid collide")
	}

	got, err := cs.GetByID(c.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if got == nil || got.ID != c.ID {
		t.Fatalf("get child = %+v", got)
	}
}

func TestChildGetByEitherID(t *testing.T) {
	cs := NewChildStore(setupTestDB(t))

	c, err := cs.Create("fam-1", "Theo", "", "#3B82F6", "")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	for _, id := range []string{c.ID, c.LegacyUID} {
		got, err := cs.GetByEitherID(id)
		if err != nil {
			t.Fatalf("get by either id (%s): %v", id, err)
		}
		if got == nil || got.ID != c.ID {
			t.Errorf("get by either id (%s) = %+v", id, got)
		}
	}

	miss, err := cs.GetByEitherID(uuid.NewString())
	if err != nil {
		t.Fatalf("get unknown: %v", err)
	}
	if miss != nil {
		t.Errorf("expected nil for unknown id, got %+v", miss)
	}
}

func TestChildResolveIdentity(t *testing.T) {
	cs := NewChildStore(setupTestDB(t))

	c, err := cs.Create("fam-1", "Ada", "", "#3B82F6", "")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	ident, err := cs.ResolveIdentity(c.LegacyUID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ident == nil || ident.Canonical != c.ID || ident.Legacy != c.LegacyUID {
		t.Errorf("identity = %+v", ident)
	}

	miss, err := cs.ResolveIdentity(uuid.NewString())
	if err != nil {
		t.Fatalf("resolve unknown: %v", err)
	}
	if miss != nil {
		t.Errorf("expected nil for unknown id, got %+v", miss)
	}
}

func TestChildListByFamily(t *testing.T) {
	cs := NewChildStore(setupTestDB(t))

	cs.Create("fam-1", "Maya", "", "#3B82F6", "")
	cs.Create("fam-1", "Theo", "", "#3B82F6", "")
	cs.Create("fam-2", "Zoe", "", "#3B82F6", "")

	children, err := cs.ListByFamily("fam-1")
	if err != nil {
		t.Fatalf("list by family: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2", len(children))
	}
	// Creation order is preserved via sort_order.
	if children[0].Name != "Maya" || children[1].Name != "Theo" {
		t.Errorf("children = %v, %v", children[0].Name, children[1].Name)
	}
}

func TestChildPIN(t *testing.T) {
	cs := NewChildStore(setupTestDB(t))

	c, err := cs.Create("fam-1", "Iris", "", "#3B82F6", "")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	if err := cs.SetPIN(c.ID, string(hash)); err != nil {
		t.Fatalf("set pin: %v", err)
	}

	got, err := cs.GetPINHash(c.ID)
	if err != nil {
		t.Fatalf("get pin hash: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(got), []byte("1234")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}

	updated, err := cs.GetByID(c.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if !updated.HasPIN {
		t.Error("HasPIN = false after SetPIN")
	}

	if err := cs.ClearPIN(c.ID); err != nil {
		t.Fatalf("clear pin: %v", err)
	}
	got, err = cs.GetPINHash(c.ID)
	if err != nil {
		t.Fatalf("get pin hash after clear: %v", err)
	}
	if got != "" {
		t.Errorf("hash after clear = %q, want empty", got)
	}
}
