package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tobinmarsh/kidwallet/internal/model"
)

type ChildStore struct {
	db *sql.DB
}

func NewChildStore(db *sql.DB) *ChildStore {
	return &ChildStore{db: db}
}

const childCols = `id, legacy_uid, family_id, name, nickname, color, avatar_emoji, pin IS NOT NULL, sort_order, created_at, updated_at`

func scanChild(scanner interface{ Scan(...any) error }) (*model.Child, error) {
	var c model.Child
	err := scanner.Scan(&c.ID, &c.LegacyUID, &c.FamilyID, &c.Name, &c.Nickname,
		&c.Color, &c.AvatarEmoji, &c.HasPIN, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ChildStore) Create(familyID, name, nickname, color, avatarEmoji string) (*model.Child, error) {
	var maxOrder int
	err := s.db.QueryRow("SELECT COALESCE(MAX(sort_order), -1) FROM children").Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("query max sort_order: %w", err)
	}

	id := uuid.NewString()
	// A freshly created child has no pre-migration history; its legacy uid
	// is minted alongside the canonical id so both lookup paths work.
	legacyUID := uuid.NewString()

	_, err = s.db.Exec(
		`INSERT INTO children (id, legacy_uid, family_id, name, nickname, color, avatar_emoji, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, legacyUID, familyID, name, nickname, color, avatarEmoji, maxOrder+1,
	)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}

	return s.GetByID(id)
}

// GetByID fetches a child by canonical id. Returns nil when not found.
func (s *ChildStore) GetByID(id string) (*model.Child, error) {
	row := s.db.QueryRow(`SELECT `+childCols+` FROM children WHERE id = ?`, id)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

// GetByEitherID fetches a child matching the given value against either the
// canonical id or the legacy uid. Returns nil when neither matches.
func (s *ChildStore) GetByEitherID(id string) (*model.Child, error) {
	row := s.db.QueryRow(`SELECT `+childCols+` FROM children WHERE id = ? OR legacy_uid = ?`, id, id)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child by either id: %w", err)
	}
	return c, nil
}

// ResolveIdentity maps either identifier form to the full identity pair.
// A miss returns nil (not an error): a brand-new child may not be
// materialized yet and callers fall back to the input value.
func (s *ChildStore) ResolveIdentity(id string) (*model.Identity, error) {
	var ident model.Identity
	err := s.db.QueryRow(
		`SELECT id, legacy_uid FROM children WHERE id = ? OR legacy_uid = ?`, id, id,
	).Scan(&ident.Canonical, &ident.Legacy)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return &ident, nil
}

func (s *ChildStore) List() ([]model.Child, error) {
	rows, err := s.db.Query(`SELECT ` + childCols + ` FROM children ORDER BY sort_order`)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()
	return collectChildren(rows)
}

func (s *ChildStore) ListByFamily(familyID string) ([]model.Child, error) {
	rows, err := s.db.Query(`SELECT `+childCols+` FROM children WHERE family_id = ? ORDER BY sort_order`, familyID)
	if err != nil {
		return nil, fmt.Errorf("list children by family: %w", err)
	}
	defer rows.Close()
	return collectChildren(rows)
}

func collectChildren(rows *sql.Rows) ([]model.Child, error) {
	var children []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

func (s *ChildStore) Update(id, name, nickname, color, avatarEmoji string) (*model.Child, error) {
	_, err := s.db.Exec(
		`UPDATE children SET name = ?, nickname = ?, color = ?, avatar_emoji = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, nickname, color, avatarEmoji, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update child: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChildStore) SetPIN(id string, hashedPIN string) error {
	_, err := s.db.Exec(`UPDATE children SET pin = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, hashedPIN, id)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (s *ChildStore) ClearPIN(id string) error {
	_, err := s.db.Exec(`UPDATE children SET pin = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("clear pin: %w", err)
	}
	return nil
}

// GetPINHash returns the stored bcrypt hash, or "" when no PIN is set.
func (s *ChildStore) GetPINHash(id string) (string, error) {
	var hash sql.NullString
	err := s.db.QueryRow(`SELECT pin FROM children WHERE id = ?`, id).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get pin hash: %w", err)
	}
	return hash.String, nil
}
