package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/tobinmarsh/kidwallet/internal/model"
)

type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// ListByChildRefs returns every ledger entry attributed to any of the given
// identifier values, combining both ledger tables and merging by timestamp.
// Both identifier forms of a child must be passed so history is not split
// across the schema migration boundary.
func (s *LedgerStore) ListByChildRefs(refs []string) ([]model.LedgerEntry, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	canonical, err := s.queryEntries(
		`SELECT id, child_id, delta, reason, created_at FROM points_ledger
		 WHERE child_id IN (`+placeholders(len(refs))+`) ORDER BY created_at, id`,
		model.SourcePointsLedger, refs,
	)
	if err != nil {
		return nil, fmt.Errorf("query points_ledger: %w", err)
	}

	legacy, err := s.queryEntries(
		`SELECT id, child_uid, points, reason, created_at FROM child_points_ledger
		 WHERE child_uid IN (`+placeholders(len(refs))+`) ORDER BY created_at, id`,
		model.SourceChildPointsLedger, refs,
	)
	if err != nil {
		return nil, fmt.Errorf("query child_points_ledger: %w", err)
	}

	return mergeByTime(canonical, legacy), nil
}

func (s *LedgerStore) queryEntries(query string, source model.LedgerSource, refs []string) ([]model.LedgerEntry, error) {
	args := make([]any, len(refs))
	for i, r := range refs {
		args[i] = r
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.ChildRef, &e.Delta, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Source = source
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertIdempotent appends a ledger entry unless one already exists for the
// given idempotency key. It reports whether a new row was actually written;
// on a duplicate key it returns the id of the existing row with awarded=false.
func (s *LedgerStore) InsertIdempotent(childID string, delta int, reason, idemKey string) (ledgerID int64, awarded bool, err error) {
	result, err := s.db.Exec(
		`INSERT INTO points_ledger (child_id, delta, reason, idem_key) VALUES (?, ?, ?, ?)
		 ON CONFLICT(idem_key) DO NOTHING`,
		childID, delta, reason, idemKey,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert idempotent ledger entry: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		var existing int64
		err := s.db.QueryRow(`SELECT id FROM points_ledger WHERE idem_key = ?`, idemKey).Scan(&existing)
		if err != nil {
			return 0, false, fmt.Errorf("lookup existing entry: %w", err)
		}
		return existing, false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("last insert id: %w", err)
	}
	return id, true, nil
}

// Insert appends a plain ledger entry with no idempotency guarantee.
func (s *LedgerStore) Insert(childID string, delta int, reason string) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO points_ledger (child_id, delta, reason) VALUES (?, ?, ?)`,
		childID, delta, reason,
	)
	if err != nil {
		return 0, fmt.Errorf("insert ledger entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// InsertLegacy appends a row to the pre-migration ledger table. New writes
// go to points_ledger; this exists for migration tooling and tests.
func (s *LedgerStore) InsertLegacy(childUID string, points int, reason string) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO child_points_ledger (child_uid, points, reason) VALUES (?, ?, ?)`,
		childUID, points, reason,
	)
	if err != nil {
		return 0, fmt.Errorf("insert legacy ledger entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// CountByIdemKey reports how many entries carry the given idempotency key.
// At most one is possible under the unique index; this exists for tests and
// consistency checks.
func (s *LedgerStore) CountByIdemKey(idemKey string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM points_ledger WHERE idem_key = ?`, idemKey).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count by idem key: %w", err)
	}
	return n, nil
}

// mergeByTime merges two timestamp-ordered entry slices into one ordered
// slice. Ties keep canonical-table entries first.
func mergeByTime(a, b []model.LedgerEntry) []model.LedgerEntry {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}

	merged := make([]model.LedgerEntry, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].CreatedAt.After(b[j].CreatedAt) {
			merged = append(merged, b[j])
			j++
		} else {
			merged = append(merged, a[i])
			i++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	return merged
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
