package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/driftsync/internal/cloudvar"
)

// Update is one recorded variable write, derived from a snapshot diff.
type Update struct {
	Seq   int64
	Name  string
	Value string
}

// LoadSnapshot returns the snapshot stored under key, or an empty map
// when the key has never been saved.
func (s *Store) LoadSnapshot(ctx context.Context, key string) (map[string]string, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM snapshots WHERE key = ?
	`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}

	vars, err := cloudvar.UnmarshalSnapshot([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	return vars, nil
}

// SaveSnapshot replaces the snapshot under key and appends the diff
// against the previous snapshot to the update history, all in one
// transaction. Every changed or new name gets one history row stamped
// with seq; unchanged names produce no rows. The snapshot row is
// written even when nothing changed, so a save always leaves the
// stored payload equal to vars.
func (s *Store) SaveSnapshot(ctx context.Context, key string, vars map[string]string, seq int64) error {
	payload, err := cloudvar.MarshalSnapshot(vars)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save snapshot %s: begin tx: %w", key, err)
	}
	defer tx.Rollback() // No-op if committed

	prev := map[string]string{}
	var prevPayload string
	err = tx.QueryRowContext(ctx, `
		SELECT payload FROM snapshots WHERE key = ?
	`, key).Scan(&prevPayload)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First save for this key; every name is a change.
	case err != nil:
		return fmt.Errorf("save snapshot %s: read previous: %w", key, err)
	default:
		prev, err = cloudvar.UnmarshalSnapshot([]byte(prevPayload))
		if err != nil {
			return fmt.Errorf("save snapshot %s: decode previous: %w", key, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (key, payload, updated_seq)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_seq = excluded.updated_seq
	`, key, string(payload), seq)
	if err != nil {
		return fmt.Errorf("save snapshot %s: upsert: %w", key, err)
	}

	for _, name := range sortedNames(vars) {
		if old, ok := prev[name]; ok && old == vars[name] {
			continue
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO updates (key, seq, name, value)
			VALUES (?, ?, ?, ?)
		`, key, seq, name, vars[name])
		if err != nil {
			return fmt.Errorf("save snapshot %s: append update: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot %s: commit: %w", key, err)
	}
	return nil
}

// LatestSeq returns the highest sequence number ever written, across
// all keys. A restarted process seeds its logical clock from this so
// sequence numbers never repeat. Returns 0 for an empty store.
func (s *Store) LatestSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM updates
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("latest seq: %w", err)
	}
	return seq.Int64, nil
}

// UpdateHistory returns every recorded update for key in sequence
// order.
func (s *Store) UpdateHistory(ctx context.Context, key string) ([]Update, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, name, value FROM updates
		WHERE key = ?
		ORDER BY seq, id
	`, key)
	if err != nil {
		return nil, fmt.Errorf("update history %s: %w", key, err)
	}
	defer rows.Close()

	var updates []Update
	for rows.Next() {
		var u Update
		if err := rows.Scan(&u.Seq, &u.Name, &u.Value); err != nil {
			return nil, fmt.Errorf("update history %s: scan: %w", key, err)
		}
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("update history %s: %w", key, err)
	}
	return updates, nil
}

// Keys returns every storage key with a saved snapshot.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key FROM snapshots ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("list keys: scan: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

// BoundStorage adapts a Store to the blocking, context-free interface
// the sync handlers expect. The context and sequence source are fixed
// at bind time.
type BoundStorage struct {
	store *Store
	ctx   context.Context
	next  func() int64
}

// Bind returns storage scoped to ctx, stamping each save with a
// sequence number drawn from next.
func (s *Store) Bind(ctx context.Context, next func() int64) *BoundStorage {
	return &BoundStorage{store: s, ctx: ctx, next: next}
}

// Load implements snapshot loading for a bound session.
func (b *BoundStorage) Load(key string) (map[string]string, error) {
	return b.store.LoadSnapshot(b.ctx, key)
}

// Save implements snapshot saving for a bound session.
func (b *BoundStorage) Save(key string, vars map[string]string) error {
	return b.store.SaveSnapshot(b.ctx, key, vars, b.next())
}

func sortedNames(vars map[string]string) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
