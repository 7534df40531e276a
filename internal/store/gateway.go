package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rota-app/rota/internal/changelog"
	"github.com/rota-app/rota/internal/state"
)

// AppendChangeLog inserts one entry. Uses ON CONFLICT(id) DO NOTHING
// for idempotency - re-appending the same entry after a crash/replay
// is silently ignored. Other constraint violations still error.
func (s *Store) AppendChangeLog(ctx context.Context, e changelog.Entry) error {
	before, err := marshalSnapshot(e.Before)
	if err != nil {
		return fmt.Errorf("append change log: %w", err)
	}
	after, err := marshalSnapshot(e.After)
	if err != nil {
		return fmt.Errorf("append change log: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO change_log
		(id, seq, at, actor, kind, before_snapshot, after_snapshot, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.Seq,
		e.At.UnixNano(),
		e.Actor,
		string(e.Kind),
		before,
		after,
		e.Reason,
	)
	if err != nil {
		return fmt.Errorf("append change log: %w", err)
	}
	return nil
}

// LoadChangeLog returns all persisted entries ordered by seq.
// Returns an empty slice (not nil) when the log is empty.
func (s *Store) LoadChangeLog(ctx context.Context) ([]changelog.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, at, actor, kind, before_snapshot, after_snapshot, reason
		FROM change_log
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query change log: %w", err)
	}
	defer rows.Close()

	entries := []changelog.Entry{}
	for rows.Next() {
		var (
			e             changelog.Entry
			at            int64
			kind          string
			before, after sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Seq, &at, &e.Actor, &kind, &before, &after, &e.Reason); err != nil {
			return nil, fmt.Errorf("scan change log entry: %w", err)
		}
		e.At = time.Unix(0, at)
		e.Kind = changelog.Kind(kind)
		if e.Before, err = unmarshalSnapshot(before); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		if e.After, err = unmarshalSnapshot(after); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change log: %w", err)
	}
	return entries, nil
}

// PurgeChangeLog deletes entries with a timestamp strictly before
// cutoff and returns how many rows went. Idempotent.
func (s *Store) PurgeChangeLog(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM change_log WHERE at < ?
	`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purge change log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge change log: rows affected: %w", err)
	}
	return n, nil
}

// SaveState replaces the single persisted state snapshot.
func (s *Store) SaveState(ctx context.Context, st state.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("save state: marshal: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO state_snapshots (id, version, payload, saved_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			saved_at = excluded.saved_at
	`, st.Version, string(payload), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// LoadState returns the persisted snapshot, with found=false when no
// snapshot has been saved yet.
func (s *Store) LoadState(ctx context.Context) (state.State, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM state_snapshots WHERE id = 1
	`).Scan(&payload)
	if err == sql.ErrNoRows {
		return state.State{}, false, nil
	}
	if err != nil {
		return state.State{}, false, fmt.Errorf("load state: %w", err)
	}

	var st state.State
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		return state.State{}, false, fmt.Errorf("load state: unmarshal: %w", err)
	}
	// Empty maps serialize to {} but a hand-edited payload may omit
	// them; keep the aggregate's non-nil invariant either way.
	if st.Schedule.Assignments == nil {
		st.Schedule.Assignments = map[string]state.Assignment{}
	}
	if st.Catalog.Templates == nil {
		st.Catalog.Templates = map[string]state.ShiftTemplate{}
	}
	return st, true, nil
}

// marshalSnapshot serializes an assignment snapshot as canonical JSON
// so persisted bytes are stable across processes and platforms.
func marshalSnapshot(snap *changelog.Snapshot) (any, error) {
	if snap == nil {
		return nil, nil
	}
	m := map[string]any{
		"date":        snap.Date,
		"template_id": snap.TemplateID,
	}
	if snap.CalendarEventID != "" {
		m["calendar_event_id"] = snap.CalendarEventID
	}
	b, err := state.MarshalCanonical(m)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(b), nil
}

func unmarshalSnapshot(raw sql.NullString) (*changelog.Snapshot, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var snap changelog.Snapshot
	if err := json.Unmarshal([]byte(raw.String), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
