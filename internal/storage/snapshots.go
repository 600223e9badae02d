/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ScriptSnapshot is one saved revision of a track's script text.
type ScriptSnapshot struct {
	ID      int64
	TrackID int64
	TS      string // RFC3339Nano, UTC
	Text    string
}

// SaveScriptSnapshot appends a script revision for the track and returns its
// row id.
func (s *Store) SaveScriptSnapshot(ctx context.Context, trackID int64, text string) (int64, error) {
	ts := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO script_snapshots(track_id, ts, text) VALUES(?, ?, ?)`,
		trackID, ts, text)
	if err != nil {
		return 0, fmt.Errorf("save script snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id: %w", err)
	}
	return id, nil
}

// LatestScriptSnapshot returns the most recent revision for the track.
// found is false when the track has no snapshots.
func (s *Store) LatestScriptSnapshot(ctx context.Context, trackID int64) (snap ScriptSnapshot, found bool, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT id, track_id, ts, text FROM script_snapshots
		 WHERE track_id=? ORDER BY ts DESC, id DESC LIMIT 1`, trackID).
		Scan(&snap.ID, &snap.TrackID, &snap.TS, &snap.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return ScriptSnapshot{}, false, nil
	}
	if err != nil {
		return ScriptSnapshot{}, false, fmt.Errorf("query latest snapshot: %w", err)
	}
	return snap, true, nil
}

// ListScriptSnapshots returns revisions for the track, newest first. A limit
// of 0 or less defaults to 50.
func (s *Store) ListScriptSnapshots(ctx context.Context, trackID int64, limit int) ([]ScriptSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, track_id, ts, text FROM script_snapshots
		 WHERE track_id=? ORDER BY ts DESC, id DESC LIMIT ?`, trackID, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ScriptSnapshot
	for rows.Next() {
		var snap ScriptSnapshot
		if err := rows.Scan(&snap.ID, &snap.TrackID, &snap.TS, &snap.Text); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// PruneScriptSnapshots deletes all but the newest keepLast revisions of the
// track and reports how many were removed.
func (s *Store) PruneScriptSnapshots(ctx context.Context, trackID int64, keepLast int) (int64, error) {
	if keepLast < 0 {
		keepLast = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM script_snapshots WHERE track_id=? AND id NOT IN (
		   SELECT id FROM script_snapshots WHERE track_id=? ORDER BY ts DESC, id DESC LIMIT ?
		 )`, trackID, trackID, keepLast)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune snapshots count: %w", err)
	}
	return n, nil
}
