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
	"encoding/json"
	"errors"
	"fmt"

	"lightscript/internal/domain"
)

// SaveBeatGrid upserts the analysis grid for a track. A track has at most one
// grid; re-analysis overwrites the previous one.
func (s *Store) SaveBeatGrid(ctx context.Context, trackID int64, grid domain.BeatGrid) error {
	beats, err := json.Marshal(grid.Beats)
	if err != nil {
		return fmt.Errorf("encode beats: %w", err)
	}
	downbeats, err := json.Marshal(grid.Downbeats)
	if err != nil {
		return fmt.Errorf("encode downbeats: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO beat_grids(track_id, beats_json, downbeats_json, bpm, beats_per_bar, downbeat_offset)
		 VALUES(?, ?, ?, ?, ?, ?)
		 ON CONFLICT(track_id) DO UPDATE SET
		   beats_json=excluded.beats_json,
		   downbeats_json=excluded.downbeats_json,
		   bpm=excluded.bpm,
		   beats_per_bar=excluded.beats_per_bar,
		   downbeat_offset=excluded.downbeat_offset`,
		trackID, string(beats), string(downbeats), grid.BPM, grid.BeatsPerBar, grid.DownbeatOffset)
	if err != nil {
		return fmt.Errorf("save beat grid: %w", err)
	}
	return nil
}

// BeatGrid loads a track's grid. found is false when the track has not been
// analysed yet.
func (s *Store) BeatGrid(ctx context.Context, trackID int64) (grid domain.BeatGrid, found bool, err error) {
	var beats, downbeats string
	err = s.db.QueryRowContext(ctx,
		`SELECT beats_json, downbeats_json, bpm, beats_per_bar, downbeat_offset
		 FROM beat_grids WHERE track_id=?`, trackID).
		Scan(&beats, &downbeats, &grid.BPM, &grid.BeatsPerBar, &grid.DownbeatOffset)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BeatGrid{}, false, nil
	}
	if err != nil {
		return domain.BeatGrid{}, false, fmt.Errorf("query beat grid: %w", err)
	}
	if err := json.Unmarshal([]byte(beats), &grid.Beats); err != nil {
		return domain.BeatGrid{}, false, fmt.Errorf("decode beats: %w", err)
	}
	if err := json.Unmarshal([]byte(downbeats), &grid.Downbeats); err != nil {
		return domain.BeatGrid{}, false, fmt.Errorf("decode downbeats: %w", err)
	}
	return grid, true, nil
}
