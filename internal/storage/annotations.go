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
	"fmt"
	"time"

	"lightscript/internal/domain"
)

// Annotations returns a track's annotations ordered by start time, then
// z-index.
func (s *Store) Annotations(ctx context.Context, trackID int64) ([]domain.Annotation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pattern_id, start_time, end_time, z_index, blend_mode, args_json
		 FROM annotations WHERE track_id=? ORDER BY start_time, z_index`, trackID)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Annotation
	for rows.Next() {
		var (
			a        domain.Annotation
			blend    string
			argsJSON sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.PatternID, &a.StartTime, &a.EndTime, &a.ZIndex, &blend, &argsJSON); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		a.BlendMode, _ = domain.ParseBlendMode(blend)
		if argsJSON.Valid && argsJSON.String != "" {
			if err := json.Unmarshal([]byte(argsJSON.String), &a.Args); err != nil {
				return nil, fmt.Errorf("decode annotation %d args: %w", a.ID, err)
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ReplaceAnnotations swaps a track's annotations for the given list inside
// one transaction, so readers never observe a half-imported timeline.
func (s *Store) ReplaceAnnotations(ctx context.Context, trackID int64, anns []domain.Annotation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace annotations: %w", err)
	}
	if err := replaceAnnotationsTx(ctx, tx, trackID, anns); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func replaceAnnotationsTx(ctx context.Context, tx *sql.Tx, trackID int64, anns []domain.Annotation) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM annotations WHERE track_id=?`, trackID); err != nil {
		return fmt.Errorf("clear annotations: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, a := range anns {
		var argsJSON sql.NullString
		if len(a.Args) > 0 {
			b, err := json.Marshal(a.Args)
			if err != nil {
				return fmt.Errorf("encode annotation args: %w", err)
			}
			argsJSON = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO annotations(track_id, pattern_id, start_time, end_time, z_index, blend_mode, args_json, created_at, updated_at)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			trackID, a.PatternID, a.StartTime, a.EndTime, a.ZIndex, string(a.BlendMode), argsJSON, now, now); err != nil {
			return fmt.Errorf("insert annotation: %w", err)
		}
	}
	return nil
}
