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
	"fmt"

	"lightscript/internal/dsl"
)

// ExportScript renders the track's stored annotations as script text and
// records the result as a snapshot. Returns an error when the track has no
// beat grid, since bars cannot be placed without one.
func (s *Store) ExportScript(ctx context.Context, trackID int64) (string, error) {
	grid, found, err := s.BeatGrid(ctx, trackID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("track %d has no beat grid", trackID)
	}
	reg, err := s.Registry(ctx)
	if err != nil {
		return "", err
	}
	anns, err := s.Annotations(ctx, trackID)
	if err != nil {
		return "", err
	}
	text := dsl.AnnotationsToDSL(anns, grid, reg)
	if _, err := s.SaveScriptSnapshot(ctx, trackID, text); err != nil {
		return "", err
	}
	return text, nil
}

// ImportScript parses source against the stored pattern registry and, when
// the parse is clean, replaces the track's annotations with the converted
// timeline and snapshots the source. A failed parse writes nothing; the
// returned result carries the diagnostics either way.
func (s *Store) ImportScript(ctx context.Context, trackID int64, source string) (dsl.ParseResult, error) {
	grid, found, err := s.BeatGrid(ctx, trackID)
	if err != nil {
		return dsl.ParseResult{}, err
	}
	if !found {
		return dsl.ParseResult{}, fmt.Errorf("track %d has no beat grid", trackID)
	}
	reg, err := s.Registry(ctx)
	if err != nil {
		return dsl.ParseResult{}, err
	}
	result := dsl.Parse(source, reg)
	if !result.OK {
		return result, nil
	}
	anns := dsl.DSLToAnnotations(result.Document, grid, reg)
	if err := s.ReplaceAnnotations(ctx, trackID, anns); err != nil {
		return result, err
	}
	if _, err := s.SaveScriptSnapshot(ctx, trackID, source); err != nil {
		return result, err
	}
	return result, nil
}
