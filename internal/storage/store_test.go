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
	"path/filepath"
	"testing"

	"lightscript/internal/domain"
)

func testPatterns() []domain.PatternDef {
	return []domain.PatternDef{
		{
			ID:   1,
			Name: "solid_color",
			Args: []domain.PatternArgDef{
				{ID: "sel", Name: "selection", Type: domain.ArgSelection, Default: "all"},
				{ID: "col", Name: "color", Type: domain.ArgColor, Default: "#ffffff"},
				{ID: "int", Name: "intensity", Type: domain.ArgScalar, Default: 1.0},
			},
		},
		{
			ID:   2,
			Name: "strobe",
			Args: []domain.PatternArgDef{
				{ID: "sel", Name: "selection", Type: domain.ArgSelection, Default: "all"},
				{ID: "rate", Name: "rate", Type: domain.ArgScalar, Default: 2.0},
			},
		},
	}
}

func openSeededStore(t *testing.T) (*Store, int64) {
	t.Helper()
	ctx := context.Background()
	st, err := Open(filepath.Join(t.TempDir(), "show.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	trackID, err := st.CreateTrack(ctx, "demo track")
	if err != nil {
		t.Fatalf("CreateTrack: %v", err)
	}
	for _, def := range testPatterns() {
		if err := st.SavePattern(ctx, def); err != nil {
			t.Fatalf("SavePattern(%s): %v", def.Name, err)
		}
	}
	grid := domain.BeatGrid{Downbeats: []float64{0, 2, 4, 6, 8, 10}, BPM: 120, BeatsPerBar: 4}
	if err := st.SaveBeatGrid(ctx, trackID, grid); err != nil {
		t.Fatalf("SaveBeatGrid: %v", err)
	}
	return st, trackID
}

func TestOpen_CreatesSchemaAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if st.Path() != path {
		t.Fatalf("Path() = %q", st.Path())
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = st2.Close() }()
	if _, err := st2.CreateTrack(context.Background(), "t"); err != nil {
		t.Fatalf("CreateTrack after reopen: %v", err)
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	st, _ := openSeededStore(t)
	reg, err := st.Registry(context.Background())
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	if len(reg) != 2 {
		t.Fatalf("pattern count = %d, want 2", len(reg))
	}
	def := reg["solid_color"]
	if def.ID != 1 || len(def.Args) != 3 {
		t.Fatalf("solid_color = %+v", def)
	}
	// declared arg order survives the round trip
	if def.Args[0].ID != "sel" || def.Args[1].ID != "col" || def.Args[2].ID != "int" {
		t.Fatalf("arg order = %+v", def.Args)
	}
	if def.Args[1].Default != "#ffffff" {
		t.Fatalf("color default = %v", def.Args[1].Default)
	}
	if f, ok := def.Args[2].DefaultScalar(); !ok || f != 1 {
		t.Fatalf("scalar default = %v (%v)", f, ok)
	}
}

func TestSavePattern_UpsertReplacesArgs(t *testing.T) {
	st, _ := openSeededStore(t)
	ctx := context.Background()
	updated := domain.PatternDef{
		ID:   2,
		Name: "strobe",
		Args: []domain.PatternArgDef{
			{ID: "rate", Name: "rate", Type: domain.ArgScalar, Default: 4.0},
		},
	}
	if err := st.SavePattern(ctx, updated); err != nil {
		t.Fatalf("SavePattern: %v", err)
	}
	reg, err := st.Registry(ctx)
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	if len(reg["strobe"].Args) != 1 {
		t.Fatalf("strobe args = %+v", reg["strobe"].Args)
	}
	if f, _ := reg["strobe"].Args[0].DefaultScalar(); f != 4 {
		t.Fatalf("rate default = %v", f)
	}
}

func TestBeatGrid_RoundTripAndMissing(t *testing.T) {
	st, trackID := openSeededStore(t)
	ctx := context.Background()

	grid, found, err := st.BeatGrid(ctx, trackID)
	if err != nil || !found {
		t.Fatalf("BeatGrid: %v found=%v", err, found)
	}
	if len(grid.Downbeats) != 6 || grid.BPM != 120 || grid.BeatsPerBar != 4 {
		t.Fatalf("grid = %+v", grid)
	}

	if _, found, err := st.BeatGrid(ctx, 9999); err != nil || found {
		t.Fatalf("missing grid: %v found=%v", err, found)
	}

	grid.BPM = 96
	if err := st.SaveBeatGrid(ctx, trackID, grid); err != nil {
		t.Fatalf("re-save: %v", err)
	}
	grid2, _, err := st.BeatGrid(ctx, trackID)
	if err != nil || grid2.BPM != 96 {
		t.Fatalf("updated grid = %+v (%v)", grid2, err)
	}
}

func TestReplaceAnnotations(t *testing.T) {
	st, trackID := openSeededStore(t)
	ctx := context.Background()

	anns := []domain.Annotation{
		{PatternID: 1, StartTime: 0, EndTime: 4, ZIndex: 0, BlendMode: domain.BlendReplace,
			Args: map[string]any{"col": map[string]any{"r": 0.0, "g": 255.0, "b": 0.0}}},
		{PatternID: 2, StartTime: 0, EndTime: 4, ZIndex: 1, BlendMode: domain.BlendAdd},
	}
	if err := st.ReplaceAnnotations(ctx, trackID, anns); err != nil {
		t.Fatalf("ReplaceAnnotations: %v", err)
	}
	got, err := st.Annotations(ctx, trackID)
	if err != nil {
		t.Fatalf("Annotations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("annotation count = %d", len(got))
	}
	if got[0].PatternID != 1 || got[1].BlendMode != domain.BlendAdd {
		t.Fatalf("annotations = %+v", got)
	}
	col, ok := got[0].Args["col"].(map[string]any)
	if !ok || col["g"] != 255.0 {
		t.Fatalf("args = %v", got[0].Args)
	}
	if got[1].Args != nil {
		t.Fatalf("empty args should stay nil, got %v", got[1].Args)
	}

	// replacing again swaps, never appends
	if err := st.ReplaceAnnotations(ctx, trackID, anns[:1]); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	got, err = st.Annotations(ctx, trackID)
	if err != nil || len(got) != 1 {
		t.Fatalf("after second replace: %d (%v)", len(got), err)
	}
}

func TestImportExportScript(t *testing.T) {
	st, trackID := openSeededStore(t)
	ctx := context.Background()
	source := "@1-2\nsolid_color(all) color=#00ff00\n\n@4\nhold"

	result, err := st.ImportScript(ctx, trackID, source)
	if err != nil {
		t.Fatalf("ImportScript: %v", err)
	}
	if !result.OK {
		t.Fatalf("import diagnostics: %+v", result.Errors)
	}
	anns, err := st.Annotations(ctx, trackID)
	if err != nil || len(anns) != 2 {
		t.Fatalf("annotations = %d (%v)", len(anns), err)
	}

	text, err := st.ExportScript(ctx, trackID)
	if err != nil {
		t.Fatalf("ExportScript: %v", err)
	}
	if text != source {
		t.Fatalf("export drifted:\n got  %q\n want %q", text, source)
	}

	// import and export each left a snapshot
	snaps, err := st.ListScriptSnapshots(ctx, trackID, 0)
	if err != nil {
		t.Fatalf("ListScriptSnapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("snapshot count = %d, want 2", len(snaps))
	}
	latest, found, err := st.LatestScriptSnapshot(ctx, trackID)
	if err != nil || !found {
		t.Fatalf("LatestScriptSnapshot: %v found=%v", err, found)
	}
	if latest.Text != text {
		t.Fatalf("latest snapshot = %q", latest.Text)
	}
}

func TestImportScript_BadSourceWritesNothing(t *testing.T) {
	st, trackID := openSeededStore(t)
	ctx := context.Background()

	if _, err := st.ImportScript(ctx, trackID, "@1\nsolid_color(all)"); err != nil {
		t.Fatalf("first import: %v", err)
	}

	result, err := st.ImportScript(ctx, trackID, "@1\nno_such_pattern(all)")
	if err != nil {
		t.Fatalf("ImportScript: %v", err)
	}
	if result.OK {
		t.Fatal("expected a failed parse")
	}
	anns, err := st.Annotations(ctx, trackID)
	if err != nil || len(anns) != 1 {
		t.Fatalf("annotations after bad import = %d (%v)", len(anns), err)
	}
}

func TestImportScript_RequiresBeatGrid(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "show.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = st.Close() }()
	ctx := context.Background()
	trackID, err := st.CreateTrack(ctx, "bare")
	if err != nil {
		t.Fatalf("CreateTrack: %v", err)
	}
	if _, err := st.ImportScript(ctx, trackID, "@1\nsolid_color(all)"); err == nil {
		t.Fatal("expected an error without a beat grid")
	}
	if _, err := st.ExportScript(ctx, trackID); err == nil {
		t.Fatal("expected an error without a beat grid")
	}
}

func TestPruneScriptSnapshots(t *testing.T) {
	st, trackID := openSeededStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := st.SaveScriptSnapshot(ctx, trackID, "@1\nsolid_color(all)"); err != nil {
			t.Fatalf("SaveScriptSnapshot: %v", err)
		}
	}
	removed, err := st.PruneScriptSnapshots(ctx, trackID, 2)
	if err != nil {
		t.Fatalf("PruneScriptSnapshots: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}
	snaps, err := st.ListScriptSnapshots(ctx, trackID, 0)
	if err != nil || len(snaps) != 2 {
		t.Fatalf("remaining = %d (%v)", len(snaps), err)
	}
}
