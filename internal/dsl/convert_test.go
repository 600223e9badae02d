/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dsl

import (
	"testing"

	"lightscript/internal/domain"
)

func testGrid(downbeats ...float64) domain.BeatGrid {
	return domain.BeatGrid{Downbeats: downbeats, BPM: 120, BeatsPerBar: 4}
}

func TestBarStartTime(t *testing.T) {
	grid := testGrid(0, 2, 4, 6)
	cases := []struct {
		bar  int
		want float64
	}{
		{1, 0},
		{2, 2},
		{4, 6},
		{5, 8},  // one bar past the grid, last bar lasted 2s
		{7, 12}, // extrapolation is linear
	}
	for _, c := range cases {
		if got := BarStartTime(grid, c.bar); got != c.want {
			t.Fatalf("BarStartTime(bar %d) = %v, want %v", c.bar, got, c.want)
		}
	}
}

func TestBarStartTime_NoDownbeats(t *testing.T) {
	grid := domain.BeatGrid{BPM: 120, BeatsPerBar: 4}
	// 120 bpm in 4/4 means 2s bars counted from t=0
	if got := BarStartTime(grid, 1); got != 0 {
		t.Fatalf("bar 1 = %v", got)
	}
	if got := BarStartTime(grid, 3); got != 4 {
		t.Fatalf("bar 3 = %v", got)
	}
}

func TestBarStartTime_SingleDownbeat(t *testing.T) {
	grid := domain.BeatGrid{Downbeats: []float64{5}, BPM: 60, BeatsPerBar: 4}
	if got := BarStartTime(grid, 1); got != 5 {
		t.Fatalf("bar 1 = %v", got)
	}
	// no observed bar duration; fall back to 60/bpm × beatsPerBar
	if got := BarStartTime(grid, 2); got != 9 {
		t.Fatalf("bar 2 = %v", got)
	}
}

func TestDSLToAnnotations(t *testing.T) {
	reg := testRegistry()
	grid := testGrid(0, 2, 4, 6)
	doc := mustParse(t, "@1-2\nsolid_color(all) color=#00ff00\n\n@3\nhold")

	anns := DSLToAnnotations(doc, grid, reg)
	if len(anns) != 2 {
		t.Fatalf("annotation count = %d, want 2", len(anns))
	}

	a := anns[0]
	if a.PatternID != 1 || a.StartTime != 0 || a.EndTime != 4 {
		t.Fatalf("first annotation = %+v", a)
	}
	if a.ZIndex != 0 || a.BlendMode != domain.BlendReplace {
		t.Fatalf("first annotation = %+v", a)
	}
	sel, ok := a.Args["sel"].(map[string]any)
	if !ok || sel["expression"] != "all" || sel["spatialReference"] != "global" {
		t.Fatalf("selection arg = %v", a.Args["sel"])
	}
	col, ok := a.Args["col"].(map[string]any)
	if !ok || col["r"] != 0.0 || col["g"] != 255.0 || col["b"] != 0.0 {
		t.Fatalf("color arg = %v", a.Args["col"])
	}
	if a.Args["int"] != 1.0 {
		t.Fatalf("intensity should fall back to its default, got %v", a.Args["int"])
	}

	// the hold substitutes the previous block's layers over bar 3
	h := anns[1]
	if h.StartTime != 4 || h.EndTime != 6 || h.PatternID != 1 {
		t.Fatalf("hold annotation = %+v", h)
	}
	hcol, ok := h.Args["col"].(map[string]any)
	if !ok || hcol["g"] != 255.0 {
		t.Fatalf("hold color arg = %v", h.Args["col"])
	}
}

func TestDSLToAnnotations_ZIndexFollowsLayerOrder(t *testing.T) {
	reg := testRegistry()
	doc := mustParse(t, "@1\nsolid_color(all)\nstrobe(all) rate=4 blend=add")
	anns := DSLToAnnotations(doc, testGrid(0, 2), reg)
	if len(anns) != 2 {
		t.Fatalf("annotation count = %d", len(anns))
	}
	if anns[0].ZIndex != 0 || anns[1].ZIndex != 1 {
		t.Fatalf("z-indexes = %d, %d", anns[0].ZIndex, anns[1].ZIndex)
	}
	if anns[1].PatternID != 2 || anns[1].BlendMode != domain.BlendAdd {
		t.Fatalf("second annotation = %+v", anns[1])
	}
}

func TestDSLToAnnotations_LeadingHoldYieldsNothing(t *testing.T) {
	doc := mustParse(t, "@1\nhold")
	anns := DSLToAnnotations(doc, testGrid(0, 2), testRegistry())
	if len(anns) != 0 {
		t.Fatalf("annotations = %+v", anns)
	}
}

func TestAnnotationsToDSL_MergesEqualBars(t *testing.T) {
	reg := testRegistry()
	grid := testGrid(0, 2, 4, 6, 8)
	anns := []domain.Annotation{
		{PatternID: 1, StartTime: 0, EndTime: 4}, // bars 1-2
	}
	got := AnnotationsToDSL(anns, grid, reg)
	want := "@1-2\nsolid_color(all)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAnnotationsToDSL_HoldBridgesGap(t *testing.T) {
	reg := testRegistry()
	grid := testGrid(0, 2, 4, 6, 8)
	anns := []domain.Annotation{
		{PatternID: 1, StartTime: 0, EndTime: 4}, // bars 1-2
		{PatternID: 1, StartTime: 6, EndTime: 8}, // bar 4, bar 3 stays dark
	}
	got := AnnotationsToDSL(anns, grid, reg)
	want := "@1-2\nsolid_color(all)\n\n@4\nhold"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAnnotationsToDSL_DistinctContentIsNotAHold(t *testing.T) {
	reg := testRegistry()
	grid := testGrid(0, 2, 4, 6)
	anns := []domain.Annotation{
		{PatternID: 1, StartTime: 0, EndTime: 2},
		{PatternID: 2, StartTime: 2, EndTime: 4},
	}
	got := AnnotationsToDSL(anns, grid, reg)
	want := "@1\nsolid_color(all)\n\n@2\nstrobe(all)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAnnotationsToDSL_Empty(t *testing.T) {
	reg := testRegistry()
	if got := AnnotationsToDSL(nil, testGrid(0, 2), reg); got != "" {
		t.Fatalf("no annotations: got %q", got)
	}
	anns := []domain.Annotation{{PatternID: 1, StartTime: 0, EndTime: 2}}
	if got := AnnotationsToDSL(anns, domain.BeatGrid{}, reg); got != "" {
		t.Fatalf("no bars: got %q", got)
	}
}

func TestAnnotationsToDSL_LayersOrderedByZIndex(t *testing.T) {
	reg := testRegistry()
	grid := testGrid(0, 2)
	anns := []domain.Annotation{
		{PatternID: 2, StartTime: 0, EndTime: 2, ZIndex: 1},
		{PatternID: 1, StartTime: 0, EndTime: 2, ZIndex: 0},
	}
	got := AnnotationsToDSL(anns, grid, reg)
	want := "@1\nsolid_color(all)\nstrobe(all)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAnnotationsToDSL_UnknownPatternIDSkipped(t *testing.T) {
	reg := testRegistry()
	grid := testGrid(0, 2)
	anns := []domain.Annotation{
		{PatternID: 99, StartTime: 0, EndTime: 2},
		{PatternID: 1, StartTime: 0, EndTime: 2, ZIndex: 1},
	}
	got := AnnotationsToDSL(anns, grid, reg)
	want := "@1\nsolid_color(all)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// Converting to annotations and back must reproduce the canonical script.
func TestConversion_RoundTrip(t *testing.T) {
	reg := testRegistry()
	grid := testGrid(0, 2, 4, 6, 8, 10)
	source := "@1-2\nsolid_color(all) color=#00ff00\n\n@4\nhold"

	doc := mustParse(t, source)
	anns := DSLToAnnotations(doc, grid, reg)
	got := AnnotationsToDSL(anns, grid, reg)
	if got != source {
		t.Fatalf("round trip drifted:\n got  %q\n want %q", got, source)
	}

	// a second pass through both directions is stable
	doc2 := mustParse(t, got)
	again := AnnotationsToDSL(DSLToAnnotations(doc2, grid, reg), grid, reg)
	if again != got {
		t.Fatalf("second round trip drifted:\n got  %q\n want %q", again, got)
	}
}
