/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "testing"

func TestParseBlendMode(t *testing.T) {
	cases := []struct {
		in    string
		want  BlendMode
		valid bool
	}{
		{"replace", BlendReplace, true},
		{"ADD", BlendAdd, true},
		{" multiply ", BlendMultiply, true},
		{"screen", BlendScreen, true},
		{"subtract", BlendSubtract, true},
		{"overlay", BlendReplace, false},
		{"", BlendReplace, false},
	}
	for _, c := range cases {
		got, ok := ParseBlendMode(c.in)
		if got != c.want || ok != c.valid {
			t.Fatalf("ParseBlendMode(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.valid)
		}
	}
}

func TestRGBHexRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		want RGB
	}{
		{"#ff0000", RGB{R: 255}},
		{"00FF00", RGB{G: 255}},
		{"  #a1b2c3 ", RGB{R: 0xa1, G: 0xb2, B: 0xc3}},
	}
	for _, c := range cases {
		got, err := RGBFromHex(c.in)
		if err != nil {
			t.Fatalf("RGBFromHex(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("RGBFromHex(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
	if (RGB{R: 0xa1, G: 0xb2, B: 0xc3}).Hex() != "a1b2c3" {
		t.Fatal("Hex() must be lower-case without '#'")
	}
}

func TestRGBFromHex_Invalid(t *testing.T) {
	for _, in := range []string{"", "#fff", "#ff00zz", "#ff000000"} {
		if _, err := RGBFromHex(in); err == nil {
			t.Fatalf("RGBFromHex(%q) should fail", in)
		}
	}
}

func TestRGBFromMap(t *testing.T) {
	c, ok := RGBFromMap(map[string]any{"r": 10.0, "g": 20.0, "b": 30.0})
	if !ok || c != (RGB{R: 10, G: 20, B: 30}) {
		t.Fatalf("RGBFromMap = %+v, %v", c, ok)
	}
	for _, m := range []map[string]any{
		{"r": 10.0, "g": 20.0},
		{"r": 300.0, "g": 0.0, "b": 0.0},
		{"r": "10", "g": "20", "b": "30"},
	} {
		if _, ok := RGBFromMap(m); ok {
			t.Fatalf("RGBFromMap(%v) should fail", m)
		}
	}
}

func TestPatternArgDefaults(t *testing.T) {
	colorArg := PatternArgDef{Type: ArgColor, Default: "#A1B2C3"}
	hex, ok := colorArg.DefaultHex()
	if !ok || hex != "a1b2c3" {
		t.Fatalf("DefaultHex = %q, %v", hex, ok)
	}
	mapArg := PatternArgDef{Type: ArgColor, Default: map[string]any{"r": 255.0, "g": 0.0, "b": 0.0}}
	hex, ok = mapArg.DefaultHex()
	if !ok || hex != "ff0000" {
		t.Fatalf("DefaultHex from map = %q, %v", hex, ok)
	}

	scalarArg := PatternArgDef{Type: ArgScalar, Default: 2.5}
	if f, ok := scalarArg.DefaultScalar(); !ok || f != 2.5 {
		t.Fatalf("DefaultScalar = %v, %v", f, ok)
	}
	if _, ok := (PatternArgDef{Type: ArgScalar}).DefaultScalar(); ok {
		t.Fatal("nil default has no scalar")
	}
}

func TestPatternDefLookups(t *testing.T) {
	def := PatternDef{
		ID:   7,
		Name: "wash",
		Args: []PatternArgDef{
			{ID: "sel", Name: "selection", Type: ArgSelection},
			{ID: "col", Name: "color", Type: ArgColor},
		},
	}
	if a, ok := def.Arg("color"); !ok || a.ID != "col" {
		t.Fatalf("Arg(color) = %+v, %v", a, ok)
	}
	if _, ok := def.Arg("rate"); ok {
		t.Fatal("Arg(rate) should miss")
	}
	if a, ok := def.SelectionArg(); !ok || a.ID != "sel" {
		t.Fatalf("SelectionArg = %+v, %v", a, ok)
	}

	reg := PatternRegistry{"wash": def}
	if d, ok := reg.ByID(7); !ok || d.Name != "wash" {
		t.Fatalf("ByID = %+v, %v", d, ok)
	}
	if _, ok := reg.ByID(8); ok {
		t.Fatal("ByID(8) should miss")
	}
}

func TestBeatGridTotalBars(t *testing.T) {
	if (BeatGrid{}).TotalBars() != 0 {
		t.Fatal("empty grid has no bars")
	}
	g := BeatGrid{Downbeats: []float64{0, 2, 4}}
	if g.TotalBars() != 3 {
		t.Fatalf("TotalBars = %d", g.TotalBars())
	}
}
