/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the external data model shared between the DSL pipeline,
// the show store, and the host application: annotations placed on a track's
// timeline, the beat grid used to map bars to seconds, and the pattern
// registry describing which patterns exist and which arguments they take.

import (
	"fmt"
	"strings"
)

// BlendMode is the closed set of compositing modes a layer may use.
type BlendMode string

const (
	BlendReplace  BlendMode = "replace"
	BlendAdd      BlendMode = "add"
	BlendMultiply BlendMode = "multiply"
	BlendScreen   BlendMode = "screen"
	BlendMax      BlendMode = "max"
	BlendMin      BlendMode = "min"
	BlendLighten  BlendMode = "lighten"
	BlendValue    BlendMode = "value"
	BlendSubtract BlendMode = "subtract"
)

// ParseBlendMode maps a lower-cased name to its BlendMode.
// The boolean is false for names outside the closed set.
func ParseBlendMode(s string) (BlendMode, bool) {
	m := BlendMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case BlendReplace, BlendAdd, BlendMultiply, BlendScreen, BlendMax, BlendMin, BlendLighten, BlendValue, BlendSubtract:
		return m, true
	}
	return BlendReplace, false
}

// RGB is an 8-bit-per-channel color as stored in annotation args.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the 6-digit lower-case hex form without a leading '#'.
func (c RGB) Hex() string { return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B) }

// RGBFromHex parses a 6-hex-digit string, with or without a leading '#'.
func RGBFromHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("hex color must have 6 digits, got %q", s)
	}
	var c RGB
	if _, err := fmt.Sscanf(strings.ToLower(s), "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return c, nil
}

// ArgType classifies a pattern argument.
type ArgType string

const (
	ArgColor     ArgType = "Color"
	ArgScalar    ArgType = "Scalar"
	ArgSelection ArgType = "Selection"
)

// PatternArgDef describes one argument of a pattern.
// ID is the key used in Annotation.Args; Name is the key used in DSL text.
// Default is the host-supplied default value: a hex string or RGB for Color,
// a float64 for Scalar, an expression string for Selection.
type PatternArgDef struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Type    ArgType `json:"type"`
	Default any     `json:"default,omitempty"`
}

// DefaultHex returns the Color default normalized to 6 lower-case hex digits.
func (d PatternArgDef) DefaultHex() (string, bool) {
	switch v := d.Default.(type) {
	case string:
		c, err := RGBFromHex(v)
		if err != nil {
			return "", false
		}
		return c.Hex(), true
	case RGB:
		return v.Hex(), true
	case map[string]any:
		c, ok := RGBFromMap(v)
		if !ok {
			return "", false
		}
		return c.Hex(), true
	}
	return "", false
}

// DefaultScalar returns the Scalar default as a float64.
func (d PatternArgDef) DefaultScalar() (float64, bool) {
	switch v := d.Default.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// RGBFromMap reads an {r,g,b} object as decoded from JSON.
func RGBFromMap(m map[string]any) (RGB, bool) {
	chan8 := func(key string) (uint8, bool) {
		switch v := m[key].(type) {
		case float64:
			if v < 0 || v > 255 {
				return 0, false
			}
			return uint8(v), true
		case int:
			if v < 0 || v > 255 {
				return 0, false
			}
			return uint8(v), true
		}
		return 0, false
	}
	r, okR := chan8("r")
	g, okG := chan8("g")
	b, okB := chan8("b")
	if !okR || !okG || !okB {
		return RGB{}, false
	}
	return RGB{R: r, G: g, B: b}, true
}

// PatternDef describes a pattern available to the show: its stable id, its
// DSL-visible name, and its argument definitions in declared order.
type PatternDef struct {
	ID   int64           `json:"id"`
	Name string          `json:"name"`
	Args []PatternArgDef `json:"args"`
}

// Arg returns the argument definition with the given DSL name.
func (p PatternDef) Arg(name string) (PatternArgDef, bool) {
	for _, a := range p.Args {
		if a.Name == name {
			return a, true
		}
	}
	return PatternArgDef{}, false
}

// SelectionArg returns the pattern's Selection-typed argument, if any.
func (p PatternDef) SelectionArg() (PatternArgDef, bool) {
	for _, a := range p.Args {
		if a.Type == ArgSelection {
			return a, true
		}
	}
	return PatternArgDef{}, false
}

// PatternRegistry maps pattern name to its definition. It is built once per
// call from host metadata and never mutated mid-parse.
type PatternRegistry map[string]PatternDef

// ByID looks a pattern up by its stable id.
func (r PatternRegistry) ByID(id int64) (PatternDef, bool) {
	for _, def := range r {
		if def.ID == id {
			return def, true
		}
	}
	return PatternDef{}, false
}

// Names returns all registered pattern names (unordered).
func (r PatternRegistry) Names() []string {
	out := make([]string, 0, len(r))
	for name := range r {
		out = append(out, name)
	}
	return out
}

// Annotation places a pattern on a track's timeline for [StartTime, EndTime)
// seconds. Args is an opaque key→value map keyed by argument id.
type Annotation struct {
	ID        int64          `json:"id,omitempty"`
	PatternID int64          `json:"patternId"`
	StartTime float64        `json:"startTime"`
	EndTime   float64        `json:"endTime"`
	ZIndex    int            `json:"zIndex"`
	BlendMode BlendMode      `json:"blendMode"`
	Args      map[string]any `json:"args,omitempty"`
}

// BeatGrid is the detected beat structure of an audio track.
// Downbeats[i] is the absolute start time of bar i+1; the list must be
// non-decreasing.
type BeatGrid struct {
	Beats          []float64 `json:"beats"`
	Downbeats      []float64 `json:"downbeats"`
	BPM            float64   `json:"bpm"`
	BeatsPerBar    int       `json:"beatsPerBar"`
	DownbeatOffset int       `json:"downbeatOffset"`
}

// TotalBars returns the number of bars with a known downbeat.
func (g BeatGrid) TotalBars() int { return len(g.Downbeats) }
