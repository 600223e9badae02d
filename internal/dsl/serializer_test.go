/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dsl

import "testing"

func canonical(t *testing.T, source string) string {
	t.Helper()
	return Serialize(mustParse(t, source), testRegistry())
}

func TestSerialize_Canonical(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{
			"default args elided",
			"@1\nsolid_color(all) color=#FFFFFF intensity=1",
			"@1\nsolid_color(all)",
		},
		{
			"non-default args kept",
			"@1\nsolid_color(all) color=#00ff00 intensity=0.5",
			"@1\nsolid_color(all) color=#00ff00 intensity=0.5",
		},
		{
			"hex is lower-cased",
			"@1\nsolid_color(all) color=#A1B2C3",
			"@1\nsolid_color(all) color=#a1b2c3",
		},
		{
			"default elision is case-insensitive",
			"@2-4\nstrobe(all) rate=4.50 color=#FF0000 blend=add",
			"@2-4\nstrobe(all) rate=4.5 blend=add",
		},
		{
			"blend is emitted last",
			"@1\nstrobe(all) blend=multiply rate=4",
			"@1\nstrobe(all) rate=4 blend=multiply",
		},
		{
			"blend replace is elided",
			"@1\nsolid_color(all) blend=replace color=#000000",
			"@1\nsolid_color(all) color=#000000",
		},
		{
			"declared order wins over source order",
			"@1\nstrobe(all) color=#00ff00 rate=4",
			"@1\nstrobe(all) rate=4 color=#00ff00",
		},
		{
			"unknown args are preserved after declared ones",
			"@1\nstrobe(all) sparkle=3 rate=4",
			"@1\nstrobe(all) rate=4 sparkle=3",
		},
		{
			"redundant parens are dropped",
			"@1\nsolid_color(((all)))",
			"@1\nsolid_color(all)",
		},
		{
			"necessary parens survive",
			"@1\nsolid_color((hit | wash) & left)",
			"@1\nsolid_color((hit | wash) & left)",
		},
		{
			"right-assoc grouping survives",
			"@1\nsolid_color(hit | (wash | all))",
			"@1\nsolid_color(hit | (wash | all))",
		},
		{
			"not over a group",
			"@1\nsolid_color(~(hit | wash))",
			"@1\nsolid_color(~(hit | wash))",
		},
		{
			"not binds tightest",
			"@1\nsolid_color(~hit & wash)",
			"@1\nsolid_color(~hit & wash)",
		},
		{
			"flat precedence chain needs no parens",
			"@1\nsolid_color(a > b | c & d ^ e)",
			"@1\nsolid_color(a > b | c & d ^ e)",
		},
		{
			"blocks joined by one blank line",
			"@1\nsolid_color(all)\n\n\n@2\nhold\n",
			"@1\nsolid_color(all)\n\n@2\nhold",
		},
	}
	for _, c := range cases {
		got := canonical(t, c.source)
		if got != c.want {
			t.Fatalf("%s:\nsource %q\n  got  %q\n  want %q", c.name, c.source, got, c.want)
		}
	}
}

// Serializing canonical text and reparsing it must be a fixed point.
func TestSerialize_RoundTripIdempotent(t *testing.T) {
	sources := []string{
		"@1\nsolid_color(all) color=#00FF00",
		"@1-16\nstrobe(hit & ~wash > all) rate=8 blend=screen",
		"@1\nsolid_color((hit | wash) & left)\nstrobe(all) rate=4\n\n@2\nhold",
		"@3\nsolid_color(a ^ (b ^ c))",
	}
	for _, src := range sources {
		first := canonical(t, src)
		second := canonical(t, first)
		if first != second {
			t.Fatalf("not idempotent for %q:\n first  %q\n second %q", src, first, second)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{4, "4"},
		{4.5, "4.5"},
		{0.25, "0.25"},
		{100, "100"},
	}
	for _, c := range cases {
		if got := formatNumber(c.in); got != c.want {
			t.Fatalf("formatNumber(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
