/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lightscript/internal/domain"
)

const validRegistry = `{
  "patterns": [
    {
      "id": 1,
      "name": "solid_color",
      "args": [
        {"id": "sel", "name": "selection", "type": "Selection", "default": "all"},
        {"id": "col", "name": "color", "type": "Color", "default": "#FFAA00"},
        {"id": "int", "name": "intensity", "type": "Scalar", "default": 1}
      ]
    },
    {
      "id": 2,
      "name": "strobe",
      "args": [
        {"id": "rate", "name": "rate", "type": "Scalar"}
      ]
    }
  ]
}`

func TestParse_Valid(t *testing.T) {
	reg, err := Parse([]byte(validRegistry))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reg) != 2 {
		t.Fatalf("pattern count = %d, want 2", len(reg))
	}
	def := reg["solid_color"]
	if def.ID != 1 || len(def.Args) != 3 {
		t.Fatalf("solid_color = %+v", def)
	}
	if def.Args[0].Type != domain.ArgSelection || def.Args[1].Type != domain.ArgColor {
		t.Fatalf("arg types = %+v", def.Args)
	}
	// color defaults are normalized to lower-case "#rrggbb"
	if def.Args[1].Default != "#ffaa00" {
		t.Fatalf("color default = %v", def.Args[1].Default)
	}
	if f, ok := def.Args[2].DefaultScalar(); !ok || f != 1 {
		t.Fatalf("scalar default = %v (%v)", f, ok)
	}
	if _, ok := reg["strobe"].Args[0].DefaultScalar(); ok {
		t.Fatal("rate has no default")
	}
}

func TestParse_SchemaViolations(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"missing patterns", `{}`},
		{"pattern without name", `{"patterns": [{"id": 1, "args": []}]}`},
		{"bad name", `{"patterns": [{"id": 1, "name": "2fast", "args": []}]}`},
		{"bad arg type", `{"patterns": [{"id": 1, "name": "x", "args": [{"id": "a", "name": "a", "type": "Vector"}]}]}`},
		{"non-integer id", `{"patterns": [{"id": "one", "name": "x", "args": []}]}`},
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c.json)); err == nil {
			t.Fatalf("%s: expected an error", c.name)
		}
	}
}

func TestParse_DuplicateName(t *testing.T) {
	data := `{"patterns": [
      {"id": 1, "name": "wash", "args": []},
      {"id": 2, "name": "wash", "args": []}
    ]}`
	_, err := Parse([]byte(data))
	if err == nil || !strings.Contains(err.Error(), "duplicate pattern name") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.json")
	if err := os.WriteFile(path, []byte(validRegistry), 0o600); err != nil {
		t.Fatal(err)
	}
	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := reg["strobe"]; !ok {
		t.Fatalf("registry = %+v", reg)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
