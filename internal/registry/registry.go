/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package registry loads host-supplied pattern metadata from JSON into the
// immutable domain.PatternRegistry the DSL pipeline consumes. Documents are
// validated against an embedded JSON Schema before decoding so malformed
// host input fails with a readable message instead of a zero-valued
// registry.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"lightscript/internal/domain"
)

const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["patterns"],
  "properties": {
    "patterns": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "args"],
        "properties": {
          "id": {"type": "integer"},
          "name": {"type": "string", "pattern": "^[A-Za-z_][A-Za-z0-9_]*$"},
          "args": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "name", "type"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "name": {"type": "string", "pattern": "^[A-Za-z_][A-Za-z0-9_]*$"},
                "type": {"enum": ["Color", "Scalar", "Selection"]},
                "default": {}
              }
            }
          }
        }
      }
    }
  }
}`

type patternFile struct {
	Patterns []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Args []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Type    string `json:"type"`
			Default any    `json:"default"`
		} `json:"args"`
	} `json:"patterns"`
}

// Load reads and parses a pattern registry file.
func Load(path string) (domain.PatternRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	return reg, nil
}

// Parse validates and decodes a registry JSON document.
func Parse(data []byte) (domain.PatternRegistry, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate registry: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid registry: %s", strings.Join(msgs, "; "))
	}

	var pf patternFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}

	reg := make(domain.PatternRegistry, len(pf.Patterns))
	for _, p := range pf.Patterns {
		if _, dup := reg[p.Name]; dup {
			return nil, fmt.Errorf("invalid registry: duplicate pattern name %q", p.Name)
		}
		def := domain.PatternDef{ID: p.ID, Name: p.Name}
		for _, a := range p.Args {
			def.Args = append(def.Args, domain.PatternArgDef{
				ID:      a.ID,
				Name:    a.Name,
				Type:    domain.ArgType(a.Type),
				Default: normalizeDefault(domain.ArgType(a.Type), a.Default),
			})
		}
		reg[p.Name] = def
	}
	return reg, nil
}

// normalizeDefault brings color defaults to lower-case "#rrggbb" form so the
// serializer's default elision compares consistently; other types pass
// through as decoded.
func normalizeDefault(typ domain.ArgType, def any) any {
	if typ != domain.ArgColor || def == nil {
		return def
	}
	switch v := def.(type) {
	case string:
		if c, err := domain.RGBFromHex(v); err == nil {
			return "#" + c.Hex()
		}
	case map[string]any:
		if c, ok := domain.RGBFromMap(v); ok {
			return "#" + c.Hex()
		}
	}
	return def
}
