/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dsl

import (
	"math"
	"sort"
	"strings"

	"lightscript/internal/domain"
)

// The converter bridges the timeline model and the DSL in both directions.
// It is total: annotations the registry cannot explain and expressions that
// fail to parse are skipped or degraded silently, because by the time
// conversion runs the document has already passed (or deliberately bypassed)
// parser validation.

// BarStartTime returns the absolute start time in seconds of the 1-based
// bar. Past the last known downbeat it extrapolates linearly using the last
// observed bar duration, or 60/bpm × beatsPerBar when fewer than two
// downbeats exist.
func BarStartTime(grid domain.BeatGrid, bar int) float64 {
	db := grid.Downbeats
	n := len(db)
	if bar >= 1 && bar <= n {
		return db[bar-1]
	}
	var dur float64
	if n >= 2 {
		dur = db[n-1] - db[n-2]
	} else if grid.BPM > 0 {
		dur = 60 / grid.BPM * float64(grid.BeatsPerBar)
	}
	if n == 0 {
		return float64(bar-1) * dur
	}
	return db[n-1] + float64(bar-n)*dur
}

// AnnotationsToDSL converts a track's annotations to canonical DSL text.
// Runs of consecutive bars with structurally equal layer content merge into
// one bar range; a range repeating the previously emitted content collapses
// to a single hold, even across a gap. Bars no annotation overlaps are not
// emitted at all. Returns "" when there are no annotations or no bars.
func AnnotationsToDSL(anns []domain.Annotation, grid domain.BeatGrid, reg domain.PatternRegistry) string {
	total := grid.TotalBars()
	if len(anns) == 0 || total == 0 {
		return ""
	}

	type run struct {
		start, end int
		layers     []Layer
		key        string
	}
	var runs []run
	open := -1 // index into runs of the run covering the previous bar
	for bar := 1; bar <= total; bar++ {
		barStart := grid.Downbeats[bar-1]
		barEnd := math.Inf(1)
		if bar < total {
			barEnd = grid.Downbeats[bar]
		}
		layers := barLayers(anns, barStart, barEnd, reg)
		if len(layers) == 0 {
			open = -1
			continue
		}
		key := layersKey(layers, reg)
		if open >= 0 && runs[open].key == key {
			runs[open].end = bar
			continue
		}
		runs = append(runs, run{start: bar, end: bar, layers: layers, key: key})
		open = len(runs) - 1
	}

	doc := &Document{}
	prevKey := ""
	for _, r := range runs {
		block := &BarBlock{Range: BarRange{Start: r.start, End: r.end}}
		if prevKey != "" && r.key == prevKey {
			block.Layers = []Layer{&HoldLayer{}}
		} else {
			block.Layers = r.layers
		}
		prevKey = r.key
		doc.Bars = append(doc.Bars, block)
	}
	return Serialize(doc, reg)
}

// barLayers maps the annotations overlapping [barStart, barEnd) to pattern
// layers ordered by ascending z-index. Annotations whose pattern id the
// registry does not know are skipped.
func barLayers(anns []domain.Annotation, barStart, barEnd float64, reg domain.PatternRegistry) []Layer {
	var overlapping []domain.Annotation
	for _, a := range anns {
		if a.StartTime < barEnd && a.EndTime > barStart {
			overlapping = append(overlapping, a)
		}
	}
	sort.SliceStable(overlapping, func(i, j int) bool {
		return overlapping[i].ZIndex < overlapping[j].ZIndex
	})

	layers := make([]Layer, 0, len(overlapping))
	for _, a := range overlapping {
		def, ok := reg.ByID(a.PatternID)
		if !ok {
			continue
		}
		layer := &PatternLayer{
			Pattern:   def.Name,
			Selection: &TagName{Name: "all"},
			Blend:     blendOrReplace(a.BlendMode),
		}
		if selDef, has := def.SelectionArg(); has {
			layer.Selection = ParseSelection(selectionExpression(a.Args[selDef.ID]))
		}
		for _, ad := range def.Args {
			if ad.Type == domain.ArgSelection {
				continue
			}
			raw, present := a.Args[ad.ID]
			if !present {
				continue
			}
			switch ad.Type {
			case domain.ArgColor:
				if hex, ok := hexFromAny(raw); ok {
					layer.Args = append(layer.Args, Arg{Key: ad.Name, Value: ColorValue{Hex: hex}})
				}
			case domain.ArgScalar:
				if f, ok := scalarFromAny(raw); ok {
					layer.Args = append(layer.Args, Arg{Key: ad.Name, Value: NumberValue{Value: f}})
				}
			}
		}
		layers = append(layers, layer)
	}
	return layers
}

// layersKey is the structural-equality key of a layer list: same patterns,
// same blends, same canonical selections, same ordered args with equal
// values give the same key.
func layersKey(layers []Layer, reg domain.PatternRegistry) string {
	lines := make([]string, len(layers))
	for i, l := range layers {
		lines[i] = LayerString(l, reg)
	}
	return strings.Join(lines, "\n")
}

// DSLToAnnotations converts a parsed document back to timeline annotations.
// Hold blocks substitute the effective layers of the last non-hold block in
// document order; a hold with no prior state yields nothing. Unknown pattern
// names are skipped silently, having been reported by the parser already.
func DSLToAnnotations(doc *Document, grid domain.BeatGrid, reg domain.PatternRegistry) []domain.Annotation {
	var out []domain.Annotation
	var prev []*PatternLayer
	for _, block := range doc.Bars {
		var layers []*PatternLayer
		if isHoldBlock(block.Layers) {
			if prev == nil {
				continue
			}
			layers = prev
		} else {
			layers = patternLayers(block.Layers)
			if len(layers) == 0 {
				continue
			}
			prev = layers
		}

		start := BarStartTime(grid, block.Range.Start)
		end := BarStartTime(grid, block.Range.End+1)
		for z, layer := range layers {
			def, ok := reg[layer.Pattern]
			if !ok {
				continue
			}
			out = append(out, domain.Annotation{
				PatternID: def.ID,
				StartTime: start,
				EndTime:   end,
				ZIndex:    z,
				BlendMode: blendOrReplace(layer.Blend),
				Args:      annotationArgs(layer, def),
			})
		}
	}
	return out
}

// annotationArgs resolves every declared argument of def for the layer: an
// explicit DSL value converts to its external representation, the Selection
// argument re-serializes the parsed expression, anything else falls back to
// the definition's default.
func annotationArgs(layer *PatternLayer, def domain.PatternDef) map[string]any {
	args := make(map[string]any, len(def.Args))
	for _, ad := range def.Args {
		if ad.Type == domain.ArgSelection {
			args[ad.ID] = map[string]any{
				"expression":       SelectionString(layer.Selection),
				"spatialReference": "global",
			}
			continue
		}
		if idx := argIndex(layer.Args, ad.Name); idx >= 0 {
			args[ad.ID] = externalValue(layer.Args[idx].Value)
			continue
		}
		if ad.Default != nil {
			args[ad.ID] = ad.Default
		}
	}
	return args
}

func externalValue(v ArgValue) any {
	switch n := v.(type) {
	case ColorValue:
		if c, err := domain.RGBFromHex(n.Hex); err == nil {
			return map[string]any{"r": float64(c.R), "g": float64(c.G), "b": float64(c.B)}
		}
		return nil
	case NumberValue:
		return n.Value
	case IdentValue:
		return n.Name
	}
	return nil
}

func isHoldBlock(layers []Layer) bool {
	if len(layers) != 1 {
		return false
	}
	_, ok := layers[0].(*HoldLayer)
	return ok
}

func patternLayers(layers []Layer) []*PatternLayer {
	out := make([]*PatternLayer, 0, len(layers))
	for _, l := range layers {
		if p, ok := l.(*PatternLayer); ok {
			out = append(out, p)
		}
	}
	return out
}

func blendOrReplace(b domain.BlendMode) domain.BlendMode {
	if b == "" {
		return domain.BlendReplace
	}
	return b
}

// selectionExpression extracts the expression text from an annotation's
// Selection argument value, which is stored as {expression, spatialReference}
// but tolerated as a bare string.
func selectionExpression(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["expression"].(string); ok {
			return s
		}
	}
	return ""
}

func hexFromAny(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		c, err := domain.RGBFromHex(v)
		if err != nil {
			return "", false
		}
		return c.Hex(), true
	case domain.RGB:
		return v.Hex(), true
	case map[string]any:
		c, ok := domain.RGBFromMap(v)
		if !ok {
			return "", false
		}
		return c.Hex(), true
	}
	return "", false
}

func scalarFromAny(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
