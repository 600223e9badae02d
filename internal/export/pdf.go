/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders printable artifacts from a parsed show script.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"lightscript/internal/domain"
	"lightscript/internal/dsl"
)

// CueSheetOptions controls cue sheet rendering.
// Units are points (pt). Built-in Helvetica keeps text vector without
// embedding fonts.
type CueSheetOptions struct {
	Title string // printed in the page header; defaults to "Cue Sheet"
}

// Page geometry for A4 portrait in points.
const (
	pageW      = 595.28
	pageH      = 841.89
	marginL    = 48.0
	marginT    = 56.0
	marginB    = 48.0
	lineH      = 14.0
	colBars    = marginL
	colTime    = marginL + 90
	colLayers  = marginL + 210
	headerSize = 16.0
	bodySize   = 10.0
)

// WriteCueSheet renders one row per bar block of the script: the bar range,
// the absolute start/end times from the beat grid, and the block's layer
// lines in canonical form. The output lands at outPath; relative paths are
// created as given.
func WriteCueSheet(doc *dsl.Document, grid domain.BeatGrid, reg domain.PatternRegistry, outPath string, opt CueSheetOptions) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}
	title := opt.Title
	if title == "" {
		title = "Cue Sheet"
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageW, Ht: pageH},
		OrientationStr: "",
	})
	pdf.SetTitle(title, false)
	pdf.SetAuthor("LightScript", false)

	y := addCuePage(pdf, title)
	for _, bar := range doc.Bars {
		lines := blockLines(bar, reg)
		needed := lineH * float64(max(len(lines), 1))
		if y+needed > pageH-marginB {
			y = addCuePage(pdf, title)
		}

		pdf.SetFont("Helvetica", "B", bodySize)
		pdf.Text(colBars, y, barRangeLabel(bar.Range))

		start := dsl.BarStartTime(grid, bar.Range.Start)
		end := dsl.BarStartTime(grid, bar.Range.End+1)
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.Text(colTime, y, fmt.Sprintf("%s – %s", clock(start), clock(end)))

		ly := y
		for _, line := range lines {
			pdf.Text(colLayers, ly, line)
			ly += lineH
		}
		y += needed + lineH/2
	}

	dir := filepath.Dir(outPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func addCuePage(pdf *gofpdf.Fpdf, title string) float64 {
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})
	pdf.SetFont("Helvetica", "B", headerSize)
	pdf.Text(marginL, marginT, title)
	pdf.SetFont("Helvetica", "B", bodySize)
	y := marginT + 2*lineH
	pdf.Text(colBars, y, "Bars")
	pdf.Text(colTime, y, "Time")
	pdf.Text(colLayers, y, "Layers")
	pdf.SetLineWidth(0.4)
	pdf.Line(marginL, y+4, pageW-marginL, y+4)
	return y + lineH*1.5
}

func blockLines(bar *dsl.BarBlock, reg domain.PatternRegistry) []string {
	var out []string
	for _, layer := range bar.Layers {
		switch layer.(type) {
		case *dsl.HoldLayer:
			out = append(out, "hold")
		case *dsl.PatternLayer:
			out = append(out, dsl.LayerString(layer, reg))
		}
	}
	return out
}

func barRangeLabel(r dsl.BarRange) string {
	if r.Start == r.End {
		return fmt.Sprintf("@%d", r.Start)
	}
	return fmt.Sprintf("@%d-%d", r.Start, r.End)
}

// clock formats seconds as m:ss.t for the time column.
func clock(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	m := int(sec) / 60
	rest := sec - float64(m)*60
	return fmt.Sprintf("%d:%04.1f", m, rest)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
