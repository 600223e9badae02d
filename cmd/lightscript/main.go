/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"lightscript/internal/domain"
	"lightscript/internal/dsl"
	"lightscript/internal/export"
	applog "lightscript/internal/log"
	"lightscript/internal/registry"
	"lightscript/internal/storage"
	"lightscript/internal/telemetry"
	"lightscript/internal/version"
)

func usage() {
	fmt.Println("LightScript — show script compiler")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lightscript version|-v|--version                                Show version")
	fmt.Println("  lightscript check <registry.json> <script>                      Parse and validate a script")
	fmt.Println("  lightscript fmt <registry.json> <script>                        Print the canonical form of a script")
	fmt.Println("  lightscript track <db> <name>                                   Create a track and print its id")
	fmt.Println("  lightscript import <db> <track-id> <script> [reg.json grid.json]  Import a script into a track")
	fmt.Println("  lightscript export <db> <track-id>                              Export a track's timeline as a script")
	fmt.Println("  lightscript cuesheet <registry.json> <grid.json> <script> <out.pdf>  Render a printable cue sheet")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	telemetry.InitDefault()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("LightScript — show script compiler")
			fmt.Println(version.String())
			return
		case "check":
			if len(args) < 4 {
				fmt.Println("check requires <registry.json> and <script>")
				usage()
				os.Exit(2)
			}
			reg, source := mustRegistry(args[2]), mustRead(args[3])
			result := dsl.Parse(source, reg)
			printDiagnostics(result, source)
			telemetry.Event("check", map[string]any{"ok": result.OK})
			telemetry.Flush(context.Background())
			if !result.OK {
				os.Exit(1)
			}
			fmt.Printf("OK: %d bar block(s)\n", len(result.Document.Bars))
			return
		case "fmt":
			if len(args) < 4 {
				fmt.Println("fmt requires <registry.json> and <script>")
				usage()
				os.Exit(2)
			}
			reg, source := mustRegistry(args[2]), mustRead(args[3])
			result := dsl.Parse(source, reg)
			printDiagnostics(result, source)
			if !result.OK {
				os.Exit(1)
			}
			fmt.Println(dsl.Serialize(result.Document, reg))
			return
		case "track":
			if len(args) < 4 {
				fmt.Println("track requires <db> and <name>")
				usage()
				os.Exit(2)
			}
			st := mustStore(args[2])
			defer closeStore(st)
			id, err := st.CreateTrack(context.Background(), args[3])
			if err != nil {
				fail(l, "create track failed", err)
			}
			fmt.Println(id)
			return
		case "import":
			if len(args) < 5 {
				fmt.Println("import requires <db>, <track-id> and <script>")
				usage()
				os.Exit(2)
			}
			st := mustStore(args[2])
			defer closeStore(st)
			trackID := mustTrackID(args[3])
			source := mustRead(args[4])
			ctx := context.Background()
			if len(args) >= 7 {
				seedStore(ctx, st, trackID, args[5], args[6], l)
			}
			result, err := st.ImportScript(ctx, trackID, source)
			if err != nil {
				fail(l, "import failed", err)
			}
			printDiagnostics(result, source)
			telemetry.Event("import", map[string]any{"ok": result.OK})
			telemetry.Flush(ctx)
			if !result.OK {
				os.Exit(1)
			}
			fmt.Printf("Imported %d bar block(s) into track %d\n", len(result.Document.Bars), trackID)
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <db> and <track-id>")
				usage()
				os.Exit(2)
			}
			st := mustStore(args[2])
			defer closeStore(st)
			text, err := st.ExportScript(context.Background(), mustTrackID(args[3]))
			if err != nil {
				fail(l, "export failed", err)
			}
			fmt.Println(text)
			return
		case "cuesheet":
			if len(args) < 6 {
				fmt.Println("cuesheet requires <registry.json>, <grid.json>, <script> and <out.pdf>")
				usage()
				os.Exit(2)
			}
			reg := mustRegistry(args[2])
			grid := mustGrid(args[3])
			source := mustRead(args[4])
			result := dsl.Parse(source, reg)
			printDiagnostics(result, source)
			if !result.OK {
				os.Exit(1)
			}
			if err := export.WriteCueSheet(result.Document, grid, reg, args[5], export.CueSheetOptions{}); err != nil {
				fail(l, "cue sheet failed", err)
			}
			fmt.Println("Wrote", args[5])
			return
		}
	}

	usage()
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func printDiagnostics(result dsl.ParseResult, source string) {
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, dsl.FormatWarning(w, source))
	}
	for _, e := range result.Errors {
		fmt.Fprintln(os.Stderr, dsl.FormatError(e, source))
	}
}

func mustRead(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return string(data)
}

func mustRegistry(path string) domain.PatternRegistry {
	reg, err := registry.Load(path)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return reg
}

func mustGrid(path string) domain.BeatGrid {
	var grid domain.BeatGrid
	data, err := os.ReadFile(path)
	if err == nil {
		err = json.Unmarshal(data, &grid)
	}
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return grid
}

func mustStore(path string) *storage.Store {
	st, err := storage.Open(path)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return st
}

func mustTrackID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fmt.Println("Error: invalid track id:", s)
		os.Exit(1)
	}
	return id
}

func closeStore(st *storage.Store) {
	if err := st.Close(); err != nil {
		fmt.Println("Error:", err)
	}
}

// seedStore loads a registry file and a beat grid file into the store so a
// fresh database can accept an import in one call.
func seedStore(ctx context.Context, st *storage.Store, trackID int64, regPath, gridPath string, l *slog.Logger) {
	reg := mustRegistry(regPath)
	for _, name := range reg.Names() {
		if err := st.SavePattern(ctx, reg[name]); err != nil {
			fail(l, "seed pattern failed", err)
		}
	}
	if err := st.SaveBeatGrid(ctx, trackID, mustGrid(gridPath)); err != nil {
		fail(l, "seed beat grid failed", err)
	}
}
