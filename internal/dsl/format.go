/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dsl

import (
	"fmt"
	"strings"
)

// FormatError renders a diagnostic against its source as a human-readable,
// caret-annotated message. Pure; intended for direct display only.
func FormatError(e Error, source string) string {
	return renderDiagnostic("error", string(e.Code), e.Message, e.Span, e.Hint, source)
}

// FormatWarning renders a warning the same way FormatError renders an error.
func FormatWarning(w Warning, source string) string {
	return renderDiagnostic("warning", string(w.Code), w.Message, w.Span, "", source)
}

func renderDiagnostic(severity, code, message string, span Span, hint, source string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s[%s]: %s\n", severity, code, message)

	line, ok := sourceLine(source, span.Start.Line)
	if ok {
		lineNum := fmt.Sprintf("%d", span.Start.Line)
		gutter := strings.Repeat(" ", len(lineNum))
		fmt.Fprintf(&sb, " %s | %s\n", lineNum, line)

		// Caret underline from the start column to the end column, clamped
		// to the line when the span crosses lines.
		start := span.Start.Column
		if start > len(line) {
			start = len(line)
		}
		end := len(line)
		if span.End.Line == span.Start.Line && span.End.Column < end {
			end = span.End.Column
		}
		width := end - start
		if width < 1 {
			width = 1
		}
		fmt.Fprintf(&sb, " %s | %s%s\n", gutter, strings.Repeat(" ", start), strings.Repeat("^", width))
	} else {
		fmt.Fprintf(&sb, " --> %d:%d\n", span.Start.Line, span.Start.Column)
	}

	if hint != "" {
		fmt.Fprintf(&sb, "hint: %s\n", hint)
	}
	return sb.String()
}

// sourceLine returns the 1-based line from source without its line ending.
func sourceLine(source string, line int) (string, bool) {
	if line < 1 {
		return "", false
	}
	rest := source
	for i := 1; ; i++ {
		idx := strings.IndexAny(rest, "\r\n")
		var cur string
		if idx < 0 {
			cur = rest
		} else {
			cur = rest[:idx]
		}
		if i == line {
			return cur, true
		}
		if idx < 0 {
			return "", false
		}
		if rest[idx] == '\r' && idx+1 < len(rest) && rest[idx+1] == '\n' {
			idx++
		}
		rest = rest[idx+1:]
	}
}
