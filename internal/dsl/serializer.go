/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dsl

import (
	"strconv"
	"strings"

	"lightscript/internal/domain"
)

// Operator precedence for canonical printing. A sub-expression is wrapped in
// parentheses only when its own precedence is strictly lower than its
// parent's, which is necessary and sufficient to preserve meaning, so the
// output carries minimal parenthesization.
const (
	precFallback = 1
	precOr       = 2
	precXor      = 3
	precAnd      = 4
	precNot      = 5
)

// Serialize renders a document to its canonical source text. It is pure,
// deterministic and total over well-formed documents: bar blocks separated
// by one blank line, default-valued arguments omitted, registry-unknown
// arguments preserved, blend emitted only when it is not "replace".
func Serialize(doc *Document, reg domain.PatternRegistry) string {
	blocks := make([]string, 0, len(doc.Bars))
	for _, b := range doc.Bars {
		blocks = append(blocks, serializeBlock(b, reg))
	}
	return strings.Join(blocks, "\n\n")
}

func serializeBlock(b *BarBlock, reg domain.PatternRegistry) string {
	var sb strings.Builder
	sb.WriteString(rangeString(b.Range))
	for _, l := range b.Layers {
		sb.WriteByte('\n')
		sb.WriteString(LayerString(l, reg))
	}
	return sb.String()
}

// LayerString renders one layer to its canonical single-line form. Arguments
// are emitted in the pattern definition's declared order with default-valued
// ones elided; arguments the registry does not know are appended afterward
// in their original order, never dropped.
func LayerString(l Layer, reg domain.PatternRegistry) string {
	pat, ok := l.(*PatternLayer)
	if !ok {
		return "hold"
	}
	var sb strings.Builder
	sb.WriteString(pat.Pattern)
	sb.WriteByte('(')
	writeTagExpr(&sb, pat.Selection, precFallback)
	sb.WriteByte(')')

	def, known := reg[pat.Pattern]
	emitted := make(map[int]bool, len(pat.Args))
	if known {
		for _, argDef := range def.Args {
			if argDef.Type == domain.ArgSelection {
				continue // carried by the selection itself
			}
			idx := argIndex(pat.Args, argDef.Name)
			if idx < 0 {
				continue
			}
			emitted[idx] = true
			if equalsDefault(argDef, pat.Args[idx].Value) {
				continue
			}
			writeArg(&sb, pat.Args[idx])
		}
	}
	for i, arg := range pat.Args {
		if emitted[i] {
			continue
		}
		if known {
			if _, declared := def.Arg(arg.Key); declared {
				continue // declared but Selection-typed
			}
		}
		writeArg(&sb, arg)
	}

	if pat.Blend != domain.BlendReplace && pat.Blend != "" {
		sb.WriteString(" blend=")
		sb.WriteString(string(pat.Blend))
	}
	return sb.String()
}

func argIndex(args []Arg, key string) int {
	for i, a := range args {
		if a.Key == key {
			return i
		}
	}
	return -1
}

func writeArg(sb *strings.Builder, a Arg) {
	sb.WriteByte(' ')
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	sb.WriteString(valueString(a.Value))
}

func valueString(v ArgValue) string {
	switch n := v.(type) {
	case ColorValue:
		return "#" + strings.ToLower(n.Hex)
	case NumberValue:
		return formatNumber(n.Value)
	case IdentValue:
		return n.Name
	}
	return ""
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// equalsDefault reports whether an argument value equals its declared
// default; such arguments are elided from output. Color comparison is
// case-insensitive.
func equalsDefault(def domain.PatternArgDef, v ArgValue) bool {
	switch n := v.(type) {
	case ColorValue:
		hex, ok := def.DefaultHex()
		return ok && strings.EqualFold(hex, n.Hex)
	case NumberValue:
		f, ok := def.DefaultScalar()
		return ok && f == n.Value
	case IdentValue:
		s, ok := def.Default.(string)
		return ok && s == n.Name
	}
	return false
}

func writeTagExpr(sb *strings.Builder, e TagExpr, parent int) {
	switch n := e.(type) {
	case *TagName:
		sb.WriteString(n.Name)
	case *TagGroup:
		// Transparent for canonical printing: parentheses reappear exactly
		// where precedence requires them.
		writeTagExpr(sb, n.Inner, parent)
	case *TagNot:
		// '~' binds tighter than every binary operator, so the node itself
		// never needs parentheses; only a looser operand does.
		sb.WriteByte('~')
		writeTagExpr(sb, n.Operand, precNot)
	case *TagAnd:
		writeBinary(sb, n.Left, n.Right, "&", precAnd, parent)
	case *TagXor:
		writeBinary(sb, n.Left, n.Right, "^", precXor, parent)
	case *TagOr:
		writeBinary(sb, n.Left, n.Right, "|", precOr, parent)
	case *TagFallback:
		writeBinary(sb, n.Left, n.Right, ">", precFallback, parent)
	}
}

func writeBinary(sb *strings.Builder, left, right TagExpr, op string, own, parent int) {
	if own < parent {
		sb.WriteByte('(')
	}
	writeTagExpr(sb, left, own)
	sb.WriteByte(' ')
	sb.WriteString(op)
	sb.WriteByte(' ')
	// Left-associative: a right operand at the same level needs parentheses.
	writeTagExpr(sb, right, own+1)
	if own < parent {
		sb.WriteByte(')')
	}
}
