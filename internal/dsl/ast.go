/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dsl

import "lightscript/internal/domain"

// The AST is an immutable value tree created fresh per parse. The sum types
// (TagExpr, ArgValue, Layer) are closed interfaces dispatched with exhaustive
// type switches; no node is shared and no node forms a cycle.

// TagExpr is a boolean fixture-selection formula. Precedence, loosest to
// tightest: fallback, or, xor, and, not, primary/group.
type TagExpr interface{ isTagExpr() }

// TagName selects fixtures carrying a single tag.
type TagName struct {
	Name string
	Span Span
}

// TagNot inverts its operand.
type TagNot struct {
	Operand TagExpr
	Span    Span
}

// TagAnd selects the intersection of both operands.
type TagAnd struct {
	Left, Right TagExpr
	Span        Span
}

// TagOr selects the union of both operands.
type TagOr struct {
	Left, Right TagExpr
	Span        Span
}

// TagXor selects fixtures matched by exactly one operand.
type TagXor struct {
	Left, Right TagExpr
	Span        Span
}

// TagFallback selects the left operand, or the right one when the left
// matches nothing.
type TagFallback struct {
	Left, Right TagExpr
	Span        Span
}

// TagGroup is an explicitly parenthesized sub-expression. It is preserved as
// its own node so author intent survives a parse/serialize round trip.
type TagGroup struct {
	Inner TagExpr
	Span  Span
}

func (*TagName) isTagExpr()     {}
func (*TagNot) isTagExpr()      {}
func (*TagAnd) isTagExpr()      {}
func (*TagOr) isTagExpr()       {}
func (*TagXor) isTagExpr()      {}
func (*TagFallback) isTagExpr() {}
func (*TagGroup) isTagExpr()    {}

// ArgValue is a typed argument value.
type ArgValue interface{ isArgValue() }

// ColorValue holds six hex digits without the leading '#'. Case is preserved
// from the source; comparisons are case-insensitive.
type ColorValue struct{ Hex string }

// NumberValue holds an unsigned numeric literal.
type NumberValue struct{ Value float64 }

// IdentValue holds a bare identifier value.
type IdentValue struct{ Name string }

func (ColorValue) isArgValue()  {}
func (NumberValue) isArgValue() {}
func (IdentValue) isArgValue()  {}

// Arg is one key=value pair on a pattern layer.
type Arg struct {
	Key   string
	Value ArgValue
	Span  Span
}

// Layer is either a pattern invocation or a hold marker. A bar block's layer
// list is either exactly one HoldLayer or zero or more PatternLayers, never
// a mix.
type Layer interface{ isLayer() }

// PatternLayer invokes a named pattern on the fixtures its selection matches.
type PatternLayer struct {
	Pattern   string
	Selection TagExpr
	Args      []Arg
	Blend     domain.BlendMode
	Span      Span
}

// HoldLayer repeats the layer list of the last non-hold block.
type HoldLayer struct{ Span Span }

func (*PatternLayer) isLayer() {}
func (*HoldLayer) isLayer()    {}

// BarRange is an inclusive 1-based range of bars with Start <= End.
type BarRange struct {
	Start int
	End   int
}

// BarBlock is one "@N" or "@N-M" block and its layers.
type BarBlock struct {
	Range  BarRange
	Layers []Layer
	Span   Span
}

// Document is a parsed show script. Blocks appear in source order; the
// parser accepts overlapping or unsorted ranges (the converter only ever
// produces non-overlapping ones).
type Document struct {
	Bars []*BarBlock
}
