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
	"strconv"
	"strings"

	"lightscript/internal/domain"
)

// parser consumes the token stream and accumulates diagnostics instead of
// stopping at the first problem. Recovery after a block-level error skips
// forward to the next bar header so every valid block is still collected.
type parser struct {
	toks  []Token
	pos   int
	reg   domain.PatternRegistry
	errs  []Error
	warns []Warning
}

// Parse parses source against the given registry. It never fails hard: all
// problems are reported as structured diagnostics and the result carries a
// best-effort partial document when errors are present.
func Parse(source string, reg domain.PatternRegistry) ParseResult {
	p := &parser{toks: Tokenize(source), reg: reg}
	doc := p.parseDocument()
	if len(p.errs) > 0 {
		return ParseResult{Errors: p.errs, Warnings: p.warns, Partial: doc}
	}
	return ParseResult{OK: true, Document: doc, Warnings: p.warns}
}

func (p *parser) current() Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *parser) advance() Token {
	tok := p.current()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ TokenType) (Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		if tok.Type == TokenEOF {
			p.errorf(CodeUnexpectedEOF, tok.Span, "expected %s, found end of input", typ)
		} else {
			p.errorf(CodeUnexpectedToken, tok.Span, "expected %s, found %s", typ, tok.Type)
		}
		return tok, false
	}
	return p.advance(), true
}

func (p *parser) errorf(code Code, span Span, format string, args ...any) {
	p.errs = append(p.errs, Error{Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}

func (p *parser) warnf(code Code, span Span, format string, args ...any) {
	p.warns = append(p.warns, Warning{Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}

// skipLine advances past the rest of the current line, consuming its newline.
func (p *parser) skipLine() {
	for {
		switch p.current().Type {
		case TokenEOF:
			return
		case TokenNewline:
			p.advance()
			return
		default:
			p.advance()
		}
	}
}

// recover skips forward to the next bar header at the start of a line, or to
// end of input, so subsequent blocks can still be parsed.
func (p *parser) recover() {
	for p.current().Type != TokenEOF {
		if p.current().Type == TokenAt && (p.pos == 0 || p.toks[p.pos-1].Type == TokenNewline) {
			return
		}
		p.advance()
	}
}

// skipTrivia consumes newlines and comment lines between blocks.
func (p *parser) skipTrivia() {
	for {
		switch p.current().Type {
		case TokenNewline, TokenComment:
			p.advance()
		default:
			return
		}
	}
}

func (p *parser) parseDocument() *Document {
	doc := &Document{}
	seen := make(map[BarRange]Span)
	for {
		p.skipTrivia()
		tok := p.current()
		if tok.Type == TokenEOF {
			return doc
		}
		if tok.Type != TokenAt {
			p.errorf(CodeUnexpectedToken, tok.Span, "expected %s to start a bar block, found %s", TokenAt, tok.Type)
			p.recover()
			continue
		}
		block, ok := p.parseBarBlock()
		if !ok {
			p.recover()
			continue
		}
		if block == nil {
			continue // dropped, diagnostics already recorded
		}
		if _, dup := seen[block.Range]; dup {
			p.errorf(CodeDuplicateBarRange, block.Span, "bar range %s is already defined", rangeString(block.Range))
			continue
		}
		seen[block.Range] = block.Span
		doc.Bars = append(doc.Bars, block)
	}
}

// parseBarBlock parses one "@N"/"@N-M" header and its layer lines. The bool
// is false when the caller should resynchronize to the next header; a nil
// block with true means the block was consumed but dropped.
func (p *parser) parseBarBlock() (*BarBlock, bool) {
	at := p.advance() // '@'
	startTok, ok := p.expect(TokenNumber)
	if !ok {
		return nil, false
	}
	start, err := strconv.Atoi(startTok.Value)
	if err != nil {
		p.errorf(CodeUnexpectedToken, startTok.Span, "bar number must be an integer, found %q", startTok.Value)
		return nil, false
	}
	end := start
	headerSpan := joinSpans(at.Span, startTok.Span)
	if p.current().Type == TokenDash {
		p.advance()
		endTok, ok := p.expect(TokenNumber)
		if !ok {
			return nil, false
		}
		end, err = strconv.Atoi(endTok.Value)
		if err != nil {
			p.errorf(CodeUnexpectedToken, endTok.Span, "bar number must be an integer, found %q", endTok.Value)
			return nil, false
		}
		headerSpan = joinSpans(headerSpan, endTok.Span)
	}
	if start < 1 || end < start {
		p.errorf(CodeInvalidBarRange, headerSpan, "invalid bar range %s", rangeString(BarRange{Start: start, End: end}))
		return nil, false
	}
	switch p.current().Type {
	case TokenNewline:
		p.advance()
	case TokenEOF:
		p.errorf(CodeEmptyBarBlock, headerSpan, "bar block %s has no layers", rangeString(BarRange{Start: start, End: end}))
		return nil, true
	default:
		p.errorf(CodeUnexpectedToken, p.current().Span, "expected newline after bar header, found %s", p.current().Type)
		return nil, false
	}

	block := &BarBlock{Range: BarRange{Start: start, End: end}, Span: headerSpan}
	attempted := 0
layers:
	for {
		switch p.current().Type {
		case TokenEOF, TokenAt, TokenNewline:
			break layers // blank line, next header, or end of input
		case TokenComment:
			p.advance()
			if p.current().Type == TokenNewline {
				p.advance()
			}
		default:
			attempted++
			layer, ok := p.parseLayer()
			if ok && layer != nil {
				block.Layers = append(block.Layers, layer)
			}
			_ = ok // layer line fully consumed either way
		}
	}

	block.Layers = p.normalizeHolds(block.Layers)
	if len(block.Layers) == 0 {
		if attempted == 0 {
			p.errorf(CodeEmptyBarBlock, headerSpan, "bar block %s has no layers", rangeString(block.Range))
		}
		return nil, true
	}
	block.Span = joinSpans(headerSpan, layerSpan(block.Layers[len(block.Layers)-1]))
	return block, true
}

// normalizeHolds enforces the layer invariant: a block is either exactly one
// hold or pattern layers only. Holds mixed with patterns are dropped with an
// error; extra holds beyond the first are likewise dropped.
func (p *parser) normalizeHolds(layers []Layer) []Layer {
	var patterns []Layer
	var holds []*HoldLayer
	for _, l := range layers {
		if h, isHold := l.(*HoldLayer); isHold {
			holds = append(holds, h)
		} else {
			patterns = append(patterns, l)
		}
	}
	if len(holds) == 0 {
		return layers
	}
	if len(patterns) == 0 {
		for _, h := range holds[1:] {
			p.errorf(CodeUnexpectedToken, h.Span, "a bar block may contain only one 'hold'")
		}
		return []Layer{holds[0]}
	}
	for _, h := range holds {
		p.errorf(CodeUnexpectedToken, h.Span, "'hold' cannot be combined with pattern layers")
	}
	return patterns
}

// parseLayer parses one layer line, consuming through its newline. It
// returns (nil, false) when the layer was malformed and dropped.
func (p *parser) parseLayer() (Layer, bool) {
	tok := p.current()
	if tok.Type != TokenIdent {
		p.errorf(CodeUnexpectedToken, tok.Span, "expected a layer, found %s", tok.Type)
		p.skipLine()
		return nil, false
	}
	name := p.advance()
	if name.Value == "hold" && p.current().Type != TokenLParen && p.current().Type != TokenEquals {
		if !p.endLine() {
			return nil, false
		}
		return &HoldLayer{Span: name.Span}, true
	}

	def, known := p.reg[name.Value]
	if p.current().Type != TokenLParen {
		p.errorf(CodeMissingSelection, name.Span, "pattern %q is missing its (selection)", name.Value)
		p.skipLine()
		return nil, false
	}
	p.advance() // '('
	sel := p.parseTagExpr()
	if sel == nil {
		p.skipLine()
		return nil, false
	}
	closing, ok := p.expect(TokenRParen)
	if !ok {
		p.skipLine()
		return nil, false
	}

	layer := &PatternLayer{
		Pattern:   name.Value,
		Selection: sel,
		Blend:     domain.BlendReplace,
		Span:      joinSpans(name.Span, closing.Span),
	}
	for p.current().Type == TokenIdent {
		if !p.parseArg(layer, def, known) {
			return nil, false
		}
	}
	if !p.endLine() {
		return nil, false
	}
	if !known {
		e := Error{
			Code:    CodeUnknownPattern,
			Message: fmt.Sprintf("unknown pattern %q", name.Value),
			Span:    name.Span,
		}
		if s := closestName(p.reg, name.Value); s != "" {
			e.Hint = fmt.Sprintf("did you mean %q?", s)
		}
		p.errs = append(p.errs, e)
		return nil, false
	}
	if len(layer.Args) > 0 {
		layer.Span = joinSpans(layer.Span, layer.Args[len(layer.Args)-1].Span)
	}
	return layer, true
}

// parseArg parses one key=value pair onto layer. Returns false when the rest
// of the line had to be abandoned.
func (p *parser) parseArg(layer *PatternLayer, def domain.PatternDef, known bool) bool {
	keyTok := p.advance()
	if _, ok := p.expect(TokenEquals); !ok {
		p.skipLine()
		return false
	}
	valTok := p.current()
	var val ArgValue
	switch valTok.Type {
	case TokenHexColor:
		p.advance()
		val = ColorValue{Hex: valTok.Value}
	case TokenNumber:
		p.advance()
		f, _ := strconv.ParseFloat(valTok.Value, 64)
		val = NumberValue{Value: f}
	case TokenIdent:
		p.advance()
		val = IdentValue{Name: valTok.Value}
	case TokenComment:
		// '#' here means a color literal that didn't have exactly six hex
		// digits, so the lexer ate the rest of the line as a comment.
		p.errorf(CodeInvalidHexColor, valTok.Span, "color literal must be exactly 6 hex digits")
		p.skipLine()
		return false
	case TokenEOF:
		p.errorf(CodeUnexpectedEOF, valTok.Span, "expected a value for argument %q, found end of input", keyTok.Value)
		return false
	default:
		p.errorf(CodeUnexpectedToken, valTok.Span, "expected a value for argument %q, found %s", keyTok.Value, valTok.Type)
		p.skipLine()
		return false
	}

	argSpan := joinSpans(keyTok.Span, valTok.Span)
	if keyTok.Value == "blend" {
		ident, isIdent := val.(IdentValue)
		if !isIdent {
			p.errorf(CodeInvalidBlendMode, argSpan, "blend mode must be an identifier")
			return true
		}
		mode, valid := domain.ParseBlendMode(ident.Name)
		if !valid {
			p.errorf(CodeInvalidBlendMode, argSpan, "invalid blend mode %q", ident.Name)
			return true
		}
		layer.Blend = mode
		return true
	}

	if known {
		if argDef, okArg := def.Arg(keyTok.Value); okArg {
			if !valueMatchesType(val, argDef.Type) {
				p.errorf(CodeTypeMismatch, argSpan, "argument %q expects a %s value", keyTok.Value, strings.ToLower(string(argDef.Type)))
			}
		} else {
			p.warnf(CodeUnknownArg, argSpan, "pattern %q has no argument %q", layer.Pattern, keyTok.Value)
		}
	}
	layer.Args = append(layer.Args, Arg{Key: keyTok.Value, Value: val, Span: argSpan})
	return true
}

// endLine consumes an optional trailing comment and the line's newline.
func (p *parser) endLine() bool {
	if p.current().Type == TokenComment {
		p.advance()
	}
	switch p.current().Type {
	case TokenNewline:
		p.advance()
		return true
	case TokenEOF:
		return true
	default:
		p.errorf(CodeUnexpectedToken, p.current().Span, "unexpected %s at end of layer", p.current().Type)
		p.skipLine()
		return false
	}
}

func valueMatchesType(val ArgValue, typ domain.ArgType) bool {
	switch typ {
	case domain.ArgColor:
		_, ok := val.(ColorValue)
		return ok
	case domain.ArgScalar:
		_, ok := val.(NumberValue)
		return ok
	case domain.ArgSelection:
		_, ok := val.(IdentValue)
		return ok
	}
	return true
}

func layerSpan(l Layer) Span {
	switch n := l.(type) {
	case *PatternLayer:
		return n.Span
	case *HoldLayer:
		return n.Span
	}
	return Span{}
}

func rangeString(r BarRange) string {
	if r.Start == r.End {
		return fmt.Sprintf("@%d", r.Start)
	}
	return fmt.Sprintf("@%d-%d", r.Start, r.End)
}

// closestName suggests the registry name nearest to the misspelled one, if
// any name is within an edit distance of two.
func closestName(reg domain.PatternRegistry, name string) string {
	best := ""
	bestDist := 3
	for candidate := range reg {
		d := editDistance(name, candidate)
		if d < bestDist || (d == bestDist && best != "" && candidate < best) {
			best = candidate
			bestDist = d
		}
	}
	return best
}

func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
