/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dsl

import "strings"

// Tag-expression parsing is shared between the main parser (inside a
// pattern's parentheses) and the converter (selection strings stored on
// annotations), so the operator grammar cannot drift between the two.
// Binary operators are left-associative within a level; '~' is
// right-associative and binds tighter than every binary operator.

// ParseSelection parses a standalone selection-expression string as stored in
// an annotation's Selection argument. Input is lower-cased first (stored
// expressions are case-insensitive); empty or unrecognizable text degrades to
// tag("all") rather than failing, since by the time conversion runs the
// document has already passed validation.
func ParseSelection(expr string) TagExpr {
	trimmed := strings.TrimSpace(strings.ToLower(expr))
	if trimmed == "" {
		return &TagName{Name: "all"}
	}
	p := &parser{toks: Tokenize(trimmed)}
	e := p.parseTagExpr()
	if e == nil || len(p.errs) > 0 || p.current().Type != TokenEOF {
		return &TagName{Name: "all"}
	}
	return e
}

// SelectionString renders a TagExpr to its canonical text form, with minimal
// parenthesization. It is the inverse of ParseSelection modulo grouping.
func SelectionString(e TagExpr) string {
	var b strings.Builder
	writeTagExpr(&b, e, precFallback)
	return b.String()
}

func (p *parser) parseTagExpr() TagExpr {
	return p.parseFallback()
}

func (p *parser) parseFallback() TagExpr {
	left := p.parseOr()
	for left != nil && p.current().Type == TokenFallback {
		op := p.advance()
		right := p.parseOr()
		if right == nil {
			return nil
		}
		left = &TagFallback{Left: left, Right: right, Span: joinSpans(spanOf(left), spanOf(right), op.Span)}
	}
	return left
}

func (p *parser) parseOr() TagExpr {
	left := p.parseXor()
	for left != nil && p.current().Type == TokenOr {
		op := p.advance()
		right := p.parseXor()
		if right == nil {
			return nil
		}
		left = &TagOr{Left: left, Right: right, Span: joinSpans(spanOf(left), spanOf(right), op.Span)}
	}
	return left
}

func (p *parser) parseXor() TagExpr {
	left := p.parseAnd()
	for left != nil && p.current().Type == TokenXor {
		op := p.advance()
		right := p.parseAnd()
		if right == nil {
			return nil
		}
		left = &TagXor{Left: left, Right: right, Span: joinSpans(spanOf(left), spanOf(right), op.Span)}
	}
	return left
}

func (p *parser) parseAnd() TagExpr {
	left := p.parseUnary()
	for left != nil && p.current().Type == TokenAnd {
		op := p.advance()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = &TagAnd{Left: left, Right: right, Span: joinSpans(spanOf(left), spanOf(right), op.Span)}
	}
	return left
}

func (p *parser) parseUnary() TagExpr {
	if p.current().Type == TokenNot {
		op := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &TagNot{Operand: operand, Span: joinSpans(op.Span, spanOf(operand))}
	}
	return p.parseTagPrimary()
}

func (p *parser) parseTagPrimary() TagExpr {
	tok := p.current()
	switch tok.Type {
	case TokenIdent:
		p.advance()
		return &TagName{Name: tok.Value, Span: tok.Span}
	case TokenLParen:
		open := p.advance()
		inner := p.parseTagExpr()
		if inner == nil {
			return nil
		}
		closing, ok := p.expect(TokenRParen)
		if !ok {
			return nil
		}
		return &TagGroup{Inner: inner, Span: joinSpans(open.Span, closing.Span)}
	case TokenEOF, TokenNewline:
		p.errorf(CodeUnexpectedEOF, tok.Span, "selection expression ended unexpectedly")
		return nil
	default:
		p.errorf(CodeUnexpectedToken, tok.Span, "unexpected %s in selection expression", tok.Type)
		return nil
	}
}

// spanOf returns the span carried by any TagExpr node.
func spanOf(e TagExpr) Span {
	switch n := e.(type) {
	case *TagName:
		return n.Span
	case *TagNot:
		return n.Span
	case *TagAnd:
		return n.Span
	case *TagOr:
		return n.Span
	case *TagXor:
		return n.Span
	case *TagFallback:
		return n.Span
	case *TagGroup:
		return n.Span
	}
	return Span{}
}

// joinSpans returns the smallest span covering all inputs.
func joinSpans(spans ...Span) Span {
	out := spans[0]
	for _, s := range spans[1:] {
		if s.Start.Offset < out.Start.Offset {
			out.Start = s.Start
		}
		if s.End.Offset > out.End.Offset {
			out.End = s.End
		}
	}
	return out
}
