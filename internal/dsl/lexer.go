/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dsl

import "unicode/utf8"

// lexer performs a single left-to-right scan over the source, tracking line,
// column and byte offset. It never fails: characters that belong to no token
// are skipped and the parser surfaces any downstream problem.
type lexer struct {
	src    string
	pos    int // byte offset of the next unread character
	line   int // 1-based
	col    int // 0-based
	tokens []Token
}

// Tokenize converts source text into a flat token stream. Newlines are
// preserved as explicit tokens (blank lines separate bar blocks) and the
// stream always ends with one zero-width EOF token.
func Tokenize(source string) []Token {
	l := &lexer{src: source, line: 1}
	for l.pos < len(l.src) {
		l.scan()
	}
	end := l.here()
	l.tokens = append(l.tokens, Token{Type: TokenEOF, Span: Span{Start: end, End: end}})
	return l.tokens
}

func (l *lexer) here() Loc { return Loc{Line: l.line, Column: l.col, Offset: l.pos} }

func (l *lexer) emit(typ TokenType, value string, start Loc) {
	l.tokens = append(l.tokens, Token{Type: typ, Value: value, Span: Span{Start: start, End: l.here()}})
}

// advance consumes one byte of ASCII input.
func (l *lexer) advance() {
	l.pos++
	l.col++
}

func (l *lexer) scan() {
	c := l.src[l.pos]
	start := l.here()
	switch {
	case c == ' ' || c == '\t':
		l.advance()
	case c == '\n':
		l.advance()
		l.newline(start)
	case c == '\r':
		l.advance()
		if l.pos < len(l.src) && l.src[l.pos] == '\n' {
			l.advance()
		}
		l.newline(start)
	case c == '@':
		l.advance()
		l.emit(TokenAt, "@", start)
	case c == '-':
		l.advance()
		l.emit(TokenDash, "-", start)
	case c == '(':
		l.advance()
		l.emit(TokenLParen, "(", start)
	case c == ')':
		l.advance()
		l.emit(TokenRParen, ")", start)
	case c == '=':
		l.advance()
		l.emit(TokenEquals, "=", start)
	case c == '&':
		l.advance()
		l.emit(TokenAnd, "&", start)
	case c == '|':
		l.advance()
		l.emit(TokenOr, "|", start)
	case c == '^':
		l.advance()
		l.emit(TokenXor, "^", start)
	case c == '~':
		l.advance()
		l.emit(TokenNot, "~", start)
	case c == '>':
		l.advance()
		l.emit(TokenFallback, ">", start)
	case c == '#':
		l.scanHashAmbiguity(start)
	case c >= '0' && c <= '9':
		l.scanNumber(start)
	case isIdentStart(c):
		l.scanIdent(start)
	default:
		// Unknown character: skip a full rune so multi-byte input cannot
		// desynchronize the offset bookkeeping.
		_, size := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += size
		l.col++
	}
}

func (l *lexer) newline(start Loc) {
	l.emit(TokenNewline, l.src[start.Offset:l.pos], start)
	l.line++
	l.col = 0
}

// scanHashAmbiguity resolves '#': it is a hex color literal when exactly six
// hex digits follow and the previously emitted token is '=', otherwise it is
// a line comment running to end of line.
func (l *lexer) scanHashAmbiguity(start Loc) {
	digits := 0
	for l.pos+1+digits < len(l.src) && isHexDigit(l.src[l.pos+1+digits]) {
		digits++
	}
	if digits == 6 && l.prevType() == TokenEquals {
		l.advance() // '#'
		for i := 0; i < 6; i++ {
			l.advance()
		}
		l.emit(TokenHexColor, l.src[start.Offset+1:l.pos], start)
		return
	}
	for l.pos < len(l.src) && l.src[l.pos] != '\n' && l.src[l.pos] != '\r' {
		_, size := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += size
		l.col++
	}
	l.emit(TokenComment, l.src[start.Offset:l.pos], start)
}

func (l *lexer) scanNumber(start Loc) {
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.advance()
	}
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9' {
		l.advance()
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.advance()
		}
	}
	l.emit(TokenNumber, l.src[start.Offset:l.pos], start)
}

func (l *lexer) scanIdent(start Loc) {
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.advance()
	}
	l.emit(TokenIdent, l.src[start.Offset:l.pos], start)
}

func (l *lexer) prevType() TokenType {
	if len(l.tokens) == 0 {
		return TokenEOF
	}
	return l.tokens[len(l.tokens)-1].Type
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
