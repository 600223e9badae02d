/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dsl

import "fmt"

// TokenType identifies the kind of a lexed token.
type TokenType int

const (
	TokenAt TokenType = iota // "@"
	TokenDash                // "-"
	TokenLParen              // "("
	TokenRParen              // ")"
	TokenEquals              // "="
	TokenAnd                 // "&"
	TokenOr                  // "|"
	TokenXor                 // "^"
	TokenNot                 // "~"
	TokenFallback            // ">"
	TokenHexColor            // "#rrggbb" immediately after "="
	TokenNumber              // unsigned integer or decimal
	TokenIdent               // [A-Za-z_][A-Za-z0-9_]*
	TokenNewline             // "\n", "\r\n" or bare "\r"
	TokenComment             // "#" to end of line
	TokenEOF
)

func (t TokenType) String() string {
	switch t {
	case TokenAt:
		return "'@'"
	case TokenDash:
		return "'-'"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenEquals:
		return "'='"
	case TokenAnd:
		return "'&'"
	case TokenOr:
		return "'|'"
	case TokenXor:
		return "'^'"
	case TokenNot:
		return "'~'"
	case TokenFallback:
		return "'>'"
	case TokenHexColor:
		return "hex color"
	case TokenNumber:
		return "number"
	case TokenIdent:
		return "identifier"
	case TokenNewline:
		return "newline"
	case TokenComment:
		return "comment"
	case TokenEOF:
		return "end of input"
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Loc is a position in source text: 1-based line, 0-based column,
// 0-based byte offset.
type Loc struct {
	Line   int
	Column int
	Offset int
}

// Span is a half-open [Start, End) source range. Every AST node and every
// diagnostic carries one so errors can be rendered against the source.
type Span struct {
	Start Loc
	End   Loc
}

func (s Span) String() string { return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column) }

// Token is a single lexeme with its source span. For TokenHexColor, Value
// holds the six hex digits without the leading '#'.
type Token struct {
	Type  TokenType
	Value string
	Span  Span
}
