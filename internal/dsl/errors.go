/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dsl

// Code is a stable identifier for a diagnostic.
type Code string

const (
	// Syntactic
	CodeUnexpectedToken  Code = "unexpected_token"
	CodeUnexpectedEOF    Code = "unexpected_eof"
	CodeInvalidHexColor  Code = "invalid_hex_color"
	CodeMissingSelection Code = "missing_selection"

	// Semantic
	CodeUnknownPattern    Code = "unknown_pattern"
	CodeTypeMismatch      Code = "type_mismatch"
	CodeInvalidBarRange   Code = "invalid_bar_range"
	CodeInvalidBlendMode  Code = "invalid_blend_mode"
	CodeDuplicateBarRange Code = "duplicate_bar_range"
	CodeEmptyBarBlock     Code = "empty_bar_block"

	// Advisory (warnings only)
	CodeUnknownArg Code = "unknown_arg"
)

// Error is a structured parse error. No Error is ever fatal to the caller:
// parsing continues past it and the result still carries a partial document.
type Error struct {
	Code    Code
	Message string
	Span    Span
	Hint    string
}

// Warning is an advisory diagnostic that never blocks a successful parse.
type Warning struct {
	Code    Code
	Message string
	Span    Span
}

// ParseResult is the discriminated outcome of Parse. When OK is true,
// Document is set and Errors is empty. When OK is false, Errors holds every
// accumulated error and Partial holds every block that could be recovered.
// Warnings may be present either way.
type ParseResult struct {
	OK       bool
	Document *Document
	Errors   []Error
	Warnings []Warning
	Partial  *Document
}
