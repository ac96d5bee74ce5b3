// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package netlist

import (
	"slices"

	"github.com/consensys/go-hlsyn/pkg/util/source"
	"github.com/consensys/go-hlsyn/pkg/util/source/lex"
)

// END_OF signals "end of file"
const END_OF uint = 0

// WHITESPACE signals whitespace, including line breaks
const WHITESPACE uint = 1

// COMMENT signals "// ..."
const COMMENT uint = 2

// IDENTIFIER signals a name (including keywords and types)
const IDENTIFIER uint = 3

// NUMBER signals an unsigned decimal literal
const NUMBER uint = 4

// COMMA signals ","
const COMMA uint = 5

// LBRACE signals "("
const LBRACE uint = 6

// RBRACE signals ")"
const RBRACE uint = 7

// LCURLY signals "{"
const LCURLY uint = 8

// RCURLY signals "}"
const RCURLY uint = 9

// QMARK signals "?"
const QMARK uint = 10

// COLON signals ":"
const COLON uint = 11

// EQUALS signals "="
const EQUALS uint = 12

// EQUALS_EQUALS signals "=="
const EQUALS_EQUALS uint = 13

// LESS signals "<"
const LESS uint = 14

// GREATER signals ">"
const GREATER uint = 15

// SHIFT_LEFT signals "<<"
const SHIFT_LEFT uint = 16

// SHIFT_RIGHT signals ">>"
const SHIFT_RIGHT uint = 17

// ADD signals "+"
const ADD uint = 18

// SUB signals "-"
const SUB uint = 19

// MUL signals "*"
const MUL uint = 20

// DIV signals "/"
const DIV uint = 21

// REM signals "%"
const REM uint = 22

var (
	whitespace     = lex.Many(lex.Or(lex.Unit(' '), lex.Unit('\t'), lex.Unit('\r'), lex.Unit('\n')))
	comment        = lex.Line(lex.Text("//"))
	digit          = lex.Within('0', '9')
	number         = lex.SequenceNullableLast(digit, lex.Many(digit))
	identifierHead = lex.Or(lex.Unit('_'), lex.Within('a', 'z'), lex.Within('A', 'Z'))
	identifierTail = lex.Or(identifierHead, digit)
	identifier     = lex.SequenceNullableLast(identifierHead, lex.Many(identifierTail))
)

// Order matters: longer operators must be tried before their prefixes.
var rules = []lex.Rule{
	lex.NewRule(comment, COMMENT),
	lex.NewRule(whitespace, WHITESPACE),
	lex.NewRule(identifier, IDENTIFIER),
	lex.NewRule(number, NUMBER),
	lex.NewRule(lex.Unit(','), COMMA),
	lex.NewRule(lex.Unit('('), LBRACE),
	lex.NewRule(lex.Unit(')'), RBRACE),
	lex.NewRule(lex.Unit('{'), LCURLY),
	lex.NewRule(lex.Unit('}'), RCURLY),
	lex.NewRule(lex.Unit('?'), QMARK),
	lex.NewRule(lex.Unit(':'), COLON),
	lex.NewRule(lex.Text("=="), EQUALS_EQUALS),
	lex.NewRule(lex.Unit('='), EQUALS),
	lex.NewRule(lex.Text("<<"), SHIFT_LEFT),
	lex.NewRule(lex.Text(">>"), SHIFT_RIGHT),
	lex.NewRule(lex.Unit('<'), LESS),
	lex.NewRule(lex.Unit('>'), GREATER),
	lex.NewRule(lex.Unit('+'), ADD),
	lex.NewRule(lex.Unit('-'), SUB),
	lex.NewRule(lex.Unit('*'), MUL),
	lex.NewRule(lex.Unit('/'), DIV),
	lex.NewRule(lex.Unit('%'), REM),
}

// Lex a given netlist into a stream of tokens, discarding whitespace and
// comments.
func Lex(srcfile *source.File) ([]lex.Token, []source.SyntaxError) {
	tokens, index := lex.Tokenise(srcfile.Contents(), END_OF, rules...)
	//
	if index >= 0 {
		err := srcfile.SyntaxError(source.NewSpan(index, index+1), "unknown character")
		return nil, []source.SyntaxError{err}
	}
	//
	return slices.DeleteFunc(tokens, func(t lex.Token) bool {
		return t.Kind == WHITESPACE || t.Kind == COMMENT
	}), nil
}
