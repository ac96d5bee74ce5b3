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
package lex

import "github.com/consensys/go-hlsyn/pkg/util/source"

// Token is a span of the input tagged with a kind.
type Token struct {
	Kind uint
	Span source.Span
}

// Rule associates the characters accepted by a scanner with a token kind.
type Rule struct {
	scanner Scanner
	kind    uint
}

// NewRule constructs a rule tagging whatever a scanner accepts with a given
// kind.
func NewRule(scanner Scanner, kind uint) Rule {
	return Rule{scanner, kind}
}

// Tokenise splits an input into tokens by repeatedly applying the first rule
// which matches at the current position.  A final token of kind eof (with an
// empty span) is appended.  If no rule matches at some position, the tokens
// found so far are returned along with that position.  Otherwise, the
// position returned is -1.
func Tokenise(input []rune, eof uint, rules ...Rule) ([]Token, int) {
	var (
		tokens []Token
		index  int
	)
	//
	for index < len(input) {
		n := match(input[index:], rules, &tokens, index)
		if n == 0 {
			return tokens, index
		}
		//
		index += int(n)
	}
	//
	return append(tokens, Token{eof, source.NewSpan(index, index)}), -1
}

func match(input []rune, rules []Rule, tokens *[]Token, offset int) uint {
	for _, r := range rules {
		if n := r.scanner(input); n > 0 {
			*tokens = append(*tokens, Token{r.kind, source.NewSpan(offset, offset+int(n))})
			return n
		}
	}
	//
	return 0
}
