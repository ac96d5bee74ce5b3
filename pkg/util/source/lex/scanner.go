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

// Scanner determines how many characters at the start of its input it
// accepts.  Zero means no match.
type Scanner func(input []rune) uint

// Unit accepts exactly the given characters, in order.
func Unit(chars ...rune) Scanner {
	return func(input []rune) uint {
		if len(input) < len(chars) {
			return 0
		}
		//
		for i, c := range chars {
			if input[i] != c {
				return 0
			}
		}
		//
		return uint(len(chars))
	}
}

// Text accepts exactly the characters of a given string.
func Text(s string) Scanner {
	return Unit([]rune(s)...)
}

// Within accepts any single character in the range lowest..highest
// (inclusive).
func Within(lowest rune, highest rune) Scanner {
	return func(input []rune) uint {
		if len(input) > 0 && lowest <= input[0] && input[0] <= highest {
			return 1
		}
		//
		return 0
	}
}

// Or accepts whatever the first matching scanner accepts.
func Or(scanners ...Scanner) Scanner {
	return func(input []rune) uint {
		for _, s := range scanners {
			if n := s(input); n > 0 {
				return n
			}
		}
		//
		return 0
	}
}

// Many accepts zero or more repetitions of a given scanner.
func Many(scanner Scanner) Scanner {
	return func(input []rune) uint {
		var n uint
		//
		for n < uint(len(input)) {
			m := scanner(input[n:])
			if m == 0 {
				break
			}
			//
			n += m
		}
		//
		return n
	}
}

// Sequence accepts each scanner in turn, each starting where the last
// finished.  All must match.
func Sequence(scanners ...Scanner) Scanner {
	return func(input []rune) uint {
		var n uint
		//
		for _, s := range scanners {
			m := s(input[n:])
			if m == 0 {
				return 0
			}
			//
			n += m
		}
		//
		return n
	}
}

// Until accepts everything up to (but not including) the first occurrence of
// a given character, or the end of input.
func Until(stop rune) Scanner {
	return func(input []rune) uint {
		var n uint
		//
		for n < uint(len(input)) && input[n] != stop {
			n++
		}
		//
		return n
	}
}

// Line accepts whatever a given scanner accepts, followed by everything up to
// the end of the line.  This suits line comments.
func Line(prefix Scanner) Scanner {
	return func(input []rune) uint {
		n := prefix(input)
		if n == 0 {
			return 0
		}
		//
		return n + Until('\n')(input[n:])
	}
}

// SequenceNullableLast is like Sequence, except that the final scanner may
// accept nothing.  This suits a mandatory head followed by an optional tail.
func SequenceNullableLast(scanners ...Scanner) Scanner {
	return func(input []rune) uint {
		var n uint
		//
		for i, s := range scanners {
			m := s(input[n:])
			if m == 0 && i < len(scanners)-1 {
				return 0
			}
			//
			n += m
		}
		//
		return n
	}
}
