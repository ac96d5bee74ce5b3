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
package source

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// ReadFile reads a netlist (or other) source file from disk.
func ReadFile(filename string) (*File, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	//
	return NewSourceFile(filename, bytes), nil
}

// File is a named source text, held as runes so that spans index characters
// rather than bytes.
type File struct {
	filename string
	contents []rune
}

// NewSourceFile constructs a source file from its raw bytes.
func NewSourceFile(filename string, bytes []byte) *File {
	return &File{filename, []rune(string(bytes))}
}

// Filename returns the name of this source file.
func (s *File) Filename() string {
	return s.filename
}

// Contents returns the characters of this source file.
func (s *File) Contents() []rune {
	return s.contents
}

// Text returns the characters covered by a given span.
func (s *File) Text(span Span) string {
	return string(s.contents[span.start:span.end])
}

// SyntaxError constructs a syntax error over a given span of this file.
func (s *File) SyntaxError(span Span, msg string) SyntaxError {
	return SyntaxError{s, span, msg}
}

// EnclosingLine returns the line containing the start of a given span.  Spans
// beyond the end of the file are reported against the last line.
func (s *File) EnclosingLine(span Span) Line {
	var (
		num   = 1
		start = 0
		index = min(span.start, len(s.contents))
	)
	//
	for i := 0; i < index; i++ {
		if s.contents[i] == '\n' {
			num++
			start = i + 1
		}
	}
	//
	end := start
	for end < len(s.contents) && s.contents[end] != '\n' {
		end++
	}
	//
	return Line{s.contents, Span{start, end}, num}
}

// Span identifies a contiguous range of characters within a source file.
type Span struct {
	// First character covered.
	start int
	// One past the last character covered.
	end int
}

// NewSpan constructs a span, which must not end before it starts.
func NewSpan(start int, end int) Span {
	if start > end {
		panic("invalid span")
	}
	//
	return Span{start, end}
}

// Start returns the index of the first character in this span.
func (p Span) Start() int {
	return p.start
}

// End returns one past the index of the last character in this span.
func (p Span) End() int {
	return p.end
}

// Length returns the number of characters in this span.
func (p Span) Length() int {
	return p.end - p.start
}

// Line is a single physical line of a source file.
type Line struct {
	text []rune
	span Span
	// Counting from 1
	number int
}

// String returns the characters of this line (without its terminator).
func (p Line) String() string {
	return string(p.text[p.span.start:p.span.end])
}

// Number returns the line number, counting from 1.
func (p Line) Number() int {
	return p.number
}

// Start returns the index of the first character of this line.
func (p Line) Start() int {
	return p.span.start
}

// Length returns the number of characters in this line.
func (p Line) Length() int {
	return p.span.Length()
}

// SyntaxError is an error associated with a span of some source file.
type SyntaxError struct {
	srcfile *File
	span    Span
	msg     string
}

// SourceFile returns the file in which this error arose.
func (p *SyntaxError) SourceFile() *File {
	return p.srcfile
}

// Span returns the characters to which this error applies.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the error message.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Line returns the line on which this error starts.
func (p *SyntaxError) Line() Line {
	return p.srcfile.EnclosingLine(p.span)
}

// Error implements the error interface, reporting the error as
// file:line:column.
func (p *SyntaxError) Error() string {
	line := p.Line()
	//
	return fmt.Sprintf("%s:%d:%d: %s", p.srcfile.filename, line.Number(), p.span.start-line.Start()+1, p.msg)
}
