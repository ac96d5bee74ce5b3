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
package stack

// Stack is a LIFO collection backed by a slice.  It serves both as the
// worklist of the state machine linker, and as the stack of open branches
// within the netlist parser.
type Stack[T any] struct {
	items []T
}

// NewStack returns an empty stack.
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{}
}

// IsEmpty checks whether anything remains on the stack.
func (p *Stack[T]) IsEmpty() bool {
	return len(p.items) == 0
}

// Len returns the number of items on the stack.
func (p *Stack[T]) Len() uint {
	return uint(len(p.items))
}

// Push an item onto the stack.
func (p *Stack[T]) Push(item T) {
	p.items = append(p.items, item)
}

// Top returns a pointer to the topmost item, allowing it to be updated in
// place.
func (p *Stack[T]) Top() *T {
	if len(p.items) == 0 {
		panic("top of empty stack")
	}
	//
	return &p.items[len(p.items)-1]
}

// Pop removes the topmost item.
func (p *Stack[T]) Pop() T {
	n := len(p.items)
	//
	if n == 0 {
		panic("pop from empty stack")
	}
	//
	item := p.items[n-1]
	p.items = p.items[:n-1]
	//
	return item
}
