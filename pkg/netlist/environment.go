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
	"fmt"
	"slices"

	"github.com/consensys/go-hlsyn/pkg/circuit"
	"github.com/consensys/go-hlsyn/pkg/util/collection/stack"
)

// Environment tracks the state of every variable as a netlist is parsed: which
// versions of it may reach the current statement, and which values have been
// computed from it since it was last written.  Each write creates a new
// version (i.e. net) of the variable, ordered after all earlier writes and
// reads through PRIOR_VALUE inputs.  The environment also maintains the stack
// of open branches.
type Environment struct {
	circuit   *circuit.Circuit
	variables map[string]*variable
	branches  *stack.Stack[branch]
	// Values produced by the last branch closed at the current nesting level.
	// The next branch at this level is ordered after them.
	previous []circuit.NetId
}

type variable struct {
	kind     circuit.NetKind
	sign     circuit.Sign
	width    uint
	declared circuit.NetId
	versions uint
	reach
}

// Versions of a variable reaching some point, and the values computed from
// them.
type reach struct {
	reaching []circuit.NetId
	readers  []circuit.NetId
}

type snapshot map[string]reach

type branch struct {
	ifCond   circuit.ConditionId
	elseCond circuit.ConditionId
	inElse   bool
	// Variable state when the branch was opened.
	before snapshot
	// Variable state at the end of the if part.
	afterIf snapshot
	// Everything computed within the branch.
	produced []circuit.NetId
}

// NewEnvironment constructs an empty environment for a given circuit.
func NewEnvironment(c *circuit.Circuit) *Environment {
	return &Environment{
		circuit:   c,
		variables: make(map[string]*variable),
		branches:  stack.NewStack[branch](),
	}
}

// Declare a new variable, creating its initial net.
func (p *Environment) Declare(name string, kind circuit.NetKind, sign circuit.Sign, width uint) error {
	if _, ok := p.variables[name]; ok {
		return fmt.Errorf("%s already declared", name)
	}
	//
	net, err := p.circuit.NewNet(name, name, kind, sign, width)
	if err != nil {
		return err
	}
	//
	p.variables[name] = &variable{kind, sign, width, net, 0, reach{reaching: []circuit.NetId{net}}}
	//
	return nil
}

// Read a variable, returning the net to use as an operand, along with any
// further versions which may reach this point (e.g. after an if/else).
func (p *Environment) Read(name string) (circuit.NetId, []circuit.NetId, error) {
	v, ok := p.variables[name]
	if !ok {
		return circuit.NO_NET, nil, &circuit.UndeclaredReference{Name: name}
	}
	//
	return v.reaching[0], v.reaching[1:], nil
}

// Write a variable, returning the net to be driven along with the values which
// the write must be ordered after.
func (p *Environment) Write(name string) (circuit.NetId, []circuit.NetId, error) {
	v, ok := p.variables[name]
	if !ok {
		return circuit.NO_NET, nil, &circuit.UndeclaredReference{Name: name}
	} else if v.kind == circuit.INPUT {
		return circuit.NO_NET, nil, fmt.Errorf("cannot assign input %s", name)
	}
	//
	var links []circuit.NetId
	//
	for _, id := range slices.Concat(v.reaching, v.readers) {
		net := p.circuit.Net(id)
		// Values computed on the other side of an open branch need no ordering
		if !net.IsDriven() || slices.Contains(links, id) ||
			p.circuit.Exclusive(p.circuit.Operation(net.Driver()).Condition(), p.Condition()) {
			continue
		}
		//
		links = append(links, id)
	}
	//
	out := v.declared
	// The declared net is only reused if nothing has touched it yet.
	if v.versions > 0 || p.circuit.Net(out).IsDriven() || len(p.circuit.Net(out).Receivers()) > 0 {
		var err error
		//
		v.versions++
		//
		if out, err = p.circuit.NewNet(fmt.Sprintf("%s#%d", name, v.versions), name, v.kind, v.sign,
			v.width); err != nil {
			return circuit.NO_NET, nil, err
		}
	}
	//
	v.reaching, v.readers = []circuit.NetId{out}, nil
	//
	return out, links, nil
}

// Produced records that a value has been computed from some variables.
func (p *Environment) Produced(net circuit.NetId, reads ...string) {
	for _, name := range reads {
		v := p.variables[name]
		v.readers = append(v.readers, net)
	}
	//
	if !p.branches.IsEmpty() {
		top := p.branches.Top()
		top.produced = append(top.produced, net)
	}
}

// Depth returns the number of open branches.
func (p *Environment) Depth() uint {
	return p.branches.Len()
}

// Condition returns the condition under which statements currently execute.
func (p *Environment) Condition() circuit.ConditionId {
	if p.branches.IsEmpty() {
		return circuit.UNCONDITIONAL
	}
	//
	if top := p.branches.Top(); top.inElse {
		return top.elseCond
	}
	//
	return p.branches.Top().ifCond
}

// Gate returns the inputs which gate statements executing under the current
// condition.
func (p *Environment) Gate() []circuit.Port {
	cond := p.Condition()
	//
	switch p.circuit.Condition(cond).Kind {
	case circuit.UNDER_IF:
		return []circuit.Port{{Net: p.circuit.Gate(cond), Role: circuit.IF_CONDITION}}
	case circuit.UNDER_ELSE:
		return []circuit.Port{{Net: p.circuit.Gate(cond), Role: circuit.ELSE_CONDITION}}
	default:
		return nil
	}
}

// OpenBranch opens a branch testing a given variable.  The branch marker is
// ordered after everything computed by the previous branch at this level.
func (p *Environment) OpenBranch(flag string) error {
	net, extras, err := p.Read(flag)
	if err != nil {
		return err
	}
	//
	marker, ifCond, elseCond, err := p.circuit.NewBranch(net, p.Condition())
	if err != nil {
		return err
	}
	//
	for _, in := range slices.Concat(priorValues(extras), priorValues(p.previous), p.Gate()) {
		p.circuit.Connect(marker, in.Net, in.Role)
	}
	//
	marks := p.circuit.Operation(marker).Outputs()
	gates := []circuit.NetId{marks[0].Net, marks[1].Net}
	//
	// Rewriting the flag must wait for the branch
	p.variables[flag].readers = append(p.variables[flag].readers, gates[0])
	p.branches.Push(branch{ifCond: ifCond, elseCond: elseCond, before: p.snapshot(), produced: gates})
	p.previous = nil
	//
	return nil
}

// OpenElse switches the innermost branch to its else part.
func (p *Environment) OpenElse() error {
	top := p.branches.Top()
	//
	if top.inElse {
		return fmt.Errorf("duplicate else")
	}
	//
	top.afterIf = p.snapshot()
	top.inElse = true
	p.restore(top.before)
	p.previous = nil
	//
	return nil
}

// CloseBranch closes the innermost branch.  Versions reaching the end of
// either part reach the statement following the branch.
func (p *Environment) CloseBranch() {
	b := p.branches.Pop()
	//
	if b.inElse {
		p.restore(merge(b.afterIf, p.snapshot()))
	} else {
		p.restore(merge(p.snapshot(), b.before))
	}
	//
	p.previous = b.produced
	//
	if !p.branches.IsEmpty() {
		top := p.branches.Top()
		top.produced = append(top.produced, b.produced...)
	}
}

func (p *Environment) snapshot() snapshot {
	s := make(snapshot, len(p.variables))
	//
	for name, v := range p.variables {
		s[name] = reach{slices.Clone(v.reaching), slices.Clone(v.readers)}
	}
	//
	return s
}

func (p *Environment) restore(s snapshot) {
	for name, r := range s {
		p.variables[name].reach = r
	}
}

// Combine two snapshots, taking the union of each variable's state.
func merge(a snapshot, b snapshot) snapshot {
	s := make(snapshot, len(a))
	//
	for name, r := range a {
		if other, ok := b[name]; ok {
			r = reach{union(r.reaching, other.reaching), union(r.readers, other.readers)}
		}
		//
		s[name] = r
	}
	//
	for name, r := range b {
		if _, ok := a[name]; !ok {
			s[name] = r
		}
	}
	//
	return s
}

func union(a []circuit.NetId, b []circuit.NetId) []circuit.NetId {
	result := slices.Clone(a)
	//
	for _, n := range b {
		if !slices.Contains(result, n) {
			result = append(result, n)
		}
	}
	//
	return result
}
