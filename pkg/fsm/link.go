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
package fsm

import (
	"fmt"
	"slices"

	"github.com/consensys/go-hlsyn/pkg/circuit"
	"github.com/consensys/go-hlsyn/pkg/util/collection/stack"
	log "github.com/sirupsen/logrus"
)

// Link folds a fully scheduled circuit into a state machine.  States are
// discovered by walking forwards from the wait state, one cycle at a time.
// Each state executes the operations scheduled in its cycle under any
// condition enclosing the walk's current condition.  A branch marker splits
// the walk in two, and both sides converge again on a shared state once every
// operation of either side has executed.
func Link(c *circuit.Circuit) (*Machine, error) {
	if c.Latency() == 0 {
		return nil, fmt.Errorf("circuit has no latency budget")
	}
	//
	for i := range c.NumOperations() {
		if op := c.Operation(circuit.OpId(i)); !op.IsScheduled() {
			return nil, &UnscheduledOperation{op.Name()}
		}
	}
	//
	l := newLinker(c)
	l.state(0, circuit.UNCONDITIONAL)
	//
	for !l.worklist.IsEmpty() {
		if err := l.expand(l.worklist.Pop()); err != nil {
			return nil, err
		}
	}
	//
	for i, ok := range l.attached {
		if op := c.Operation(circuit.OpId(i)); !ok {
			return nil, &UnreachableOperation{op.Name(), op.Cycle()}
		}
	}
	//
	log.Debugf("linked %d states for latency %d", len(l.machine.states), c.Latency())
	//
	return l.machine, nil
}

type stateKey struct {
	cycle     uint
	condition circuit.ConditionId
}

type linker struct {
	circuit *circuit.Circuit
	machine *Machine
	// Memoised states
	states map[stateKey]uint
	// Operations scheduled in each cycle
	cycles [][]circuit.OpId
	// Cycle at which each condition's scope ends
	scopes []uint
	// Records which operations have been executed by some state
	attached []bool
	// States awaiting expansion
	worklist *stack.Stack[uint]
}

func newLinker(c *circuit.Circuit) *linker {
	var (
		latency = c.Latency()
		cycles  = make([][]circuit.OpId, latency+2)
	)
	//
	for i := range c.NumOperations() {
		cycle := c.Operation(circuit.OpId(i)).Cycle()
		cycles[cycle] = append(cycles[cycle], circuit.OpId(i))
	}
	//
	return &linker{
		circuit:  c,
		machine:  &Machine{latency: latency},
		states:   make(map[stateKey]uint),
		cycles:   cycles,
		scopes:   scopes(c),
		attached: make([]bool, c.NumOperations()),
		worklist: stack.NewStack[uint](),
	}
}

// Determine where the scope of each condition ends.  Both sides of a branch
// end together, in the cycle after the last operation executing on either
// side (or on any branch nested within).  No scope extends beyond the done
// state.
func scopes(c *circuit.Circuit) []uint {
	var (
		last = make([]uint, c.NumConditions())
		ends = make([]uint, c.NumConditions())
		done = c.Latency() + 1
	)
	//
	for i := range c.NumOperations() {
		op := c.Operation(circuit.OpId(i))
		//
		for cond := op.Condition(); cond != circuit.UNCONDITIONAL; cond = c.Condition(cond).Parent {
			last[cond] = max(last[cond], op.Cycle())
		}
	}
	//
	for i := range c.NumOperations() {
		marker := c.Operation(circuit.OpId(i))
		//
		if marker.IsMarker() {
			ifCond, elseCond := c.Branches(circuit.OpId(i))
			end := min(done, 1+max(marker.Cycle(), last[ifCond], last[elseCond]))
			ends[ifCond], ends[elseCond] = end, end
		}
	}
	//
	ends[circuit.UNCONDITIONAL] = done
	//
	return ends
}

// Find (or create) the state for a given cycle reached under a given
// condition.  Conditions whose scope has ended are replaced by their
// enclosing condition first.
func (p *linker) state(cycle uint, cond circuit.ConditionId) uint {
	if cycle > p.machine.latency {
		cycle, cond = p.machine.latency+1, circuit.UNCONDITIONAL
	}
	//
	for cond != circuit.UNCONDITIONAL && cycle >= p.scopes[cond] {
		cond = p.circuit.Condition(cond).Parent
	}
	//
	key := stateKey{cycle, cond}
	//
	if index, ok := p.states[key]; ok {
		return index
	}
	//
	index := uint(len(p.machine.states))
	p.machine.states = append(p.machine.states, State{index: index, cycle: cycle, condition: cond})
	p.states[key] = index
	p.worklist.Push(index)
	//
	return index
}

// Attach operations to a state and construct its outgoing transitions.
func (p *linker) expand(index uint) error {
	var (
		s         = p.machine.states[index]
		latency   = p.machine.latency
		operation []circuit.OpId
		markers   []circuit.OpId
		next      []Transition
	)
	//
	switch s.cycle {
	case 0:
		first := p.state(1, circuit.UNCONDITIONAL)
		next = []Transition{{ON_START, circuit.NO_NET, first}, {ON_IDLE, circuit.NO_NET, index}}
	case latency + 1:
		next = []Transition{{ALWAYS, circuit.NO_NET, 0}}
	default:
		for _, id := range p.cycles[s.cycle] {
			if op := p.circuit.Operation(id); p.circuit.Encloses(op.Condition(), s.condition) {
				operation = append(operation, id)
				p.attached[id] = true
				//
				if op.IsMarker() {
					markers = append(markers, id)
				}
			}
		}
		//
		switch len(markers) {
		case 0:
			next = []Transition{{ALWAYS, circuit.NO_NET, p.state(s.cycle+1, s.condition)}}
		case 1:
			var (
				ifCond, elseCond = p.circuit.Branches(markers[0])
				flag             = p.circuit.Condition(ifCond).Flag
				ifState          = p.state(s.cycle+1, ifCond)
				elseState        = p.state(s.cycle+1, elseCond)
			)
			//
			next = []Transition{{WHEN_SET, flag, ifState}, {WHEN_CLEAR, flag, elseState}}
		default:
			return p.conflict(s.cycle, markers)
		}
	}
	//
	p.machine.states[index].operations = operation
	p.machine.states[index].transitions = next
	//
	return nil
}

func (p *linker) conflict(cycle uint, markers []circuit.OpId) error {
	names := make([]string, len(markers))
	//
	for i, m := range markers {
		names[i] = p.circuit.Operation(m).Name()
	}
	//
	slices.Sort(names)
	log.Errorf("branches %v both open in cycle %d", names, cycle)
	//
	return &ConflictingBranches{cycle, names}
}
