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

	"github.com/consensys/go-hlsyn/pkg/circuit"
)

// Guard determines when a transition is taken.
type Guard uint8

const (
	// ALWAYS transitions are taken unconditionally.
	ALWAYS Guard = iota
	// WHEN_SET transitions are taken when the tested flag is one.
	WHEN_SET
	// WHEN_CLEAR transitions are taken when the tested flag is zero.
	WHEN_CLEAR
	// ON_START transitions are taken when the start signal is raised.
	ON_START
	// ON_IDLE transitions are taken when the start signal is low.
	ON_IDLE
)

func (p Guard) String() string {
	switch p {
	case ALWAYS:
		return "always"
	case WHEN_SET:
		return "set"
	case WHEN_CLEAR:
		return "clear"
	case ON_START:
		return "start"
	case ON_IDLE:
		return "idle"
	default:
		return fmt.Sprintf("guard(%d)", uint8(p))
	}
}

// Transition connects one state to another.
type Transition struct {
	Guard Guard
	// Flag tested by WHEN_SET / WHEN_CLEAR transitions, otherwise NO_NET.
	Flag circuit.NetId
	// Index of the target state.
	Target uint
}

// State is a single state of a state machine, corresponding to one clock
// cycle along one path through the circuit's branches.
type State struct {
	index       uint
	cycle       uint
	condition   circuit.ConditionId
	operations  []circuit.OpId
	transitions []Transition
}

// Index returns the dense index of this state.
func (p *State) Index() uint {
	return p.index
}

// Cycle returns the clock cycle to which this state corresponds.  The wait
// state is cycle 0, and the done state is the cycle after the latency budget.
func (p *State) Cycle() uint {
	return p.cycle
}

// Condition returns the innermost branch condition in force in this state.
func (p *State) Condition() circuit.ConditionId {
	return p.condition
}

// Operations returns the operations executed in this state, in circuit
// order.
func (p *State) Operations() []circuit.OpId {
	return p.operations
}

// Transitions returns the transitions out of this state.
func (p *State) Transitions() []Transition {
	return p.transitions
}

// Machine is a finite state machine sequencing the operations of a scheduled
// circuit.  State 0 is the wait state.
type Machine struct {
	latency uint
	states  []State
}

// Latency returns the latency budget of the circuit from which this machine
// was linked.
func (p *Machine) Latency() uint {
	return p.latency
}

// NumStates returns the number of states in this machine.
func (p *Machine) NumStates() uint {
	return uint(len(p.states))
}

// State returns the state with the given index.
func (p *Machine) State(index uint) *State {
	return &p.states[index]
}

// States returns all states, ordered by index.
func (p *Machine) States() []State {
	return p.states
}

// Wait returns the wait state, which idles until the start signal is raised.
func (p *Machine) Wait() *State {
	return &p.states[0]
}

// Done returns the done state, which raises the done signal before returning
// to the wait state.
func (p *Machine) Done() *State {
	for i := range p.states {
		if p.states[i].cycle == p.latency+1 {
			return &p.states[i]
		}
	}
	//
	panic("state machine has no done state")
}

// IsWait determines whether a given state is the wait state.
func (p *Machine) IsWait(s *State) bool {
	return s.cycle == 0
}

// IsDone determines whether a given state is the done state.
func (p *Machine) IsDone(s *State) bool {
	return s.cycle == p.latency+1
}

// UnscheduledOperation is reported when linking a circuit containing an
// operation with no assigned cycle.
type UnscheduledOperation struct {
	Operation string
}

func (p *UnscheduledOperation) Error() string {
	return fmt.Sprintf("operation %s has not been scheduled", p.Operation)
}

// ConflictingBranches is reported when two branch markers execute in the same
// state.
type ConflictingBranches struct {
	Cycle   uint
	Markers []string
}

func (p *ConflictingBranches) Error() string {
	return fmt.Sprintf("conflicting branches %v in cycle %d", p.Markers, p.Cycle)
}

// UnreachableOperation is reported when an operation is not executed in any
// state.
type UnreachableOperation struct {
	Operation string
	Cycle     uint
}

func (p *UnreachableOperation) Error() string {
	return fmt.Sprintf("operation %s in cycle %d is unreachable", p.Operation, p.Cycle)
}
