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
	"errors"
	"slices"
	"testing"

	"github.com/consensys/go-hlsyn/pkg/circuit"
	"github.com/consensys/go-hlsyn/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// o = a + b
func Test_Link_01(t *testing.T) {
	c := circuit.NewCircuit(nil)
	a := newNet(t, c, "a", circuit.INPUT, 8)
	b := newNet(t, c, "b", circuit.INPUT, 8)
	o := newNet(t, c, "o", circuit.OUTPUT, 8)
	add := newOp(t, c, circuit.ADD, circuit.UNCONDITIONAL, o, circuit.Port{Net: a, Role: circuit.OPERAND_A},
		circuit.Port{Net: b, Role: circuit.OPERAND_B})
	//
	m := link(t, c, 4)
	//
	require.Equal(t, uint(6), m.NumStates())
	//
	for i, s := range m.States() {
		assert.Equal(t, uint(i), s.Index())
		assert.Equal(t, uint(i), s.Cycle())
		//
		if s.Cycle() == 1 {
			assert.Equal(t, []circuit.OpId{add}, s.Operations())
		} else {
			assert.Empty(t, s.Operations())
		}
	}
	//
	wait := m.Wait()
	assert.True(t, m.IsWait(wait))
	assert.Equal(t, []Transition{{ON_START, circuit.NO_NET, 1}, {ON_IDLE, circuit.NO_NET, 0}}, wait.Transitions())
	//
	done := m.Done()
	assert.True(t, m.IsDone(done))
	assert.Equal(t, uint(5), done.Cycle())
	assert.Equal(t, []Transition{{ALWAYS, circuit.NO_NET, 0}}, done.Transitions())
}

// x = a + b; if (c) { y = x - 1 } else { y = x + 1 }
func Test_Link_02(t *testing.T) {
	b := branching(t)
	m := link(t, b.circuit, 2)
	//
	split := findSplit(t, m)
	assert.Equal(t, uint(1), split.Cycle())
	assert.Contains(t, split.Operations(), b.marker)
	//
	next := split.Transitions()
	ifState, elseState := m.State(next[0].Target), m.State(next[1].Target)
	assert.Equal(t, WHEN_SET, next[0].Guard)
	assert.Equal(t, WHEN_CLEAR, next[1].Guard)
	assert.Equal(t, b.flag, next[0].Flag)
	assert.NotEqual(t, ifState.Index(), elseState.Index())
	assert.Equal(t, []circuit.OpId{b.dec}, ifState.Operations())
	assert.Equal(t, []circuit.OpId{b.inc}, elseState.Operations())
	// Both sides converge
	assert.Equal(t, ifState.Transitions()[0].Target, elseState.Transitions()[0].Target)
	assert.Equal(t, m.Done().Index(), ifState.Transitions()[0].Target)
}

// As above, with a looser budget, so the branches may be spread out.
func Test_Link_03(t *testing.T) {
	for latency := uint(3); latency <= 6; latency++ {
		b := branching(t)
		m := link(t, b.circuit, latency)
		//
		var (
			split          = findSplit(t, m)
			next           = split.Transitions()
			ifOps, ifEnd   = walk(b.circuit, m, next[0].Target)
			elOps, elseEnd = walk(b.circuit, m, next[1].Target)
		)
		//
		assert.Equal(t, []circuit.OpId{b.dec}, ifOps, "latency %d", latency)
		assert.Equal(t, []circuit.OpId{b.inc}, elOps, "latency %d", latency)
		assert.Equal(t, ifEnd, elseEnd, "latency %d", latency)
		checkCoverage(t, b.circuit, m)
	}
}

// Nested branches.
func Test_Link_04(t *testing.T) {
	c := circuit.NewCircuit(nil)
	a := newNet(t, c, "a", circuit.INPUT, 8)
	f := newNet(t, c, "f", circuit.INPUT, 1)
	g := newNet(t, c, "g", circuit.INPUT, 1)
	o1 := newNet(t, c, "o1", circuit.OUTPUT, 8)
	o2 := newNet(t, c, "o2", circuit.OUTPUT, 8)
	o3 := newNet(t, c, "o3", circuit.OUTPUT, 8)
	outer, ifOuter, elseOuter, err := c.NewBranch(f, circuit.UNCONDITIONAL)
	require.NoError(t, err)
	// Inner branch opened within the outer if
	inner, ifInner, elseInner, err := c.NewBranch(g, ifOuter)
	require.NoError(t, err)
	c.Connect(inner, c.Gate(ifOuter), circuit.IF_CONDITION)
	//
	newOp(t, c, circuit.INC, ifInner, o1, port(a, circuit.OPERAND_A), port(c.Gate(ifInner), circuit.IF_CONDITION))
	newOp(t, c, circuit.DEC, elseInner, o2, port(a, circuit.OPERAND_A),
		port(c.Gate(elseInner), circuit.ELSE_CONDITION))
	newOp(t, c, circuit.INC, elseOuter, o3, port(a, circuit.OPERAND_A),
		port(c.Gate(elseOuter), circuit.ELSE_CONDITION))
	//
	m := link(t, c, 4)
	checkCoverage(t, c, m)
	//
	var splits []*State
	//
	for i := range m.NumStates() {
		if s := m.State(i); len(s.Transitions()) == 2 && !m.IsWait(s) {
			splits = append(splits, s)
		}
	}
	//
	require.Len(t, splits, 2)
	assert.Contains(t, splits[0].Operations(), outer)
	assert.Contains(t, splits[1].Operations(), inner)
	// Every path terminates in the done state.
	for i := range m.NumStates() {
		for _, tr := range m.State(i).Transitions() {
			assert.Less(t, tr.Target, m.NumStates())
		}
	}
}

func Test_Link_05(t *testing.T) {
	c := circuit.NewCircuit(nil)
	a := newNet(t, c, "a", circuit.INPUT, 8)
	o := newNet(t, c, "o", circuit.OUTPUT, 8)
	newOp(t, c, circuit.INC, circuit.UNCONDITIONAL, o, port(a, circuit.OPERAND_A))
	//
	_, err := Link(c)
	assert.Error(t, err)
	//
	require.NoError(t, c.Propagate(3))
	_, err = Link(c)
	//
	var unscheduled *UnscheduledOperation
	//
	require.True(t, errors.As(err, &unscheduled))
	assert.Equal(t, "inc(o)", unscheduled.Operation)
}

// Two branches opening in the same cycle.
func Test_Link_06(t *testing.T) {
	c := circuit.NewCircuit(nil)
	f := newNet(t, c, "f", circuit.INPUT, 1)
	g := newNet(t, c, "g", circuit.INPUT, 1)
	_, _, _, err := c.NewBranch(f, circuit.UNCONDITIONAL)
	require.NoError(t, err)
	_, _, _, err = c.NewBranch(g, circuit.UNCONDITIONAL)
	require.NoError(t, err)
	//
	_, err = schedule.ForceDirected(c, 2)
	require.NoError(t, err)
	_, err = Link(c)
	//
	var conflict *ConflictingBranches
	//
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, uint(1), conflict.Cycle)
	assert.Len(t, conflict.Markers, 2)
}

// ============================================================================
// Test Helpers
// ============================================================================

type branchingCircuit struct {
	circuit *circuit.Circuit
	flag    circuit.NetId
	marker  circuit.OpId
	dec     circuit.OpId
	inc     circuit.OpId
}

// x = a + b; if (c) { y = x - 1 } else { y = x + 1 }
func branching(t *testing.T) branchingCircuit {
	c := circuit.NewCircuit(nil)
	a := newNet(t, c, "a", circuit.INPUT, 8)
	b := newNet(t, c, "b", circuit.INPUT, 8)
	f := newNet(t, c, "c", circuit.INPUT, 1)
	x := newNet(t, c, "x", circuit.VARIABLE, 8)
	y := newNet(t, c, "y", circuit.OUTPUT, 8)
	y1, err := c.NewNet("y#1", "y", circuit.OUTPUT, circuit.UNSIGNED, 8)
	require.NoError(t, err)
	//
	newOp(t, c, circuit.ADD, circuit.UNCONDITIONAL, x, port(a, circuit.OPERAND_A), port(b, circuit.OPERAND_B))
	marker, ifCond, elseCond, err := c.NewBranch(f, circuit.UNCONDITIONAL)
	require.NoError(t, err)
	dec := newOp(t, c, circuit.DEC, ifCond, y, port(x, circuit.OPERAND_A), port(c.Gate(ifCond), circuit.IF_CONDITION))
	inc := newOp(t, c, circuit.INC, elseCond, y1, port(x, circuit.OPERAND_A),
		port(c.Gate(elseCond), circuit.ELSE_CONDITION))
	//
	return branchingCircuit{c, f, marker, dec, inc}
}

func link(t *testing.T, c *circuit.Circuit, latency uint) *Machine {
	_, err := schedule.ForceDirected(c, latency)
	require.NoError(t, err)
	m, err := Link(c)
	require.NoError(t, err)
	//
	return m
}

// Find the (only) state in which the machine splits on a flag.
func findSplit(t *testing.T, m *Machine) *State {
	for i := range m.NumStates() {
		if s := m.State(i); len(s.Transitions()) == 2 && s.Transitions()[0].Guard == WHEN_SET {
			return s
		}
	}
	//
	t.Fatal("no branching state")
	//
	return nil
}

// Follow a branch from a given state until it rejoins the unconditional path,
// returning the conditional operations executed along the way and the state
// where the paths join.
func walk(c *circuit.Circuit, m *Machine, index uint) ([]circuit.OpId, uint) {
	var ops []circuit.OpId
	//
	for {
		s := m.State(index)
		//
		if s.Condition() == circuit.UNCONDITIONAL {
			return ops, index
		}
		//
		for _, op := range s.Operations() {
			if c.Operation(op).Condition() != circuit.UNCONDITIONAL {
				ops = append(ops, op)
			}
		}
		//
		index = s.Transitions()[0].Target
	}
}

// Every operation is executed by some state, and markers by exactly one.
func checkCoverage(t *testing.T, c *circuit.Circuit, m *Machine) {
	t.Helper()
	//
	counts := make([]int, c.NumOperations())
	//
	for _, s := range m.States() {
		for _, op := range s.Operations() {
			counts[op]++
			assert.Equal(t, c.Operation(op).Cycle(), s.Cycle())
		}
	}
	//
	for i, n := range counts {
		op := c.Operation(circuit.OpId(i))
		assert.Positive(t, n, "%s never executed", op.Name())
		//
		if op.IsMarker() {
			assert.Equal(t, 1, n, "%s executed more than once", op.Name())
		}
	}
	//
	assert.False(t, slices.ContainsFunc(m.States(), func(s State) bool {
		return len(s.Transitions()) == 0
	}), "state without transitions")
}

func port(net circuit.NetId, role circuit.PortRole) circuit.Port {
	return circuit.Port{Net: net, Role: role}
}

func newNet(t *testing.T, c *circuit.Circuit, name string, kind circuit.NetKind, width uint) circuit.NetId {
	id, err := c.NewNet(name, name, kind, circuit.UNSIGNED, width)
	require.NoError(t, err)
	//
	return id
}

func newOp(t *testing.T, c *circuit.Circuit, kind circuit.OpKind, cond circuit.ConditionId, out circuit.NetId,
	inputs ...circuit.Port) circuit.OpId {
	op := c.NewOperation(kind, cond)
	//
	for _, in := range inputs {
		c.Connect(op, in.Net, in.Role)
	}
	//
	require.NoError(t, c.Drive(op, out, circuit.DATAPATH_OUT))
	//
	return op
}
