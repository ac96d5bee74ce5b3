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
package circuit

import (
	"fmt"
)

// Circuit is a dataflow graph of operations connected by nets.  The circuit
// owns all of its nets, operations and conditions, which refer to each other
// by index.  A circuit additionally holds the results of timing analysis and
// scheduling: the critical path, the latency budget and the distribution
// graph of every resource class.
type Circuit struct {
	library    *Library
	nets       []Net
	operations []Operation
	conditions []Condition
	// Maps net names to their index.
	names   map[string]NetId
	inputs  []NetId
	outputs []NetId
	// Latency budget (in cycles).
	latency uint
	// Longest combinational delay (in ns).
	criticalPath float64
	// Distribution graph for each resource class, indexed by cycle-1.
	distribution [NUM_RESOURCE_CLASSES][]float64
}

// NewCircuit constructs an empty circuit using a given library of functional
// units.  If no library is given, the default library is used.
func NewCircuit(library *Library) *Circuit {
	if library == nil {
		library = DefaultLibrary()
	}
	//
	return &Circuit{
		library:    library,
		conditions: []Condition{{ALWAYS, NO_NET, NO_OPERATION, UNCONDITIONAL}},
		names:      make(map[string]NetId),
	}
}

// Library returns the functional unit library used by this circuit.
func (p *Circuit) Library() *Library {
	return p.library
}

// NewNet adds a new net to this circuit.  The name must be unique, and the
// width must be one of SUPPORTED_WIDTHS.  The variable identifies the source
// value of which this net is a version (use the name if not applicable).
func (p *Circuit) NewNet(name string, variable string, kind NetKind, sign Sign, width uint) (NetId, error) {
	if _, ok := p.names[name]; ok {
		return NO_NET, fmt.Errorf("net %s already declared", name)
	} else if !IsSupportedWidth(width) {
		return NO_NET, fmt.Errorf("net %s has unsupported width %d", name, width)
	}
	//
	id := NetId(len(p.nets))
	net := Net{name: name, variable: variable, kind: kind, sign: sign, width: width, driver: NO_OPERATION}
	net.resetTiming()
	p.nets = append(p.nets, net)
	p.names[name] = id
	//
	switch kind {
	case INPUT:
		p.inputs = append(p.inputs, id)
	case OUTPUT:
		p.outputs = append(p.outputs, id)
	}
	//
	return id, nil
}

// NewOperation adds a new operation of the given kind to this circuit,
// executing under the given condition.  The operation has no ports until they
// are attached with Connect and Drive.
func (p *Circuit) NewOperation(kind OpKind, condition ConditionId) OpId {
	id := OpId(len(p.operations))
	p.operations = append(p.operations, Operation{
		name:      fmt.Sprintf("%s#%d", kind, id),
		kind:      kind,
		condition: condition,
		delay:     UNKNOWN_DELAY,
		end:       UNBOUNDED,
	})
	//
	return id
}

// Connect attaches a net as an input of an operation.
func (p *Circuit) Connect(op OpId, net NetId, role PortRole) {
	operation := &p.operations[op]
	operation.inputs = append(operation.inputs, Port{net, role})
	p.nets[net].receivers = append(p.nets[net].receivers, op)
}

// Drive attaches a net as an output of an operation.  A net can have at most
// one driver, and graph inputs cannot be driven.
func (p *Circuit) Drive(op OpId, net NetId, role PortRole) error {
	var (
		operation = &p.operations[op]
		n         = &p.nets[net]
	)
	//
	if n.kind == INPUT {
		return fmt.Errorf("cannot drive input %s", n.name)
	} else if n.IsDriven() {
		return fmt.Errorf("net %s already driven by %s", n.name, p.operations[n.driver].name)
	}
	// Name operation after its first output
	if len(operation.outputs) == 0 {
		operation.name = fmt.Sprintf("%s(%s)", operation.kind, n.name)
	}
	//
	operation.outputs = append(operation.outputs, Port{net, role})
	n.driver = op
	//
	return nil
}

// NewBranch adds a branch marker testing a given flag, executing under a given
// condition.  This creates the two conditional nets gating either side of the
// branch, along with a condition for each side.
func (p *Circuit) NewBranch(flag NetId, parent ConditionId) (OpId, ConditionId, ConditionId, error) {
	var (
		marker  = p.NewOperation(BRANCH, parent)
		base    = p.nets[flag].name
		ifCond  = ConditionId(len(p.conditions))
		elseRef = ifCond + 1
	)
	//
	p.Connect(marker, flag, SELECT)
	//
	for _, role := range []PortRole{IF_CONDITION, ELSE_CONDITION} {
		name := p.freshName(fmt.Sprintf("%s_%s", base, role))
		//
		gate, err := p.NewNet(name, name, CONDITIONAL, UNSIGNED, 1)
		if err == nil {
			err = p.Drive(marker, gate, role)
		}
		//
		if err != nil {
			return NO_OPERATION, UNCONDITIONAL, UNCONDITIONAL, err
		}
	}
	//
	p.conditions = append(p.conditions,
		Condition{UNDER_IF, flag, marker, parent},
		Condition{UNDER_ELSE, flag, marker, parent})
	//
	return marker, ifCond, elseRef, nil
}

// Gate returns the conditional net which gates operations executing under a
// given (non-root) condition.
func (p *Circuit) Gate(condition ConditionId) NetId {
	var (
		cond   = p.conditions[condition]
		marker = &p.operations[cond.Marker]
	)
	//
	if cond.Kind == UNDER_IF {
		return marker.Output(IF_CONDITION)
	}
	//
	return marker.Output(ELSE_CONDITION)
}

// Branches returns the two conditions opened by a given branch marker.
func (p *Circuit) Branches(marker OpId) (ConditionId, ConditionId) {
	var ifCond, elseCond ConditionId
	//
	for i, cond := range p.conditions {
		if cond.Marker == marker && cond.Kind == UNDER_IF {
			ifCond = ConditionId(i)
		} else if cond.Marker == marker && cond.Kind == UNDER_ELSE {
			elseCond = ConditionId(i)
		}
	}
	//
	return ifCond, elseCond
}

// Encloses determines whether one condition is the same as, or an ancestor
// of, another.  The root condition encloses everything.
func (p *Circuit) Encloses(outer ConditionId, inner ConditionId) bool {
	for {
		if inner == outer {
			return true
		} else if inner == UNCONDITIONAL {
			return false
		}
		//
		inner = p.conditions[inner].Parent
	}
}

// Exclusive determines whether two conditions lie on opposite sides of some
// branch, in which case operations under them never both execute.
func (p *Circuit) Exclusive(a ConditionId, b ConditionId) bool {
	for x := a; x != UNCONDITIONAL; x = p.conditions[x].Parent {
		for y := b; y != UNCONDITIONAL; y = p.conditions[y].Parent {
			if x != y && p.conditions[x].Marker == p.conditions[y].Marker {
				return true
			}
		}
	}
	//
	return false
}

// Net returns the net with the given index.
func (p *Circuit) Net(id NetId) *Net {
	return &p.nets[id]
}

// Operation returns the operation with the given index.
func (p *Circuit) Operation(id OpId) *Operation {
	return &p.operations[id]
}

// Condition returns the condition with the given index.
func (p *Circuit) Condition(id ConditionId) Condition {
	return p.conditions[id]
}

// NumNets returns the number of nets in this circuit.
func (p *Circuit) NumNets() uint {
	return uint(len(p.nets))
}

// NumOperations returns the number of operations in this circuit.
func (p *Circuit) NumOperations() uint {
	return uint(len(p.operations))
}

// NumConditions returns the number of conditions in this circuit, including
// the root.
func (p *Circuit) NumConditions() uint {
	return uint(len(p.conditions))
}

// Inputs returns the graph inputs of this circuit, in declaration order.
func (p *Circuit) Inputs() []NetId {
	return p.inputs
}

// Outputs returns the graph outputs of this circuit, in declaration order.
func (p *Circuit) Outputs() []NetId {
	return p.outputs
}

// Lookup finds a net by name.
func (p *Circuit) Lookup(name string) (NetId, bool) {
	id, ok := p.names[name]
	return id, ok
}

// Latency returns the latency budget against which this circuit was last
// analysed.
func (p *Circuit) Latency() uint {
	return p.latency
}

// CriticalPath returns the longest combinational delay (in ns) found by the
// last timing analysis.
func (p *Circuit) CriticalPath() float64 {
	return p.criticalPath
}

// Step returns the number of control steps between an operation starting and
// its outputs becoming available.
func (p *Circuit) Step(op OpId) uint {
	return p.library.Step(p.operations[op].kind)
}

// Extension determines how a datapath input of an operation must be widened
// to the operation's width: the number of padding bits, and whether they
// replicate the sign bit.  Only the operands of an operation are extended, and
// each is extended according to its own signedness.
func (p *Circuit) Extension(op OpId, port Port) (uint, bool) {
	var (
		operation = &p.operations[op]
		net       = &p.nets[port.Net]
	)
	//
	if port.Role != OPERAND_A && port.Role != OPERAND_B || net.width >= operation.width {
		return 0, false
	}
	//
	return operation.width - net.width, net.sign == SIGNED
}

func (p *Circuit) freshName(name string) string {
	candidate := name
	//
	for i := 1; ; i++ {
		if _, ok := p.names[candidate]; !ok {
			return candidate
		}
		//
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
}
