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
	"math"
)

// OpId identifies an operation within its enclosing circuit.
type OpId uint

// NO_OPERATION is used where an operation is expected but none exists (e.g.
// the driver of a graph input).
const NO_OPERATION OpId = math.MaxUint

// Operation is an instance of a functional unit, reading from some nets and
// driving others.  Once scheduled, an operation has a fixed cycle in which it
// starts executing.
type Operation struct {
	name      string
	kind      OpKind
	condition ConditionId
	inputs    []Port
	outputs   []Port
	// Resolved datapath width and signedness.
	width  uint
	signed bool
	// Combinational delay (in ns).
	delay float64
	// Mobility window.
	start uint
	end   uint
	// Cycle assigned by the scheduler (or timing, for branch markers).
	cycle     uint
	scheduled bool
}

// Name returns a human-readable identifier for this operation, formed from
// its kind and its first output.
func (p *Operation) Name() string {
	return p.name
}

// Kind returns the function computed by this operation.
func (p *Operation) Kind() OpKind {
	return p.kind
}

// Class returns the resource class of this operation.
func (p *Operation) Class() ResourceClass {
	return p.kind.Class()
}

// IsMarker determines whether this is a branch marker.
func (p *Operation) IsMarker() bool {
	return p.kind == BRANCH
}

// Condition returns the branch condition under which this operation executes.
func (p *Operation) Condition() ConditionId {
	return p.condition
}

// Inputs returns the input ports of this operation.
func (p *Operation) Inputs() []Port {
	return p.inputs
}

// Outputs returns the output ports of this operation.
func (p *Operation) Outputs() []Port {
	return p.outputs
}

// Input returns the first input net with the given role, or NO_NET.
func (p *Operation) Input(role PortRole) NetId {
	return findPort(p.inputs, role)
}

// Output returns the first output net with the given role, or NO_NET.
func (p *Operation) Output(role PortRole) NetId {
	return findPort(p.outputs, role)
}

// Width returns the resolved datapath width of this operation.  This is only
// available after delays have been resolved.
func (p *Operation) Width() uint {
	return p.width
}

// IsSigned determines whether this operation performs signed arithmetic.
// This is only available after delays have been resolved.
func (p *Operation) IsSigned() bool {
	return p.signed
}

// Delay returns the combinational delay of this operation (in ns).
func (p *Operation) Delay() float64 {
	return p.delay
}

// Start returns the earliest cycle in which this operation can begin.
func (p *Operation) Start() uint {
	return p.start
}

// End returns the latest cycle in which this operation can begin.
func (p *Operation) End() uint {
	return p.end
}

// Mobility returns the number of cycles in this operation's window.
func (p *Operation) Mobility() uint {
	return p.end - p.start + 1
}

// Cycle returns the cycle in which this operation begins.  This is only
// meaningful when the operation is scheduled.
func (p *Operation) Cycle() uint {
	return p.cycle
}

// IsScheduled determines whether this operation has a fixed cycle.
func (p *Operation) IsScheduled() bool {
	return p.scheduled
}

func (p *Operation) String() string {
	return p.name
}

func (p *Operation) pin(cycle uint) {
	p.start, p.end, p.cycle, p.scheduled = cycle, cycle, cycle, true
}

func findPort(ports []Port, role PortRole) NetId {
	for _, port := range ports {
		if port.Role == role {
			return port.Net
		}
	}
	//
	return NO_NET
}
