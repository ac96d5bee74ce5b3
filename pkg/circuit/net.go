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
	"math"
	"slices"
)

// NetId identifies a net within its enclosing circuit.
type NetId uint

// NO_NET is used where a net is expected but none exists.
const NO_NET NetId = math.MaxUint

// UNBOUNDED is the ALAP value of a net which has not yet been constrained.
const UNBOUNDED uint = math.MaxUint

// UNKNOWN_DELAY is the combinational delay of a net which has not yet been
// reached by critical path analysis.
const UNKNOWN_DELAY float64 = -1

// SUPPORTED_WIDTHS lists the bit widths for which delay figures exist.
var SUPPORTED_WIDTHS = [NUM_WIDTHS]uint{1, 2, 8, 16, 32, 64}

// IsSupportedWidth determines whether a net may have the given width.
func IsSupportedWidth(width uint) bool {
	return slices.Contains(SUPPORTED_WIDTHS[:], width)
}

// NetKind classifies a net by how it is declared.
type NetKind uint8

const (
	// INPUT nets are driven from outside the circuit.
	INPUT NetKind = iota
	// OUTPUT nets are observed outside the circuit.
	OUTPUT
	// WIRE nets are internal combinational values.
	WIRE
	// REGISTER_NET nets are internal register outputs.
	REGISTER_NET
	// VARIABLE nets are internal values of the behavioural description.
	VARIABLE
	// CONDITIONAL nets gate the two sides of a branch.
	CONDITIONAL
)

var netKindNames = []string{"input", "output", "wire", "register", "variable", "conditional"}

func (p NetKind) String() string {
	if int(p) < len(netKindNames) {
		return netKindNames[p]
	}
	//
	return fmt.Sprintf("netkind(%d)", p)
}

// Sign determines whether a net carries a two's complement value or not.
type Sign bool

const (
	// UNSIGNED values are zero extended.
	UNSIGNED Sign = false
	// SIGNED values are sign extended.
	SIGNED Sign = true
)

func (p Sign) String() string {
	if p == SIGNED {
		return "signed"
	}
	//
	return "unsigned"
}

// Net is a typed wire connecting the output of at most one operation to the
// inputs of zero or more operations.
type Net struct {
	name     string
	variable string
	kind     NetKind
	sign     Sign
	width    uint
	// Operation driving this net, or NO_OPERATION.
	driver OpId
	// Operations reading this net, in the order they were attached.
	receivers []OpId
	// Earliest cycle in which this value is available (0 if unknown).
	asap uint
	// Latest cycle in which this value may become available (UNBOUNDED if
	// unknown).
	alap uint
	// Combinational delay (in ns) at which this value settles.
	delay float64
}

// Name returns the unique name of this net.
func (p *Net) Name() string {
	return p.name
}

// Variable returns the source identifier which this net is a version of.  For
// nets which are not versions of anything, this is the same as the name.
func (p *Net) Variable() string {
	return p.variable
}

// Kind returns the declared kind of this net.
func (p *Net) Kind() NetKind {
	return p.kind
}

// Sign returns the signedness of this net.
func (p *Net) Sign() Sign {
	return p.sign
}

// Width returns the bitwidth of this net.
func (p *Net) Width() uint {
	return p.width
}

// Driver returns the operation driving this net, or NO_OPERATION.
func (p *Net) Driver() OpId {
	return p.driver
}

// IsDriven determines whether some operation drives this net.
func (p *Net) IsDriven() bool {
	return p.driver != NO_OPERATION
}

// Receivers returns the operations reading this net.
func (p *Net) Receivers() []OpId {
	return p.receivers
}

// Asap returns the earliest cycle in which this value is available.
func (p *Net) Asap() uint {
	return p.asap
}

// Alap returns the latest cycle by which this value must be available.
func (p *Net) Alap() uint {
	return p.alap
}

// Delay returns the combinational delay at which this value settles, or
// UNKNOWN_DELAY.
func (p *Net) Delay() float64 {
	return p.delay
}

func (p *Net) String() string {
	return p.name
}

func (p *Net) resetTiming() {
	p.asap = 0
	p.alap = UNBOUNDED
	p.delay = UNKNOWN_DELAY
}
