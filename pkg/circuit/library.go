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

import "fmt"

// NUM_WIDTHS is the number of width buckets in a delay table.
const NUM_WIDTHS = 6

// DelayTable gives the combinational delay (in ns) of a functional unit for
// each supported width, in the order of SUPPORTED_WIDTHS.
type DelayTable [NUM_WIDTHS]float64

// Library describes the functional units available to a circuit: how many
// cycles each resource class occupies, and how long each kind of operation
// takes to settle.
type Library struct {
	latencies [NUM_RESOURCE_CLASSES]uint
	delays    [NUM_KINDS]DelayTable
}

// DefaultLibrary returns a library populated with the standard latencies and
// delay figures.
func DefaultLibrary() *Library {
	lib := &Library{}
	//
	lib.latencies[ALU] = 1
	lib.latencies[MULTIPLIER] = 2
	lib.latencies[DIVIDER] = 3
	lib.latencies[LOGICAL] = 1
	//
	lib.delays[REGISTER] = DelayTable{2.616, 2.644, 2.879, 3.061, 3.602, 3.966}
	lib.delays[ADD] = DelayTable{2.704, 3.713, 4.924, 5.638, 7.270, 9.566}
	lib.delays[SUB] = DelayTable{3.024, 3.412, 4.890, 5.569, 7.253, 9.566}
	lib.delays[MUL] = DelayTable{2.438, 3.651, 7.453, 7.811, 12.395, 15.354}
	lib.delays[DIV] = DelayTable{0.619, 2.144, 15.439, 33.093, 86.312, 243.233}
	lib.delays[MOD] = DelayTable{0.758, 2.149, 16.078, 35.563, 88.142, 250.583}
	lib.delays[MUX] = DelayTable{4.083, 4.115, 4.815, 5.623, 8.079, 8.766}
	lib.delays[COMPARE] = DelayTable{3.031, 3.934, 5.949, 6.256, 7.264, 8.416}
	lib.delays[SHL] = DelayTable{3.614, 3.980, 5.152, 6.549, 8.565, 11.220}
	lib.delays[SHR] = DelayTable{3.644, 4.007, 5.178, 6.460, 8.819, 11.095}
	lib.delays[INC] = DelayTable{1.792, 2.218, 3.111, 3.471, 4.348, 6.200}
	lib.delays[DEC] = DelayTable{1.792, 2.218, 3.108, 3.701, 4.685, 6.503}
	//
	return lib
}

// Latency returns the number of cycles an operation of the given class
// occupies its functional unit.  Classes which consume no unit have zero
// latency.
func (p *Library) Latency(class ResourceClass) uint {
	if class.IsTracked() {
		return p.latencies[class]
	}
	//
	return 0
}

// SetLatency overrides the latency of a resource class.
func (p *Library) SetLatency(class ResourceClass, cycles uint) error {
	if !class.IsTracked() {
		return fmt.Errorf("cannot set latency of resource class %s", class)
	} else if cycles == 0 {
		return fmt.Errorf("latency of resource class %s must be positive", class)
	}
	//
	p.latencies[class] = cycles
	//
	return nil
}

// Step returns the number of control steps separating the start of an
// operation of the given kind from the first cycle in which its outputs can
// be consumed.  Every operation occupies at least one step, since a value
// assigned in one state is only visible in the next.
func (p *Library) Step(kind OpKind) uint {
	return max(1, p.Latency(kind.Class()))
}

// Delay returns the delay of an operation of the given kind and width.  This
// fails for widths outside SUPPORTED_WIDTHS.  Branch markers have no delay.
func (p *Library) Delay(kind OpKind, width uint) (float64, bool) {
	if int(kind) >= NUM_KINDS {
		return 0, false
	}
	//
	for i, w := range SUPPORTED_WIDTHS {
		if w == width {
			return p.delays[kind][i], true
		}
	}
	//
	return 0, false
}

// Delays returns the delay table for a given kind.
func (p *Library) Delays(kind OpKind) DelayTable {
	return p.delays[kind]
}

// SetDelays overrides the delay table for a given kind.
func (p *Library) SetDelays(kind OpKind, table DelayTable) error {
	if int(kind) >= NUM_KINDS || kind == BRANCH {
		return fmt.Errorf("cannot set delays for operation kind %s", kind)
	}
	//
	for i, d := range table {
		if d < 0 {
			return fmt.Errorf("negative delay for %s at width %d", kind, SUPPORTED_WIDTHS[i])
		}
	}
	//
	p.delays[kind] = table
	//
	return nil
}
