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
package schedule

import (
	"slices"

	"github.com/consensys/go-hlsyn/pkg/circuit"
)

// SelfForce computes the force of fixing an operation in a given cycle,
// considering only the operation itself.  This is negative when the cycle is
// less congested than the operation's window on average.
func SelfForce(c *circuit.Circuit, id circuit.OpId, cycle uint) float64 {
	op := c.Operation(id)
	//
	return windowForce(c, op.Class(), op.Start(), op.End(), cycle, cycle)
}

// SuccessorForce computes the force implied on the transitive successors of an
// operation when it is fixed in a given cycle.  Fixing an operation raises the
// earliest start of anything reading its outputs, and each such change in
// window is charged as a force.  Each affected operation is counted once.
func SuccessorForce(c *circuit.Circuit, id circuit.OpId, cycle uint) float64 {
	var (
		implied  = map[circuit.OpId]uint{id: cycle}
		worklist = []circuit.OpId{id}
	)
	//
	for len(worklist) > 0 {
		op := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		available := implied[op] + c.Step(op)
		//
		for _, out := range c.Operation(op).Outputs() {
			for _, r := range c.Net(out.Net).Receivers() {
				start, ok := implied[r]
				if !ok {
					start = c.Operation(r).Start()
				}
				//
				if available > start {
					implied[r] = available
					worklist = append(worklist, r)
				}
			}
		}
	}
	//
	delete(implied, id)
	//
	return impliedForce(c, implied, func(op *circuit.Operation, start uint) float64 {
		return windowForce(c, op.Class(), op.Start(), op.End(), start, op.End())
	})
}

// PredecessorForce computes the force implied on the transitive predecessors of
// an operation when it is fixed in a given cycle.  Fixing an operation lowers
// the latest start of anything driving its inputs, and each such change in
// window is charged as a force.  Each affected operation is counted once.
func PredecessorForce(c *circuit.Circuit, id circuit.OpId, cycle uint) float64 {
	var (
		implied  = map[circuit.OpId]uint{id: cycle}
		worklist = []circuit.OpId{id}
	)
	//
	for len(worklist) > 0 {
		op := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		required := implied[op]
		//
		for _, in := range c.Operation(op).Inputs() {
			net := c.Net(in.Net)
			//
			if !net.IsDriven() || required <= c.Step(net.Driver()) {
				continue
			}
			//
			driver := net.Driver()
			end, ok := implied[driver]
			//
			if !ok {
				end = c.Operation(driver).End()
			}
			//
			if latest := required - c.Step(driver); latest < end {
				implied[driver] = latest
				worklist = append(worklist, driver)
			}
		}
	}
	//
	delete(implied, id)
	//
	return impliedForce(c, implied, func(op *circuit.Operation, end uint) float64 {
		return windowForce(c, op.Class(), op.Start(), op.End(), op.Start(), end)
	})
}

// TotalForce is the sum of the self, successor and predecessor forces.
func TotalForce(c *circuit.Circuit, id circuit.OpId, cycle uint) float64 {
	return SelfForce(c, id, cycle) + SuccessorForce(c, id, cycle) + PredecessorForce(c, id, cycle)
}

// Sum the forces of a set of implied window changes, visiting operations in
// index order so that the result does not depend on map iteration.
func impliedForce(c *circuit.Circuit, implied map[circuit.OpId]uint,
	force func(*circuit.Operation, uint) float64) float64 {
	var (
		ids   = make([]circuit.OpId, 0, len(implied))
		total float64
	)
	//
	for id := range implied {
		ids = append(ids, id)
	}
	//
	slices.Sort(ids)
	//
	for _, id := range ids {
		if op := c.Operation(id); !op.IsScheduled() {
			total += force(op, implied[id])
		}
	}
	//
	return total
}

// Compute the force of narrowing the window [start,end] of an operation of a
// given class to [from,to].  For every cycle j of the original window this is
// DG(j) * (p'(j) - p(j)), where p and p' are the probabilities of the
// operation occupying j under the original and narrowed windows.
func windowForce(c *circuit.Circuit, class circuit.ResourceClass, start, end, from, to uint) float64 {
	if !class.IsTracked() || from > to {
		return 0
	}
	//
	var (
		before = 1.0 / float64(end-start+1)
		after  = 1.0 / float64(to-from+1)
		force  float64
	)
	//
	for j := start; j <= end; j++ {
		delta := -before
		if from <= j && j <= to {
			delta += after
		}
		//
		force += c.Distribution(class, j) * delta
	}
	//
	return force
}
