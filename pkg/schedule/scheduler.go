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
	"fmt"
	"math"

	"github.com/consensys/go-hlsyn/pkg/circuit"
	log "github.com/sirupsen/logrus"
)

// Choice records the operation and cycle selected by one iteration of the
// scheduler, along with the force which led to its selection.
type Choice struct {
	Operation circuit.OpId
	Cycle     uint
	Force     float64
}

// ForceDirected assigns every operation of a circuit a cycle within a given
// latency budget.  Timing analysis is performed first, after which the
// scheduler repeatedly fixes the (operation, cycle) pair with the least total
// force, until every operation is fixed.  Branch markers are fixed by timing
// analysis and never chosen.  The choices made are returned in order.
func ForceDirected(c *circuit.Circuit, latency uint) ([]Choice, error) {
	for i := range c.NumOperations() {
		op := c.Operation(circuit.OpId(i))
		//
		if op.Class() == circuit.UNKNOWN_RESOURCE {
			log.Errorf("operation %s has no resource class", op.Name())
			return nil, &circuit.UnknownResourceClass{Operation: op.Name(), Kind: op.Kind()}
		}
	}
	//
	if err := c.Propagate(latency); err != nil {
		return nil, err
	}
	//
	choices := make([]Choice, 0, c.NumOperations())
	//
	for range c.NumOperations() {
		c.UpdateDistribution()
		//
		choice, ok := minimumForce(c)
		if !ok {
			break
		}
		//
		log.Debugf("scheduling %s in cycle %d (force %.4f)", c.Operation(choice.Operation).Name(),
			choice.Cycle, choice.Force)
		//
		if err := c.Pin(choice.Operation, choice.Cycle); err != nil {
			return choices, err
		}
		//
		choices = append(choices, choice)
	}
	//
	c.UpdateDistribution()
	//
	for i := range c.NumOperations() {
		if op := c.Operation(circuit.OpId(i)); !op.IsScheduled() {
			return choices, fmt.Errorf("operation %s was not scheduled", op.Name())
		}
	}
	//
	return choices, nil
}

// Find the unscheduled operation and cycle with the least total force.  Ties
// are resolved in favour of the first pair encountered.
func minimumForce(c *circuit.Circuit) (Choice, bool) {
	var (
		best  = Choice{circuit.NO_OPERATION, 0, math.Inf(1)}
		found bool
	)
	//
	for i := range c.NumOperations() {
		id := circuit.OpId(i)
		op := c.Operation(id)
		//
		if op.IsScheduled() || op.IsMarker() {
			continue
		}
		//
		for cycle := op.Start(); cycle <= op.End(); cycle++ {
			if force := TotalForce(c, id, cycle); !found || force < best.Force {
				best, found = Choice{id, cycle, force}, true
			}
		}
	}
	//
	return best, found
}
