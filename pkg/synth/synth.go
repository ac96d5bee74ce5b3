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
package synth

import (
	"time"

	"github.com/consensys/go-hlsyn/pkg/circuit"
	"github.com/consensys/go-hlsyn/pkg/fsm"
	"github.com/consensys/go-hlsyn/pkg/schedule"
	"github.com/consensys/go-hlsyn/pkg/util"
	log "github.com/sirupsen/logrus"
)

// Result captures everything produced by synthesising a circuit.
type Result struct {
	Circuit *circuit.Circuit
	// Scheduling decisions, in the order they were made.
	Choices []schedule.Choice
	Machine *fsm.Machine
	Timings []Timing
}

// Timing records how long a pass took.
type Timing struct {
	Pass    string
	Elapsed time.Duration
}

// Run schedules a circuit within a given latency budget and links the result
// into a state machine.
func Run(c *circuit.Circuit, latency uint) (*Result, error) {
	var (
		result = &Result{Circuit: c}
		stats  = util.NewPerfStats()
		err    error
	)
	//
	if result.Choices, err = schedule.ForceDirected(c, latency); err != nil {
		log.Errorf("scheduling failed: %s", err)
		return nil, err
	}
	//
	result.Timings = append(result.Timings, Timing{"scheduling", stats.Log("scheduling")})
	stats = util.NewPerfStats()
	//
	if result.Machine, err = fsm.Link(c); err != nil {
		log.Errorf("linking failed: %s", err)
		return nil, err
	}
	//
	result.Timings = append(result.Timings, Timing{"linking", stats.Log("linking")})
	//
	log.Debugf("synthesised %d operations into %d states (critical path %.3fns)", c.NumOperations(),
		result.Machine.NumStates(), c.CriticalPath())
	//
	return result, nil
}
