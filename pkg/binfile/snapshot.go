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
package binfile

import (
	"github.com/consensys/go-hlsyn/pkg/circuit"
	"github.com/consensys/go-hlsyn/pkg/fsm"
)

// Snapshot is a self-contained record of a scheduled circuit and its state
// machine, suitable for saving to disk and inspecting later.  Identifiers
// (e.g. of nets) are indices into the corresponding arrays.
type Snapshot struct {
	Latency      uint           `msgpack:"latency"`
	CriticalPath float64        `msgpack:"critical_path"`
	Nets         []NetRecord    `msgpack:"nets"`
	Operations   []OpRecord     `msgpack:"operations"`
	States       []StateRecord  `msgpack:"states"`
	Distribution []Distribution `msgpack:"distribution"`
}

// NetRecord records a single net.
type NetRecord struct {
	Name     string  `msgpack:"name"`
	Variable string  `msgpack:"variable"`
	Kind     string  `msgpack:"kind"`
	Signed   bool    `msgpack:"signed"`
	Width    uint    `msgpack:"width"`
	Asap     uint    `msgpack:"asap"`
	Alap     uint    `msgpack:"alap"`
	Delay    float64 `msgpack:"delay"`
}

// PortRecord records a connection between an operation and a net.
type PortRecord struct {
	Net  uint   `msgpack:"net"`
	Role string `msgpack:"role"`
}

// OpRecord records a single operation, including its window and assigned
// cycle.
type OpRecord struct {
	Name      string       `msgpack:"name"`
	Kind      string       `msgpack:"kind"`
	Condition uint         `msgpack:"condition"`
	Inputs    []PortRecord `msgpack:"inputs"`
	Outputs   []PortRecord `msgpack:"outputs"`
	Width     uint         `msgpack:"width"`
	Signed    bool         `msgpack:"signed"`
	Delay     float64      `msgpack:"delay"`
	Start     uint         `msgpack:"start"`
	End       uint         `msgpack:"end"`
	Cycle     uint         `msgpack:"cycle"`
	Scheduled bool         `msgpack:"scheduled"`
}

// StateRecord records a single state of the state machine.
type StateRecord struct {
	Cycle       uint               `msgpack:"cycle"`
	Condition   uint               `msgpack:"condition"`
	Operations  []uint             `msgpack:"operations"`
	Transitions []TransitionRecord `msgpack:"transitions"`
}

// TransitionRecord records a transition between states.  Flag is meaningful
// only for guards which test a flag.
type TransitionRecord struct {
	Guard  string `msgpack:"guard"`
	Flag   uint   `msgpack:"flag"`
	Target uint   `msgpack:"target"`
}

// Distribution records the distribution graph of a resource class.
type Distribution struct {
	Class  string    `msgpack:"class"`
	Cycles []float64 `msgpack:"cycles"`
}

// NewSnapshot records a circuit along with the state machine linked from it.
// The machine may be nil, if linking was never attempted.
func NewSnapshot(c *circuit.Circuit, machine *fsm.Machine) *Snapshot {
	snapshot := &Snapshot{Latency: c.Latency(), CriticalPath: c.CriticalPath()}
	//
	for i := range c.NumNets() {
		net := c.Net(circuit.NetId(i))
		snapshot.Nets = append(snapshot.Nets, NetRecord{
			net.Name(), net.Variable(), net.Kind().String(), net.Sign() == circuit.SIGNED, net.Width(),
			net.Asap(), net.Alap(), net.Delay(),
		})
	}
	//
	for i := range c.NumOperations() {
		op := c.Operation(circuit.OpId(i))
		snapshot.Operations = append(snapshot.Operations, OpRecord{
			op.Name(), op.Kind().String(), uint(op.Condition()), ports(op.Inputs()), ports(op.Outputs()),
			op.Width(), op.IsSigned(), op.Delay(), op.Start(), op.End(), op.Cycle(), op.IsScheduled(),
		})
	}
	//
	for class := range circuit.NUM_RESOURCE_CLASSES {
		rc := circuit.ResourceClass(class)
		snapshot.Distribution = append(snapshot.Distribution, Distribution{rc.String(), c.DistributionGraph(rc)})
	}
	//
	if machine != nil {
		for _, state := range machine.States() {
			snapshot.States = append(snapshot.States, newStateRecord(&state))
		}
	}
	//
	return snapshot
}

func newStateRecord(state *fsm.State) StateRecord {
	record := StateRecord{Cycle: state.Cycle(), Condition: uint(state.Condition())}
	//
	for _, op := range state.Operations() {
		record.Operations = append(record.Operations, uint(op))
	}
	//
	for _, t := range state.Transitions() {
		record.Transitions = append(record.Transitions, TransitionRecord{t.Guard.String(), uint(t.Flag), t.Target})
	}
	//
	return record
}

func ports(ports []circuit.Port) []PortRecord {
	records := make([]PortRecord, len(ports))
	//
	for i, p := range ports {
		records[i] = PortRecord{uint(p.Net), p.Role.String()}
	}
	//
	return records
}
