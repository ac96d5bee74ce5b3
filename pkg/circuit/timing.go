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

	log "github.com/sirupsen/logrus"
)

// Propagate performs a complete timing analysis of this circuit against a
// given latency budget.  This computes the critical path, then every
// operation's earliest (ASAP) and latest (ALAP) start cycle.  Branch markers
// are fixed at their earliest cycle.  Any previously assigned cycles are
// discarded.  This fails if the budget is too small to accommodate some
// operation.
func (p *Circuit) Propagate(latency uint) error {
	if latency == 0 {
		return fmt.Errorf("latency must be positive")
	}
	//
	p.latency = latency
	p.distribution = [NUM_RESOURCE_CLASSES][]float64{}
	//
	p.CalculateDelay()
	log.Debugf("critical path is %.3fns", p.criticalPath)
	//
	if err := p.ScheduleAsap(); err != nil {
		return err
	}
	// Branch markers occupy their earliest cycle.
	for i := range p.operations {
		if op := &p.operations[i]; op.IsMarker() {
			op.pin(op.start)
		}
	}
	//
	if err := p.ScheduleAlap(); err != nil {
		return err
	}
	//
	return p.checkWindows()
}

// CalculateDelay determines the combinational delay of every operation and
// net, returning the critical path of the circuit.  Delays flow through the
// datapath inputs of operations, accumulating until a register is reached
// (which restarts the chain at its own delay).
func (p *Circuit) CalculateDelay() float64 {
	type arrival struct {
		net   NetId
		delay float64
	}
	//
	var worklist []arrival
	//
	for i := range p.nets {
		p.nets[i].delay = UNKNOWN_DELAY
		// Graph inputs (and anything else with no driver) settle immediately
		if !p.nets[i].IsDriven() {
			worklist = append(worklist, arrival{NetId(i), 0})
		}
	}
	//
	for i := range p.operations {
		op := &p.operations[i]
		p.resolve(op)
		// Operations without datapath inputs settle after their own delay
		if !op.IsMarker() && !hasDataInput(op) {
			for _, out := range op.outputs {
				worklist = append(worklist, arrival{out.Net, op.delay})
			}
		}
	}
	//
	for len(worklist) > 0 {
		next := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		net := &p.nets[next.net]
		//
		if next.delay <= net.delay {
			continue
		}
		//
		net.delay = next.delay
		//
		for _, r := range uniqueOps(net.receivers) {
			op := &p.operations[r]
			//
			if !readsData(op, next.net) {
				continue
			}
			//
			delay := next.delay + op.delay
			if op.kind == REGISTER {
				delay = op.delay
			}
			//
			for _, out := range op.outputs {
				worklist = append(worklist, arrival{out.Net, delay})
			}
		}
	}
	//
	p.criticalPath = 0
	for i := range p.nets {
		p.criticalPath = max(p.criticalPath, p.nets[i].delay)
	}
	//
	return p.criticalPath
}

// ScheduleAsap determines the earliest cycle in which every operation can
// start.  Graph inputs (and any other undriven net) are available in cycle 1,
// and an operation's outputs become available a fixed number of steps after
// it starts.  Any previously fixed cycles are discarded.  This fails if some
// operation cannot start within the latency budget.
func (p *Circuit) ScheduleAsap() error {
	var worklist []availability
	//
	for i := range p.nets {
		p.nets[i].asap = 0
		//
		if !p.nets[i].IsDriven() {
			worklist = append(worklist, availability{NetId(i), 1})
		}
	}
	//
	for i := range p.operations {
		op := &p.operations[i]
		op.start, op.cycle, op.scheduled = 0, 0, false
		//
		if len(op.inputs) == 0 {
			op.start = 1
			worklist = append(worklist, p.outputsAt(op, 1+p.library.Step(op.kind))...)
		}
	}
	//
	for len(worklist) > 0 {
		next := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		net := &p.nets[next.net]
		//
		if next.cycle <= net.asap {
			continue
		}
		//
		net.asap = next.cycle
		//
		for _, r := range uniqueOps(net.receivers) {
			if op := &p.operations[r]; next.cycle > op.start {
				op.start = next.cycle
				worklist = append(worklist, p.outputsAt(op, next.cycle+p.library.Step(op.kind))...)
			}
		}
	}
	//
	for i := range p.operations {
		if op := &p.operations[i]; op.start > p.latency {
			log.Errorf("operation %s cannot start before cycle %d (latency %d)", op.name, op.start, p.latency)
			return &LatencyInfeasible{op.name, int(op.start), p.latency}
		}
	}
	//
	return nil
}

// ScheduleAlap determines the latest cycle in which every operation can start
// such that all graph outputs (and any other unread net) are available by
// the cycle after the latency budget.  Operations which already have a fixed
// cycle constrain their predecessors accordingly.  This fails if some
// operation would have to start before cycle 1, or after its fixed cycle.
func (p *Circuit) ScheduleAlap() error {
	var (
		worklist []availability
		deadline = p.latency + 1
	)
	//
	for i := range p.nets {
		net := &p.nets[i]
		net.alap = UNBOUNDED
		//
		if net.kind == OUTPUT || len(net.receivers) == 0 {
			worklist = append(worklist, availability{NetId(i), deadline})
		}
	}
	//
	for i := range p.operations {
		op := &p.operations[i]
		//
		if op.scheduled {
			worklist = append(worklist, inputsAt(op, op.cycle)...)
		} else {
			op.end = UNBOUNDED
		}
	}
	//
	for len(worklist) > 0 {
		next := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		net := &p.nets[next.net]
		//
		if next.cycle >= net.alap {
			continue
		}
		//
		net.alap = next.cycle
		//
		if !net.IsDriven() {
			continue
		}
		//
		op := &p.operations[net.driver]
		step := p.library.Step(op.kind)
		//
		if next.cycle <= step {
			log.Errorf("operation %s must start by cycle %d to meet latency %d", op.name,
				int(next.cycle)-int(step), p.latency)
			//
			return &LatencyInfeasible{op.name, int(next.cycle) - int(step), p.latency}
		}
		//
		end := next.cycle - step
		//
		if op.scheduled && end < op.cycle {
			log.Errorf("operation %s fixed in cycle %d but required by cycle %d", op.name, op.cycle, end)
			return &LatencyInfeasible{op.name, int(end), p.latency}
		} else if !op.scheduled && end < op.end {
			op.end = end
			worklist = append(worklist, inputsAt(op, end)...)
		}
	}
	// Operations with no outputs are bounded only by the budget
	for i := range p.operations {
		if op := &p.operations[i]; op.end == UNBOUNDED {
			op.end = p.latency
		}
	}
	//
	return nil
}

// Pin fixes the cycle in which an operation starts, which must lie within both
// the latency budget and the operation's window.  The windows of all
// transitive successors and predecessors are tightened accordingly.
func (p *Circuit) Pin(id OpId, cycle uint) error {
	op := &p.operations[id]
	//
	if cycle < 1 || cycle > p.latency || cycle < op.start || cycle > op.end {
		return &InvalidCycleRequest{op.name, cycle, op.start, op.end}
	}
	//
	op.pin(cycle)
	p.tightenSuccessors(id)
	p.tightenPredecessors(id)
	//
	return nil
}

// Raise the earliest start of everything downstream of a given operation.
func (p *Circuit) tightenSuccessors(id OpId) {
	worklist := []OpId{id}
	//
	for len(worklist) > 0 {
		op := &p.operations[worklist[len(worklist)-1]]
		worklist = worklist[:len(worklist)-1]
		available := op.start + p.library.Step(op.kind)
		//
		for _, out := range op.outputs {
			net := &p.nets[out.Net]
			net.asap = max(net.asap, available)
			//
			for _, r := range net.receivers {
				if succ := &p.operations[r]; available > succ.start {
					succ.start = available
					worklist = append(worklist, r)
				}
			}
		}
	}
}

// Lower the latest start of everything upstream of a given operation.
func (p *Circuit) tightenPredecessors(id OpId) {
	worklist := []OpId{id}
	//
	for len(worklist) > 0 {
		op := &p.operations[worklist[len(worklist)-1]]
		worklist = worklist[:len(worklist)-1]
		//
		for _, in := range op.inputs {
			net := &p.nets[in.Net]
			net.alap = min(net.alap, op.end)
			//
			if !net.IsDriven() {
				continue
			}
			//
			pred := &p.operations[net.driver]
			//
			if end := op.end - p.library.Step(pred.kind); end < pred.end {
				pred.end = end
				worklist = append(worklist, net.driver)
			}
		}
	}
}

func (p *Circuit) checkWindows() error {
	for i := range p.operations {
		op := &p.operations[i]
		//
		if op.start < 1 || op.start > op.end || op.end > p.latency {
			log.Errorf("operation %s has empty window %d..%d (latency %d)", op.name, op.start, op.end, p.latency)
			return &LatencyInfeasible{op.name, int(op.start), p.latency}
		}
	}
	//
	return nil
}

// Determine the width, signedness and delay of an operation from the nets
// attached to it.
func (p *Circuit) resolve(op *Operation) {
	op.width, op.signed, op.delay = 0, false, 0
	//
	if op.kind == BRANCH {
		return
	}
	//
	for _, in := range op.inputs {
		if in.Role != OPERAND_A && in.Role != OPERAND_B {
			continue
		}
		//
		net := &p.nets[in.Net]
		//
		if op.kind == COMPARE {
			op.width = max(op.width, net.width)
		}
		//
		op.signed = op.signed || net.sign == SIGNED
	}
	//
	switch op.kind {
	case REGISTER, MUX, SHL, SHR:
		op.signed = false
	}
	//
	if op.kind != COMPARE && len(op.outputs) > 0 {
		op.width = p.nets[op.outputs[0].Net].width
	}
	//
	if delay, ok := p.library.Delay(op.kind, op.width); ok {
		op.delay = delay
	} else {
		log.Errorf("no delay for operation %s of width %d", op.name, op.width)
	}
}

type availability struct {
	net   NetId
	cycle uint
}

func (p *Circuit) outputsAt(op *Operation, cycle uint) []availability {
	items := make([]availability, len(op.outputs))
	for i, out := range op.outputs {
		items[i] = availability{out.Net, cycle}
	}
	//
	return items
}

func inputsAt(op *Operation, cycle uint) []availability {
	items := make([]availability, len(op.inputs))
	for i, in := range op.inputs {
		items[i] = availability{in.Net, cycle}
	}
	//
	return items
}

func hasDataInput(op *Operation) bool {
	for _, in := range op.inputs {
		if in.Role.IsData() {
			return true
		}
	}
	//
	return false
}

func readsData(op *Operation, net NetId) bool {
	for _, in := range op.inputs {
		if in.Net == net && in.Role.IsData() {
			return true
		}
	}
	//
	return false
}

// Remove duplicates from a list of operations, preserving order.
func uniqueOps(ops []OpId) []OpId {
	if len(ops) < 2 {
		return ops
	}
	//
	var (
		seen   = make(map[OpId]bool, len(ops))
		unique = make([]OpId, 0, len(ops))
	)
	//
	for _, op := range ops {
		if !seen[op] {
			seen[op] = true
			unique = append(unique, op)
		}
	}
	//
	return unique
}
