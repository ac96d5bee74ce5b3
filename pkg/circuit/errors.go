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

// UndeclaredReference is reported when a name is used without having been
// declared.
type UndeclaredReference struct {
	Name string
}

func (p *UndeclaredReference) Error() string {
	return fmt.Sprintf("undeclared reference %q", p.Name)
}

// UnknownResourceClass is reported when an operation whose kind has no
// resource class reaches the scheduler.
type UnknownResourceClass struct {
	Operation string
	Kind      OpKind
}

func (p *UnknownResourceClass) Error() string {
	return fmt.Sprintf("operation %s has no resource class (%s)", p.Operation, p.Kind)
}

// LatencyInfeasible is reported when the latency budget cannot accommodate
// some operation.  Cycle is the cycle which the operation would have needed
// to occupy (possibly zero, or beyond the budget).
type LatencyInfeasible struct {
	Operation string
	Cycle     int
	Latency   uint
}

func (p *LatencyInfeasible) Error() string {
	return fmt.Sprintf("latency %d infeasible: operation %s requires cycle %d", p.Latency, p.Operation, p.Cycle)
}

// InvalidCycleRequest is reported when an operation is pinned to a cycle
// outside the latency budget or outside its window.
type InvalidCycleRequest struct {
	Operation string
	Cycle     uint
	Start     uint
	End       uint
}

func (p *InvalidCycleRequest) Error() string {
	return fmt.Sprintf("cannot schedule operation %s in cycle %d (window %d..%d)",
		p.Operation, p.Cycle, p.Start, p.End)
}
