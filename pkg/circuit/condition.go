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

// ConditionId identifies an entry in the condition table of a circuit.
type ConditionId uint

// UNCONDITIONAL is the root of every condition table.  Operations tagged with
// it execute on every path through the state machine.
const UNCONDITIONAL ConditionId = 0

// BranchKind identifies which side of an if/else construct a condition
// covers.
type BranchKind uint8

const (
	// ALWAYS is the kind of the root condition.
	ALWAYS BranchKind = iota
	// UNDER_IF covers the side taken when the tested flag is set.
	UNDER_IF
	// UNDER_ELSE covers the side taken when the tested flag is clear.
	UNDER_ELSE
)

func (p BranchKind) String() string {
	switch p {
	case UNDER_IF:
		return "if"
	case UNDER_ELSE:
		return "else"
	default:
		return "always"
	}
}

// Condition describes one side of an if/else construct.  Conditions nest,
// with each referring to the condition in force when its branch was opened.
type Condition struct {
	// Side of the branch covered.
	Kind BranchKind
	// Flag tested to select this side.
	Flag NetId
	// Branch marker which opened this condition.
	Marker OpId
	// Enclosing condition.
	Parent ConditionId
}
