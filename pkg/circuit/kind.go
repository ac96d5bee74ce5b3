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

// OpKind identifies the function computed by an operation.
type OpKind uint8

const (
	// REGISTER loads a value into a register.
	REGISTER OpKind = iota
	// ADD computes the sum of two operands.
	ADD
	// SUB computes the difference of two operands.
	SUB
	// MUL computes the product of two operands.
	MUL
	// DIV computes the quotient of two operands.
	DIV
	// MOD computes the remainder of two operands.
	MOD
	// MUX selects one of two operands.
	MUX
	// COMPARE compares two operands, producing a single flag.  Which flag is
	// determined by the role of its output port.
	COMPARE
	// SHL shifts left.
	SHL
	// SHR shifts right.
	SHR
	// INC increments by one.
	INC
	// DEC decrements by one.
	DEC
	// BRANCH opens an if/else construct.  It computes nothing, but marks the
	// point at which the state machine splits.
	BRANCH
)

// NUM_KINDS is the number of operation kinds.
const NUM_KINDS = int(BRANCH) + 1

var kindNames = [NUM_KINDS]string{
	"reg", "add", "sub", "mul", "div", "mod", "mux", "comp", "shl", "shr", "inc", "dec", "branch",
}

func (p OpKind) String() string {
	if int(p) < NUM_KINDS {
		return kindNames[p]
	}
	//
	return fmt.Sprintf("kind(%d)", p)
}

// ParseOpKind returns the kind with the given name.
func ParseOpKind(name string) (OpKind, bool) {
	for i, n := range kindNames {
		if n == name {
			return OpKind(i), true
		}
	}
	//
	return 0, false
}

// Class returns the resource class used by operations of this kind.  Kinds
// with no mapping return UNKNOWN_RESOURCE.
func (p OpKind) Class() ResourceClass {
	switch p {
	case MUL:
		return MULTIPLIER
	case DIV, MOD:
		return DIVIDER
	case MUX, COMPARE, SHL, SHR:
		return LOGICAL
	case ADD, SUB, INC, DEC:
		return ALU
	case REGISTER, BRANCH:
		return NO_RESOURCE
	default:
		return UNKNOWN_RESOURCE
	}
}

// ResourceClass groups operation kinds which compete for the same functional
// unit.
type ResourceClass uint8

const (
	// ALU covers adders, subtractors, incrementers and decrementers.
	ALU ResourceClass = iota
	// MULTIPLIER covers multiplication.
	MULTIPLIER
	// DIVIDER covers division and modulo.
	DIVIDER
	// LOGICAL covers multiplexers, comparators and shifters.
	LOGICAL
	// NO_RESOURCE covers operations which consume no functional unit.
	NO_RESOURCE
	// UNKNOWN_RESOURCE is returned for kinds outside the class table.
	UNKNOWN_RESOURCE
)

// NUM_RESOURCE_CLASSES is the number of classes for which distribution graphs
// are maintained.
const NUM_RESOURCE_CLASSES = int(NO_RESOURCE)

var classNames = []string{"alu", "multiplier", "divider", "logical", "none", "unknown"}

func (p ResourceClass) String() string {
	if int(p) < len(classNames) {
		return classNames[p]
	}
	//
	return fmt.Sprintf("class(%d)", p)
}

// IsTracked determines whether operations of this class compete for
// functional units.
func (p ResourceClass) IsTracked() bool {
	return p < NO_RESOURCE
}

// PortRole identifies the purpose of a net attached to an operation.
type PortRole uint8

const (
	// OPERAND_A is the first (left) datapath operand.
	OPERAND_A PortRole = iota
	// OPERAND_B is the second (right) datapath operand.
	OPERAND_B
	// SELECT is the select line of a multiplexer.
	SELECT
	// SHIFT_AMOUNT is the shift distance of a shifter.
	SHIFT_AMOUNT
	// IF_CONDITION gates an operation on the true side of a branch.  On a
	// branch marker it identifies the tested flag and the true-side output.
	IF_CONDITION
	// ELSE_CONDITION gates an operation on the false side of a branch.
	ELSE_CONDITION
	// PRIOR_VALUE orders an operation after the producer of some earlier
	// value, without consuming it.
	PRIOR_VALUE
	// SUM is the output of an adder or incrementer.
	SUM
	// DIFFERENCE is the output of a subtractor or decrementer.
	DIFFERENCE
	// PRODUCT is the output of a multiplier.
	PRODUCT
	// QUOTIENT is the output of a divider.
	QUOTIENT
	// REMAINDER is the output of a modulo unit.
	REMAINDER
	// DATAPATH_OUT is the output of a multiplexer or shifter.
	DATAPATH_OUT
	// REGISTER_OUT is the output of a register load.
	REGISTER_OUT
	// GREATER_THAN is the output of a comparator testing a > b.
	GREATER_THAN
	// LESS_THAN is the output of a comparator testing a < b.
	LESS_THAN
	// EQUAL is the output of a comparator testing a == b.
	EQUAL
)

var roleNames = []string{
	"a", "b", "sel", "shamt", "if", "else", "prior", "sum", "diff", "prod", "quot", "rem", "d", "q", "gt", "lt", "eq",
}

func (p PortRole) String() string {
	if int(p) < len(roleNames) {
		return roleNames[p]
	}
	//
	return fmt.Sprintf("role(%d)", p)
}

// IsData determines whether a net attached with this role carries datapath
// values through the operation (and hence contributes combinational delay).
func (p PortRole) IsData() bool {
	return p <= SHIFT_AMOUNT
}

// Port attaches a net to an operation with a given role.
type Port struct {
	Net  NetId
	Role PortRole
}
