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
package netlist

import (
	"strings"
	"testing"

	"github.com/consensys/go-hlsyn/pkg/circuit"
	"github.com/consensys/go-hlsyn/pkg/util/source"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Declarations
// ============================================================================

func Test_Parse_01(t *testing.T) {
	c := parse(t, "input Int8 a, b\noutput UInt16 o\nwire Int32 w\n// nothing else\n")
	//
	require.Equal(t, uint(4), c.NumNets())
	checkNet(t, c, "a", circuit.INPUT, circuit.SIGNED, 8)
	checkNet(t, c, "b", circuit.INPUT, circuit.SIGNED, 8)
	checkNet(t, c, "o", circuit.OUTPUT, circuit.UNSIGNED, 16)
	checkNet(t, c, "w", circuit.WIRE, circuit.SIGNED, 32)
	assert.Len(t, c.Inputs(), 2)
	assert.Len(t, c.Outputs(), 1)
	assert.Equal(t, uint(0), c.NumOperations())
}

func Test_Parse_02(t *testing.T) {
	c := parse(t, "register UInt1 r variable Int64 v")
	//
	checkNet(t, c, "r", circuit.REGISTER_NET, circuit.UNSIGNED, 1)
	checkNet(t, c, "v", circuit.VARIABLE, circuit.SIGNED, 64)
}

// ============================================================================
// Operations
// ============================================================================

func Test_Parse_03(t *testing.T) {
	c := parse(t, "input Int8 a, b\noutput Int8 o\no = a + b")
	//
	checkOp(t, c, 0, circuit.ADD, circuit.UNCONDITIONAL, "o", circuit.SUM,
		in(c, "a", circuit.OPERAND_A), in(c, "b", circuit.OPERAND_B))
	assert.Equal(t, "add(o)", c.Operation(0).Name())
}

func Test_Parse_04(t *testing.T) {
	var tests = []struct {
		expr   string
		kind   circuit.OpKind
		output circuit.PortRole
		rhs    circuit.PortRole
	}{
		{"a - b", circuit.SUB, circuit.DIFFERENCE, circuit.OPERAND_B},
		{"a * b", circuit.MUL, circuit.PRODUCT, circuit.OPERAND_B},
		{"a / b", circuit.DIV, circuit.QUOTIENT, circuit.OPERAND_B},
		{"a % b", circuit.MOD, circuit.REMAINDER, circuit.OPERAND_B},
		{"a << b", circuit.SHL, circuit.DATAPATH_OUT, circuit.SHIFT_AMOUNT},
		{"a >> b", circuit.SHR, circuit.DATAPATH_OUT, circuit.SHIFT_AMOUNT},
		{"a < b", circuit.COMPARE, circuit.LESS_THAN, circuit.OPERAND_B},
		{"a > b", circuit.COMPARE, circuit.GREATER_THAN, circuit.OPERAND_B},
		{"a == b", circuit.COMPARE, circuit.EQUAL, circuit.OPERAND_B},
	}
	//
	for _, test := range tests {
		c := parse(t, "input Int8 a, b\noutput Int8 o\no = "+test.expr)
		//
		checkOp(t, c, 0, test.kind, circuit.UNCONDITIONAL, "o", test.output,
			in(c, "a", circuit.OPERAND_A), in(c, "b", test.rhs))
	}
}

// Increment, decrement and copy
func Test_Parse_05(t *testing.T) {
	c := parse(t, "input Int8 a\nvariable Int8 x, y, z\nx = a + 1\ny = a - 1\nz = a")
	//
	checkOp(t, c, 0, circuit.INC, circuit.UNCONDITIONAL, "x", circuit.SUM, in(c, "a", circuit.OPERAND_A))
	checkOp(t, c, 1, circuit.DEC, circuit.UNCONDITIONAL, "y", circuit.DIFFERENCE, in(c, "a", circuit.OPERAND_A))
	checkOp(t, c, 2, circuit.REGISTER, circuit.UNCONDITIONAL, "z", circuit.REGISTER_OUT,
		in(c, "a", circuit.OPERAND_A))
}

func Test_Parse_06(t *testing.T) {
	c := parse(t, "input Int8 a, b\ninput UInt1 s\noutput Int8 o\no = s ? a : b")
	//
	checkOp(t, c, 0, circuit.MUX, circuit.UNCONDITIONAL, "o", circuit.DATAPATH_OUT,
		in(c, "s", circuit.SELECT), in(c, "a", circuit.OPERAND_A), in(c, "b", circuit.OPERAND_B))
}

// ============================================================================
// Versions
// ============================================================================

// Write after write
func Test_Parse_07(t *testing.T) {
	c := parse(t, "input Int8 a\nvariable Int8 y\noutput Int8 o\ny = a + 1\ny = y + 1\no = y")
	//
	v1 := lookup(t, c, "y#1")
	assert.Equal(t, "y", c.Net(v1).Variable())
	//
	checkOp(t, c, 0, circuit.INC, circuit.UNCONDITIONAL, "y", circuit.SUM, in(c, "a", circuit.OPERAND_A))
	checkOp(t, c, 1, circuit.INC, circuit.UNCONDITIONAL, "y#1", circuit.SUM, in(c, "y", circuit.OPERAND_A))
	checkOp(t, c, 2, circuit.REGISTER, circuit.UNCONDITIONAL, "o", circuit.REGISTER_OUT,
		in(c, "y#1", circuit.OPERAND_A))
}

// Write after read
func Test_Parse_08(t *testing.T) {
	c := parse(t, "input Int8 a\nvariable Int8 x, y\nx = a + 1\ny = x + 1\nx = a - 1")
	//
	checkOp(t, c, 2, circuit.DEC, circuit.UNCONDITIONAL, "x#1", circuit.DIFFERENCE,
		in(c, "a", circuit.OPERAND_A), in(c, "x", circuit.PRIOR_VALUE), in(c, "y", circuit.PRIOR_VALUE))
}

// Reading before writing creates a fresh version
func Test_Parse_09(t *testing.T) {
	c := parse(t, "input Int8 a\nvariable Int8 x\nx = x + 1")
	//
	checkOp(t, c, 0, circuit.INC, circuit.UNCONDITIONAL, "x#1", circuit.SUM, in(c, "x", circuit.OPERAND_A))
	assert.False(t, c.Net(lookup(t, c, "x")).IsDriven())
}

// ============================================================================
// Branches
// ============================================================================

func Test_Parse_10(t *testing.T) {
	c := parse(t, `input Int8 a
input UInt1 c
variable Int8 x
output Int8 o
if ( c ) {
  x = a + 1
} else {
  x = a - 1
}
o = x`)
	//
	require.Equal(t, uint(3), c.NumConditions())
	checkOp(t, c, 0, circuit.BRANCH, circuit.UNCONDITIONAL, "c_if", circuit.IF_CONDITION,
		in(c, "c", circuit.SELECT))
	assert.Equal(t, lookup(t, c, "c_else"), c.Operation(0).Output(circuit.ELSE_CONDITION))
	checkOp(t, c, 1, circuit.INC, 1, "x", circuit.SUM,
		in(c, "a", circuit.OPERAND_A), in(c, "c_if", circuit.IF_CONDITION))
	// Not ordered after the if side
	checkOp(t, c, 2, circuit.DEC, 2, "x#1", circuit.DIFFERENCE,
		in(c, "a", circuit.OPERAND_A), in(c, "c_else", circuit.ELSE_CONDITION))
	// Either version may reach here
	checkOp(t, c, 3, circuit.REGISTER, circuit.UNCONDITIONAL, "o", circuit.REGISTER_OUT,
		in(c, "x", circuit.OPERAND_A), in(c, "x#1", circuit.PRIOR_VALUE))
}

// Consecutive branches are sequenced
func Test_Parse_11(t *testing.T) {
	c := parse(t, `input UInt1 c, d
input Int8 a
variable Int8 x, y
if ( c ) { x = a + 1 }
if ( d ) { y = a + 1 }`)
	//
	checkOp(t, c, 2, circuit.BRANCH, circuit.UNCONDITIONAL, "d_if", circuit.IF_CONDITION,
		in(c, "d", circuit.SELECT), in(c, "c_if", circuit.PRIOR_VALUE), in(c, "c_else", circuit.PRIOR_VALUE),
		in(c, "x", circuit.PRIOR_VALUE))
}

// Nested branches
func Test_Parse_12(t *testing.T) {
	c := parse(t, `input UInt1 c, d
input Int8 a
variable Int8 x
if ( c ) {
  if ( d ) {
    x = a + 1
  }
}`)
	//
	require.Equal(t, uint(5), c.NumConditions())
	assert.Equal(t, circuit.ConditionId(1), c.Condition(3).Parent)
	checkOp(t, c, 1, circuit.BRANCH, 1, "d_if", circuit.IF_CONDITION,
		in(c, "d", circuit.SELECT), in(c, "c_if", circuit.IF_CONDITION))
	checkOp(t, c, 2, circuit.INC, 3, "x", circuit.SUM,
		in(c, "a", circuit.OPERAND_A), in(c, "d_if", circuit.IF_CONDITION))
	assert.True(t, c.Encloses(1, 3))
}

// ============================================================================
// Errors
// ============================================================================

func Test_ParseError_01(t *testing.T) {
	checkError(t, "output Int8 o\no = a + b", 2, `undeclared reference "a"`)
}

func Test_ParseError_02(t *testing.T) {
	checkError(t, "input Int8 a\noutput Int8 o\no = a + 2", 3, "unsupported constant")
}

func Test_ParseError_03(t *testing.T) {
	checkError(t, "input Int8 a, b\nb = a", 2, "cannot assign input b")
}

func Test_ParseError_04(t *testing.T) {
	checkError(t, "input UInt1 c\nif ( c ) {\n", 3, "missing }")
}

func Test_ParseError_05(t *testing.T) {
	checkError(t, "input Int7 a", 1, "unknown type")
}

func Test_ParseError_06(t *testing.T) {
	checkError(t, "input Int8 a $", 1, "unknown character")
}

func Test_ParseError_07(t *testing.T) {
	checkError(t, "input Int8 a\n}", 2, "unexpected }")
}

func Test_ParseError_08(t *testing.T) {
	checkError(t, "input Int8 a, a", 1, "a already declared")
}

func Test_ParseError_09(t *testing.T) {
	checkError(t, "input UInt1 c\nif ( c ) { } else { } else { }", 2, "duplicate else")
}

func Test_ParseError_10(t *testing.T) {
	checkError(t, "input UInt1 c\nelse { }", 2, "else without if")
}

// ============================================================================
// Helpers
// ============================================================================

func parse(t *testing.T, text string) *circuit.Circuit {
	t.Helper()
	//
	c, errs := Parse(source.NewSourceFile("test.net", []byte(text)), nil)
	//
	for _, err := range errs {
		t.Error(err.Error())
	}
	//
	require.NotNil(t, c)
	//
	return c
}

func checkError(t *testing.T, text string, line int, msg string) {
	t.Helper()
	//
	c, errs := Parse(source.NewSourceFile("test.net", []byte(text)), nil)
	//
	require.Nil(t, c)
	require.Len(t, errs, 1)
	assert.Equal(t, msg, errs[0].Message())
	assert.Equal(t, line, errs[0].Line().Number())
	assert.True(t, strings.HasPrefix(errs[0].Error(), "test.net:"))
}

func lookup(t *testing.T, c *circuit.Circuit, name string) circuit.NetId {
	t.Helper()
	//
	id, ok := c.Lookup(name)
	require.True(t, ok, "unknown net %s", name)
	//
	return id
}

func checkNet(t *testing.T, c *circuit.Circuit, name string, kind circuit.NetKind, sign circuit.Sign,
	width uint) {
	t.Helper()
	//
	net := c.Net(lookup(t, c, name))
	assert.Equal(t, kind, net.Kind())
	assert.Equal(t, sign, net.Sign())
	assert.Equal(t, width, net.Width())
	assert.Equal(t, name, net.Variable())
}

func in(c *circuit.Circuit, name string, role circuit.PortRole) circuit.Port {
	id, _ := c.Lookup(name)
	return circuit.Port{Net: id, Role: role}
}

func checkOp(t *testing.T, c *circuit.Circuit, id circuit.OpId, kind circuit.OpKind, cond circuit.ConditionId,
	output string, role circuit.PortRole, inputs ...circuit.Port) {
	t.Helper()
	//
	require.Less(t, uint(id), c.NumOperations())
	//
	op := c.Operation(id)
	assert.Equal(t, kind, op.Kind())
	assert.Equal(t, cond, op.Condition())
	assert.Equal(t, lookup(t, c, output), op.Output(role))
	//
	if diff := cmp.Diff(inputs, op.Inputs()); diff != "" {
		t.Errorf("operation %s has unexpected inputs (-want +got):\n%s", op.Name(), diff)
	}
}
