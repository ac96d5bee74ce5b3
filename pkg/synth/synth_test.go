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
	"errors"
	"testing"

	"github.com/consensys/go-hlsyn/pkg/circuit"
	"github.com/consensys/go-hlsyn/pkg/netlist"
	"github.com/consensys/go-hlsyn/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Synth_01(t *testing.T) {
	c := parse(t, "input Int8 a, b\noutput Int8 o\no = a + b")
	//
	result, err := Run(c, 4)
	require.NoError(t, err)
	//
	add := c.Operation(0)
	assert.True(t, add.IsScheduled())
	assert.Equal(t, uint(1), add.Cycle())
	assert.InDelta(t, 4.924, c.CriticalPath(), 1e-9)
	assert.Len(t, result.Choices, 1)
	assert.Len(t, result.Timings, 2)
	//
	require.Equal(t, uint(6), result.Machine.NumStates())
	//
	for i, s := range result.Machine.States() {
		assert.Equal(t, uint(i), s.Cycle())
	}
}

// Multiply, then add: the add must wait for the multiplier.
func Test_Synth_02(t *testing.T) {
	c := parse(t, "input Int8 a, b, c\nvariable Int8 x\noutput Int8 o\nx = a * b\no = x + c")
	//
	_, err := Run(c, 3)
	require.NoError(t, err)
	assert.Equal(t, uint(1), c.Operation(0).Cycle())
	assert.Equal(t, uint(3), c.Operation(1).Cycle())
}

func Test_Synth_03(t *testing.T) {
	c := parse(t, "input Int8 a, b, c\nvariable Int8 x\noutput Int8 o\nx = a * b\no = x + c")
	//
	_, err := Run(c, 2)
	//
	var infeasible *circuit.LatencyInfeasible
	//
	require.Error(t, err)
	assert.True(t, errors.As(err, &infeasible))
}

func parse(t *testing.T, text string) *circuit.Circuit {
	t.Helper()
	//
	c, errs := netlist.Parse(source.NewSourceFile("test.net", []byte(text)), nil)
	require.Empty(t, errs)
	//
	return c
}
