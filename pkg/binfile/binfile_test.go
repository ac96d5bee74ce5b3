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
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/go-hlsyn/pkg/circuit"
	"github.com/consensys/go-hlsyn/pkg/fsm"
	"github.com/consensys/go-hlsyn/pkg/schedule"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Snapshot_01(t *testing.T) {
	snapshot := adder(t)
	//
	require.Len(t, snapshot.Nets, 3)
	require.Len(t, snapshot.Operations, 1)
	require.Len(t, snapshot.States, 5)
	require.Len(t, snapshot.Distribution, circuit.NUM_RESOURCE_CLASSES)
	//
	add := snapshot.Operations[0]
	assert.Equal(t, "add(o)", add.Name)
	assert.Equal(t, "add", add.Kind)
	assert.Equal(t, []PortRecord{{0, "a"}, {1, "b"}}, add.Inputs)
	assert.Equal(t, []PortRecord{{2, "sum"}}, add.Outputs)
	assert.True(t, add.Scheduled)
	assert.Equal(t, uint(1), add.Cycle)
	//
	assert.Equal(t, "alu", snapshot.Distribution[circuit.ALU].Class)
	assert.Equal(t, []float64{1, 0, 0}, snapshot.Distribution[circuit.ALU].Cycles)
	assert.Equal(t, []TransitionRecord{{"start", uint(circuit.NO_NET), 1}, {"idle", uint(circuit.NO_NET), 0}},
		snapshot.States[0].Transitions)
}

func Test_Snapshot_02(t *testing.T) {
	snapshot := adder(t)
	filename := filepath.Join(t.TempDir(), "adder.bin")
	//
	require.NoError(t, WriteFile(filename, snapshot))
	//
	loaded, err := ReadFile(filename)
	require.NoError(t, err)
	//
	if diff := cmp.Diff(snapshot, loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("snapshot changed after reloading (-want +got):\n%s", diff)
	}
}

func Test_Snapshot_03(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.bin")
	require.NoError(t, os.WriteFile(garbage, []byte("not a snapshot"), 0600))
	//
	_, err := ReadFile(garbage)
	assert.ErrorContains(t, err, "not a snapshot file")
	// Bump the major version
	data, err := adder(t).MarshalBinary()
	require.NoError(t, err)
	data[9]++
	//
	var snapshot Snapshot
	assert.ErrorContains(t, snapshot.UnmarshalBinary(data), "incompatible binary file")
	assert.Error(t, snapshot.UnmarshalBinary(data[:4]))
}

// o = a + b, scheduled within three cycles.
func adder(t *testing.T) *Snapshot {
	t.Helper()
	//
	c := circuit.NewCircuit(nil)
	a, _ := c.NewNet("a", "a", circuit.INPUT, circuit.SIGNED, 8)
	b, _ := c.NewNet("b", "b", circuit.INPUT, circuit.SIGNED, 8)
	o, _ := c.NewNet("o", "o", circuit.OUTPUT, circuit.SIGNED, 8)
	add := c.NewOperation(circuit.ADD, circuit.UNCONDITIONAL)
	c.Connect(add, a, circuit.OPERAND_A)
	c.Connect(add, b, circuit.OPERAND_B)
	require.NoError(t, c.Drive(add, o, circuit.SUM))
	//
	_, err := schedule.ForceDirected(c, 3)
	require.NoError(t, err)
	//
	m, err := fsm.Link(c)
	require.NoError(t, err)
	//
	return NewSnapshot(c, m)
}
