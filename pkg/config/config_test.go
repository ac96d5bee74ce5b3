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
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/go-hlsyn/pkg/circuit"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Config_01(t *testing.T) {
	cfg := Default()
	lib, err := cfg.Library()
	//
	require.NoError(t, err)
	assert.Equal(t, circuit.DefaultLibrary(), lib)
	assert.Equal(t, DEFAULT_MODULE, cfg.Module)
	//
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, level)
}

func Test_Config_02(t *testing.T) {
	cfg := load(t, "hlsyn.yaml", `
log_level: debug
module: Filter
latencies:
  multiplier: 3
delays:
  add: [1, 2, 3, 4, 5, 6]
`)
	//
	assert.Equal(t, "Filter", cfg.Module)
	checkLibrary(t, cfg)
}

func Test_Config_03(t *testing.T) {
	cfg := load(t, "hlsyn.toml", `
log_level = "debug"
module = "Filter"

[latencies]
multiplier = 3

[delays]
add = [1.0, 2.0, 3.0, 4.0, 5.0, 6.0]
`)
	//
	assert.Equal(t, "Filter", cfg.Module)
	checkLibrary(t, cfg)
}

func Test_Config_04(t *testing.T) {
	var tests = []struct {
		name string
		cfg  Config
	}{
		{"zero latency", Config{Latencies: Latencies{0, 2, 3, 1}}},
		{"unknown kind", Config{Latencies: Latencies{1, 2, 3, 1}, Delays: map[string][]float64{"fma": {1}}}},
		{"short table", Config{Latencies: Latencies{1, 2, 3, 1}, Delays: map[string][]float64{"add": {1, 2}}}},
		{"negative", Config{Latencies: Latencies{1, 2, 3, 1},
			Delays: map[string][]float64{"add": {1, 2, 3, 4, -5, 6}}}},
		{"branch", Config{Latencies: Latencies{1, 2, 3, 1},
			Delays: map[string][]float64{"branch": {1, 2, 3, 4, 5, 6}}}},
	}
	//
	for _, test := range tests {
		_, err := test.cfg.Library()
		assert.Error(t, err, test.name)
	}
}

func Test_Config_05(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "hlsyn.json")
	require.NoError(t, os.WriteFile(filename, []byte("{}"), 0600))
	//
	_, err := Load(filename)
	assert.ErrorContains(t, err, "unknown configuration format")
	//
	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading configuration")
	//
	cfg := Default()
	cfg.LogLevel = "chatty"
	_, err = cfg.Level()
	assert.ErrorContains(t, err, "invalid log_level")
}

func load(t *testing.T, name string, text string) *Config {
	t.Helper()
	//
	filename := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filename, []byte(text), 0600))
	//
	cfg, err := Load(filename)
	require.NoError(t, err)
	//
	return cfg
}

// Check the library described by the documents above.
func checkLibrary(t *testing.T, cfg *Config) {
	t.Helper()
	//
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, level)
	//
	lib, err := cfg.Library()
	require.NoError(t, err)
	// Unchanged
	assert.Equal(t, uint(1), lib.Latency(circuit.ALU))
	assert.Equal(t, uint(3), lib.Latency(circuit.DIVIDER))
	assert.Equal(t, circuit.DefaultLibrary().Delays(circuit.SUB), lib.Delays(circuit.SUB))
	// Overridden
	assert.Equal(t, uint(3), lib.Latency(circuit.MULTIPLIER))
	assert.Equal(t, circuit.DelayTable{1, 2, 3, 4, 5, 6}, lib.Delays(circuit.ADD))
}
