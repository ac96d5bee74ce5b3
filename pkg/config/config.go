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
	"slices"
	"strings"

	"github.com/consensys/go-hlsyn/pkg/circuit"
	"github.com/naoina/toml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DEFAULT_MODULE is the name given to the generated Verilog module unless
// configured otherwise.
const DEFAULT_MODULE = "HLSM"

// Config holds the settings of a synthesis run which are not given on the
// command line.
type Config struct {
	// Logging level (e.g. "info" or "debug")
	LogLevel string `yaml:"log_level" toml:"log_level"`
	// Name of the generated Verilog module
	Module string `yaml:"module" toml:"module"`
	// Cycles occupied by each resource class
	Latencies Latencies `yaml:"latencies" toml:"latencies"`
	// Delay tables (in ns) keyed by operation kind (e.g. "add"), with one
	// entry per supported width.
	Delays map[string][]float64 `yaml:"delays" toml:"delays"`
}

// Latencies gives the number of cycles occupied by each resource class.
type Latencies struct {
	Alu        uint `yaml:"alu" toml:"alu"`
	Multiplier uint `yaml:"multiplier" toml:"multiplier"`
	Divider    uint `yaml:"divider" toml:"divider"`
	Logical    uint `yaml:"logical" toml:"logical"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	lib := circuit.DefaultLibrary()
	//
	return &Config{
		LogLevel: "info",
		Module:   DEFAULT_MODULE,
		Latencies: Latencies{
			Alu:        lib.Latency(circuit.ALU),
			Multiplier: lib.Latency(circuit.MULTIPLIER),
			Divider:    lib.Latency(circuit.DIVIDER),
			Logical:    lib.Latency(circuit.LOGICAL),
		},
	}
}

// Load a configuration file, using a format determined by its extension.
// Settings missing from the file retain their defaults.
func Load(filename string) (*Config, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading configuration")
	}
	//
	cfg := Default()
	//
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, cfg)
	case ".toml":
		err = toml.Unmarshal(bytes, cfg)
	default:
		return nil, errors.Errorf("unknown configuration format %q", ext)
	}
	//
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", filename)
	}
	//
	log.Debugf("loaded configuration from %s", filename)
	//
	return cfg, nil
}

// Level returns the configured logging level.
func (p *Config) Level() (log.Level, error) {
	level, err := log.ParseLevel(p.LogLevel)
	//
	return level, errors.Wrap(err, "invalid log_level")
}

// Library constructs the functional unit library described by this
// configuration, starting from the default library.
func (p *Config) Library() (*circuit.Library, error) {
	var (
		lib       = circuit.DefaultLibrary()
		latencies = []struct {
			class  circuit.ResourceClass
			cycles uint
		}{
			{circuit.ALU, p.Latencies.Alu},
			{circuit.MULTIPLIER, p.Latencies.Multiplier},
			{circuit.DIVIDER, p.Latencies.Divider},
			{circuit.LOGICAL, p.Latencies.Logical},
		}
	)
	//
	for _, l := range latencies {
		if err := lib.SetLatency(l.class, l.cycles); err != nil {
			return nil, err
		}
	}
	// Sorted for deterministic error reporting
	names := make([]string, 0, len(p.Delays))
	for name := range p.Delays {
		names = append(names, name)
	}
	//
	slices.Sort(names)
	//
	for _, name := range names {
		table := p.Delays[name]
		//
		kind, ok := circuit.ParseOpKind(name)
		if !ok {
			return nil, errors.Errorf("unknown operation kind %q", name)
		} else if len(table) != circuit.NUM_WIDTHS {
			return nil, errors.Errorf("delay table for %s requires %d entries (found %d)", name,
				circuit.NUM_WIDTHS, len(table))
		} else if err := lib.SetDelays(kind, circuit.DelayTable(table)); err != nil {
			return nil, err
		}
	}
	//
	return lib, nil
}
