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
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/consensys/go-hlsyn/pkg/circuit"
	"github.com/consensys/go-hlsyn/pkg/config"
	"github.com/consensys/go-hlsyn/pkg/netlist"
	"github.com/consensys/go-hlsyn/pkg/synth"
	"github.com/consensys/go-hlsyn/pkg/util/source"
	"github.com/consensys/go-hlsyn/pkg/util/termio"
	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// EXIT_SYNTAX is the exit code when the netlist is malformed.
const EXIT_SYNTAX = 2

// EXIT_INFEASIBLE is the exit code when the latency budget cannot be met.
const EXIT_INFEASIBLE = 3

// EXIT_IO is the exit code when a file cannot be read or written.
const EXIT_IO = 4

// GetFlag gets an expected flag, or exit if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fail(1, err)
	}

	return r
}

// GetString gets an expected string flag, or exit if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fail(1, err)
	}

	return r
}

// Report an error and exit with a given code.
func fail(code int, err error) {
	log.Error(err)
	os.Exit(code)
}

// Load the configuration (if one is given) and set up logging accordingly.
func configure(cmd *cobra.Command) *config.Config {
	cfg := config.Default()
	//
	if filename := GetString(cmd, "config"); filename != "" {
		var err error
		//
		if cfg, err = config.Load(filename); err != nil {
			fail(EXIT_IO, err)
		}
	}
	//
	level, err := cfg.Level()
	if err != nil {
		fail(1, err)
	}
	// Configure log level
	if GetFlag(cmd, "verbose") {
		level = log.DebugLevel
	}
	//
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{DisableColors: !termio.IsTerminal(os.Stderr)})
	color.NoColor = !termio.IsTerminal(os.Stderr)
	//
	return cfg
}

func parseLatency(arg string) uint {
	latency, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || latency == 0 {
		fail(1, fmt.Errorf("invalid latency %q (expected a positive number of cycles)", arg))
	}
	//
	return uint(latency)
}

// Read and parse a netlist file, using the functional units described by a
// given configuration.
func readNetlist(filename string, cfg *config.Config) *circuit.Circuit {
	lib, err := cfg.Library()
	if err != nil {
		fail(1, err)
	}
	//
	srcfile, err := source.ReadFile(filename)
	if err != nil {
		fail(EXIT_IO, err)
	}
	//
	c, errs := netlist.Parse(srcfile, lib)
	//
	for _, err := range errs {
		printSyntaxError(&err)
	}
	//
	if len(errs) > 0 {
		os.Exit(EXIT_SYNTAX)
	}
	//
	return c
}

func synthesise(c *circuit.Circuit, latency uint) *synth.Result {
	var infeasible *circuit.LatencyInfeasible
	//
	result, err := synth.Run(c, latency)
	//
	switch {
	case errors.As(err, &infeasible):
		fail(EXIT_INFEASIBLE, err)
	case err != nil:
		fail(1, err)
	}
	//
	return result
}

// Print a syntax error with appropriate highlighting.
func printSyntaxError(err *source.SyntaxError) {
	var (
		span   = err.Span()
		line   = err.Line()
		offset = span.Start() - line.Start()
		length = max(1, min(span.Length(), line.Length()-offset))
	)
	// Print error + line number
	color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, err.Error())
	// Print line
	fmt.Fprintln(os.Stderr, line.String())
	// Print indent
	fmt.Fprint(os.Stderr, strings.Map(func(r rune) rune {
		if r == '\t' {
			return r
		}
		//
		return ' '
	}, string([]rune(line.String())[:offset])))
	// Print highlight
	color.New(color.FgYellow).Fprintln(os.Stderr, strings.Repeat("^", length))
}
