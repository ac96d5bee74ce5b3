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
	"fmt"
	"os"
	"runtime/debug"

	"github.com/consensys/go-hlsyn/pkg/binfile"
	"github.com/consensys/go-hlsyn/pkg/verilog"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via "go
// install".
var Version string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hlsyn [flags] netlist latency output",
	Short: "A high-level synthesis tool.",
	Long: `Schedule a behavioural netlist within a given latency (in cycles)
	and write the resulting state machine as a Verilog module.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if GetFlag(cmd, "version") && len(args) == 0 {
			return nil
		}
		//
		return cobra.ExactArgs(3)(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			printVersion()
			return
		}
		//
		var (
			cfg      = configure(cmd)
			latency  = parseLatency(args[1])
			snapshot = GetString(cmd, "snapshot")
			c        = readNetlist(args[0], cfg)
		)
		//
		result := synthesise(c, latency)
		//
		if err := verilog.WriteFile(args[2], cfg.Module, result.Circuit, result.Machine); err != nil {
			fail(EXIT_IO, err)
		}
		//
		if snapshot != "" {
			if err := binfile.WriteFile(snapshot, binfile.NewSnapshot(result.Circuit, result.Machine)); err != nil {
				fail(EXIT_IO, err)
			}
		}
		//
		log.Infof("wrote %s (%d states, critical path %.3fns)", args[2], result.Machine.NumStates(),
			result.Circuit.CriticalPath())
	},
}

func printVersion() {
	fmt.Print("hlsyn ")
	if Version != "" {
		// Built via "make"
		fmt.Printf("%s", Version)
	} else if info, ok := debug.ReadBuildInfo(); ok {
		// Built via "go install"
		fmt.Printf("%s", info.Main.Version)
	} else {
		// Unknown, perhaps "go run"
		fmt.Printf("(unknown version)")
	}
	fmt.Println()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.Flags().String("snapshot", "", "also write a binary snapshot of the design")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().StringP("config", "c", "", "read settings from a yaml or toml file")
}
