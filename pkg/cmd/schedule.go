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
	"github.com/consensys/go-hlsyn/pkg/binfile"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [flags] netlist latency",
	Short: "print the schedule of a netlist.",
	Long: `Schedule a netlist within a given latency and print the window and
	cycle of every operation, along with the final distribution graphs.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			cfg     = configure(cmd)
			latency = parseLatency(args[1])
			c       = readNetlist(args[0], cfg)
			result  = synthesise(c, latency)
		)
		//
		printSnapshot(binfile.NewSnapshot(result.Circuit, result.Machine), reportOptions(cmd))
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().Bool("nets", false, "Print the timing of every net")
	scheduleCmd.Flags().Bool("states", false, "Print the state machine")
}
