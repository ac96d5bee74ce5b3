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

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] snapshot",
	Short: "print a binary snapshot.",
	Long:  `Print the nets, operations and state machine recorded in a binary snapshot.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configure(cmd)
		//
		snapshot, err := binfile.ReadFile(args[0])
		if err != nil {
			fail(EXIT_IO, err)
		}
		//
		printSnapshot(snapshot, reportOptions(cmd))
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("nets", false, "Print the timing of every net")
	inspectCmd.Flags().Bool("states", false, "Print the state machine")
}
