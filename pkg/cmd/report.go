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
	"io"
	"os"
	"strings"

	"github.com/consensys/go-hlsyn/pkg/binfile"
	"github.com/consensys/go-hlsyn/pkg/circuit"
	"github.com/consensys/go-hlsyn/pkg/util/termio"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type report struct {
	nets   bool
	states bool
}

func reportOptions(cmd *cobra.Command) report {
	return report{GetFlag(cmd, "nets"), GetFlag(cmd, "states")}
}

// Print a snapshot as a sequence of tables on stdout.
func printSnapshot(snapshot *binfile.Snapshot, options report) {
	title := color.New(color.Bold)
	//
	title.Printf("latency %d, critical path %.3fns\n", snapshot.Latency, snapshot.CriticalPath)
	//
	if options.nets {
		title.Println("\nnets")
		writeNets(os.Stdout, snapshot)
	}
	//
	title.Println("\noperations")
	writeOperations(os.Stdout, snapshot)
	title.Println("\ndistribution")
	writeDistribution(os.Stdout, snapshot)
	//
	if options.states {
		title.Println("\nstates")
		writeStates(os.Stdout, snapshot)
	}
}

func writeNets(w io.Writer, snapshot *binfile.Snapshot) {
	table := newTable(w, "net", "kind", "type", "asap", "alap", "delay")
	//
	for _, net := range snapshot.Nets {
		sign := "UInt"
		if net.Signed {
			sign = "Int"
		}
		//
		table.Append([]string{net.Name, net.Kind, fmt.Sprintf("%s%d", sign, net.Width), cycle(net.Asap),
			cycle(net.Alap), fmt.Sprintf("%.3f", net.Delay)})
	}
	//
	table.Render()
}

func writeOperations(w io.Writer, snapshot *binfile.Snapshot) {
	table := newTable(w, "operation", "kind", "condition", "inputs", "window", "cycle", "delay")
	//
	for _, op := range snapshot.Operations {
		var inputs []string
		//
		for _, in := range op.Inputs {
			inputs = append(inputs, fmt.Sprintf("%s:%s", in.Role, snapshot.Nets[in.Net].Name))
		}
		//
		scheduled := "-"
		if op.Scheduled {
			scheduled = cycle(op.Cycle)
		}
		//
		table.Append([]string{op.Name, op.Kind, fmt.Sprintf("%d", op.Condition), strings.Join(inputs, " "),
			fmt.Sprintf("%s..%s", cycle(op.Start), cycle(op.End)), scheduled, fmt.Sprintf("%.3f", op.Delay)})
	}
	//
	table.Render()
}

func writeDistribution(w io.Writer, snapshot *binfile.Snapshot) {
	header := []string{"class"}
	//
	for i := range snapshot.Latency {
		header = append(header, fmt.Sprintf("%d", i+1))
	}
	//
	table := newTable(w, header...)
	//
	for _, dg := range snapshot.Distribution {
		row := []string{dg.Class}
		//
		for _, p := range dg.Cycles {
			row = append(row, fmt.Sprintf("%.2f", p))
		}
		//
		table.Append(row)
	}
	//
	table.Render()
}

func writeStates(w io.Writer, snapshot *binfile.Snapshot) {
	table := newTable(w, "state", "cycle", "condition", "operations", "transitions")
	//
	for i, state := range snapshot.States {
		var ops, transitions []string
		//
		for _, op := range state.Operations {
			ops = append(ops, snapshot.Operations[op].Name)
		}
		//
		for _, t := range state.Transitions {
			if t.Flag == uint(circuit.NO_NET) {
				transitions = append(transitions, fmt.Sprintf("%s->S%d", t.Guard, t.Target))
			} else {
				transitions = append(transitions, fmt.Sprintf("%s(%s)->S%d", t.Guard, snapshot.Nets[t.Flag].Name,
					t.Target))
			}
		}
		//
		table.Append([]string{fmt.Sprintf("S%d", i), fmt.Sprintf("%d", state.Cycle),
			fmt.Sprintf("%d", state.Condition), strings.Join(ops, " "), strings.Join(transitions, " ")})
	}
	//
	table.Render()
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	// Wrap wide cells (e.g. input lists) to fit the terminal
	table.SetColWidth(max(20, termio.Width(os.Stdout, 120)/len(header)))
	//
	return table
}

func cycle(c uint) string {
	if c == uint(circuit.UNBOUNDED) {
		return "∞"
	}
	//
	return fmt.Sprintf("%d", c)
}
