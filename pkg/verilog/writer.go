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
package verilog

import (
	"bufio"
	"fmt"
	"io"
	"math/bits"
	"os"
	"slices"
	"strings"

	"github.com/consensys/go-hlsyn/pkg/circuit"
	"github.com/consensys/go-hlsyn/pkg/fsm"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// WriteFile writes the Verilog for a scheduled circuit and its state machine
// to a given file.
func WriteFile(filename string, module string, c *circuit.Circuit, m *fsm.Machine) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "creating output")
	}
	//
	if err = Write(f, module, c, m); err == nil {
		err = f.Close()
	} else {
		f.Close()
	}
	//
	return errors.Wrapf(err, "writing %s", filename)
}

// Write a scheduled circuit and its state machine as a single Verilog module.
// The module has ports Clk, Rst, Start and Done, followed by the circuit's
// inputs and outputs.  Every version of a variable is assigned to the same
// register.
func Write(w io.Writer, module string, c *circuit.Circuit, m *fsm.Machine) error {
	out := &writer{bufio.NewWriter(w), c, m, 0}
	//
	out.header(module)
	out.declarations()
	out.states()
	out.line("always @(posedge Clk) begin")
	out.indented(func() {
		out.line("if (Rst) begin")
		out.indented(func() {
			out.line("State <= %s;", stateName(m.Wait().Index()))
			out.line("Done <= 0;")
		})
		out.line("end else begin")
		out.indented(func() {
			out.line("case (State)")
			out.indented(func() {
				for i := range m.States() {
					out.state(m.State(uint(i)))
				}
			})
			out.line("endcase")
		})
		out.line("end")
	})
	out.line("end")
	out.line("endmodule")
	//
	log.Debugf("wrote module %s with %d states", module, m.NumStates())
	//
	return out.Flush()
}

type writer struct {
	*bufio.Writer
	circuit *circuit.Circuit
	machine *fsm.Machine
	indent  uint
}

func (p *writer) line(format string, args ...any) {
	p.WriteString(strings.Repeat("\t", int(p.indent)))
	fmt.Fprintf(p, format, args...)
	p.WriteString("\n")
}

func (p *writer) indented(body func()) {
	p.indent++
	body()
	p.indent--
}

func (p *writer) header(module string) {
	ports := []string{"Clk", "Rst", "Start", "Done"}
	// Versions of an output share its port
	for _, id := range slices.Concat(p.circuit.Inputs(), p.circuit.Outputs()) {
		if name := p.circuit.Net(id).Variable(); !slices.Contains(ports, name) {
			ports = append(ports, name)
		}
	}
	//
	p.line("`timescale 1ns / 1ps")
	p.line("")
	p.line("module %s(%s);", module, strings.Join(ports, ", "))
}

// Declare ports and registers, one per variable.  Nets gating branches are
// never assigned, since branches test their flags directly.
func (p *writer) declarations() {
	seen := make(map[string]bool)
	//
	p.indented(func() {
		p.line("input Clk, Rst, Start;")
		p.line("output reg Done;")
		//
		for i := range p.circuit.NumNets() {
			net := p.circuit.Net(circuit.NetId(i))
			//
			if net.Kind() == circuit.CONDITIONAL || seen[net.Variable()] {
				continue
			}
			//
			seen[net.Variable()] = true
			//
			var keyword string
			//
			switch net.Kind() {
			case circuit.INPUT:
				keyword = "input"
			case circuit.OUTPUT:
				keyword = "output reg"
			default:
				keyword = "reg"
			}
			//
			if net.Sign() == circuit.SIGNED {
				keyword += " signed"
			}
			//
			p.line("%s%s %s;", keyword, vector(net.Width()), net.Variable())
		}
	})
	p.line("")
}

func (p *writer) states() {
	width := uint(max(1, bits.Len(p.machine.NumStates()-1)))
	//
	p.indented(func() {
		p.line("reg%s State;", vector(width))
		p.line("")
		//
		for i := range p.machine.NumStates() {
			p.line("localparam %s = %d'd%d;", stateName(i), width, i)
		}
	})
	p.line("")
}

func (p *writer) state(s *fsm.State) {
	p.line("%s: begin", stateName(s.Index()))
	p.indented(func() {
		switch {
		case p.machine.IsWait(s):
			p.line("Done <= 0;")
		case p.machine.IsDone(s):
			p.line("Done <= 1;")
		}
		//
		for _, id := range s.Operations() {
			if op := p.circuit.Operation(id); !op.IsMarker() {
				p.line("%s <= %s;", p.target(op), p.expression(id))
			}
		}
		//
		p.transitions(s.Transitions())
	})
	p.line("end")
}

func (p *writer) transitions(transitions []fsm.Transition) {
	switch len(transitions) {
	case 1:
		p.line("State <= %s;", stateName(transitions[0].Target))
	case 2:
		p.line("if (%s) begin", p.guard(transitions[0]))
		p.indented(func() { p.line("State <= %s;", stateName(transitions[0].Target)) })
		p.line("end else begin")
		p.indented(func() { p.line("State <= %s;", stateName(transitions[1].Target)) })
		p.line("end")
	default:
		panic(fmt.Sprintf("unexpected number of transitions (%d)", len(transitions)))
	}
}

func (p *writer) guard(t fsm.Transition) string {
	switch t.Guard {
	case fsm.ON_START:
		return "Start"
	case fsm.ON_IDLE:
		return "!Start"
	case fsm.WHEN_SET:
		return p.circuit.Net(t.Flag).Variable()
	case fsm.WHEN_CLEAR:
		return "!" + p.circuit.Net(t.Flag).Variable()
	default:
		return "1"
	}
}

func (p *writer) target(op *circuit.Operation) string {
	return p.circuit.Net(op.Outputs()[0].Net).Variable()
}

// Construct the right-hand side of the assignment performed by an operation.
func (p *writer) expression(id circuit.OpId) string {
	var (
		op = p.circuit.Operation(id)
		a  = p.operand(id, circuit.OPERAND_A)
	)
	//
	switch op.Kind() {
	case circuit.REGISTER:
		return a
	case circuit.INC:
		return a + " + 1"
	case circuit.DEC:
		return a + " - 1"
	case circuit.MUX:
		return fmt.Sprintf("%s ? %s : %s", p.operand(id, circuit.SELECT), a, p.operand(id, circuit.OPERAND_B))
	case circuit.SHL:
		return fmt.Sprintf("%s << %s", a, p.operand(id, circuit.SHIFT_AMOUNT))
	case circuit.SHR:
		return fmt.Sprintf("%s >> %s", a, p.operand(id, circuit.SHIFT_AMOUNT))
	case circuit.COMPARE:
		return fmt.Sprintf("%s %s %s", a, comparisons[op.Outputs()[0].Role], p.operand(id, circuit.OPERAND_B))
	default:
		return fmt.Sprintf("%s %s %s", a, operators[op.Kind()], p.operand(id, circuit.OPERAND_B))
	}
}

// Name the net attached to a given input of an operation, widening it to the
// operation's width if necessary.
func (p *writer) operand(id circuit.OpId, role circuit.PortRole) string {
	var (
		port     = circuit.Port{Net: p.circuit.Operation(id).Input(role), Role: role}
		net      = p.circuit.Net(port.Net)
		name     = net.Variable()
		pad, sig = p.circuit.Extension(id, port)
	)
	//
	switch {
	case pad == 0:
		return name
	case sig:
		return fmt.Sprintf("$signed({{%d{%s[%d]}}, %s})", pad, name, net.Width()-1, name)
	default:
		return fmt.Sprintf("{{%d{1'b0}}, %s}", pad, name)
	}
}

var operators = map[circuit.OpKind]string{
	circuit.ADD: "+",
	circuit.SUB: "-",
	circuit.MUL: "*",
	circuit.DIV: "/",
	circuit.MOD: "%",
}

var comparisons = map[circuit.PortRole]string{
	circuit.GREATER_THAN: ">",
	circuit.LESS_THAN:    "<",
	circuit.EQUAL:        "==",
}

func stateName(index uint) string {
	return fmt.Sprintf("S%d", index)
}

// Range of a vector with the given width, or nothing for single bits.
func vector(width uint) string {
	if width == 1 {
		return ""
	}
	//
	return fmt.Sprintf(" [%d:0]", width-1)
}
