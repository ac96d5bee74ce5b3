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
package netlist

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/consensys/go-hlsyn/pkg/circuit"
	"github.com/consensys/go-hlsyn/pkg/util/source"
	"github.com/consensys/go-hlsyn/pkg/util/source/lex"
	log "github.com/sirupsen/logrus"
)

// Parse a netlist into a circuit which uses a given library of functional
// units (or the default library, if none is given).  Parsing stops at the
// first error encountered.
func Parse(srcfile *source.File, library *circuit.Library) (*circuit.Circuit, []source.SyntaxError) {
	tokens, errs := Lex(srcfile)
	if len(errs) > 0 {
		return nil, errs
	}
	//
	p := NewParser(srcfile, tokens, circuit.NewCircuit(library))
	//
	if errs := p.Parse(); len(errs) > 0 {
		return nil, errs
	}
	//
	log.Debugf("parsed %s: %d nets, %d operations", srcfile.Filename(), p.circuit.NumNets(),
		p.circuit.NumOperations())
	//
	return p.circuit, nil
}

// Parser constructs a circuit from a stream of netlist tokens.  Statements
// are processed in order, with the parser tracking which versions of each
// variable reach the current point and which branches are open.
type Parser struct {
	srcfile *source.File
	tokens  []lex.Token
	index   int
	circuit *circuit.Circuit
	env     *Environment
}

// NewParser constructs a parser which populates a given circuit.
func NewParser(srcfile *source.File, tokens []lex.Token, c *circuit.Circuit) *Parser {
	return &Parser{srcfile, tokens, 0, c, NewEnvironment(c)}
}

// Parse all statements in the token stream.
func (p *Parser) Parse() []source.SyntaxError {
	for p.lookahead().Kind != END_OF {
		if errs := p.parseStatement(); len(errs) > 0 {
			return errs
		}
	}
	//
	if p.env.Depth() > 0 {
		return p.syntaxErrors(p.lookahead(), "missing }")
	}
	//
	return nil
}

func (p *Parser) parseStatement() []source.SyntaxError {
	token := p.lookahead()
	//
	switch {
	case token.Kind == RCURLY:
		return p.parseCloseBlock()
	case token.Kind != IDENTIFIER:
		return p.syntaxErrors(token, "unexpected token")
	}
	//
	switch p.string(token) {
	case "input", "output", "wire", "register", "variable":
		return p.parseDeclaration()
	case "if":
		return p.parseIf()
	case "else":
		return p.syntaxErrors(token, "else without if")
	default:
		return p.parseAssignment()
	}
}

// Parse a declaration such as "input Int8 a, b".
func (p *Parser) parseDeclaration() []source.SyntaxError {
	var (
		keyword = p.expect(IDENTIFIER)
		typ     = p.lookahead()
		kind    = declarationKinds[p.string(keyword)]
	)
	//
	sign, width, ok := parseType(p.string(typ))
	if typ.Kind != IDENTIFIER || !ok {
		return p.syntaxErrors(typ, "unknown type")
	}
	//
	p.match(IDENTIFIER)
	//
	for first := true; first || p.match(COMMA); first = false {
		name := p.lookahead()
		//
		if name.Kind != IDENTIFIER || isKeyword(p.string(name)) {
			return p.syntaxErrors(name, "expected identifier")
		} else if err := p.env.Declare(p.string(name), kind, sign, width); err != nil {
			return p.syntaxErrors(name, err.Error())
		}
		//
		p.match(IDENTIFIER)
	}
	//
	return nil
}

// Parse an assignment of the form "x = a", "x = a op b" or "x = s ? a : b".
func (p *Parser) parseAssignment() []source.SyntaxError {
	target := p.expect(IDENTIFIER)
	//
	if !p.match(EQUALS) {
		return p.syntaxErrors(p.lookahead(), "expected =")
	}
	//
	var (
		lhs       = p.lookahead()
		operator  lex.Token
		operands  = []lex.Token{lhs}
		statement = assignment{target: target}
	)
	//
	if lhs.Kind != IDENTIFIER {
		return p.syntaxErrors(lhs, "expected identifier")
	}
	//
	p.match(IDENTIFIER)
	operator = p.lookahead()
	//
	switch operator.Kind {
	case QMARK:
		p.match(QMARK)
		//
		a, errs := p.parseOperand()
		if len(errs) > 0 {
			return errs
		} else if !p.match(COLON) {
			return p.syntaxErrors(p.lookahead(), "expected :")
		}
		//
		b, errs := p.parseOperand()
		if len(errs) > 0 {
			return errs
		}
		//
		statement.kind, statement.output = circuit.MUX, circuit.DATAPATH_OUT
		statement.operands = []lex.Token{lhs, a, b}
		statement.roles = []circuit.PortRole{circuit.SELECT, circuit.OPERAND_A, circuit.OPERAND_B}
	default:
		binary, ok := binaryOperators[operator.Kind]
		//
		if !ok {
			// Plain copy into a register
			statement.kind, statement.output = circuit.REGISTER, circuit.REGISTER_OUT
			statement.operands, statement.roles = operands, []circuit.PortRole{circuit.OPERAND_A}
			//
			break
		}
		//
		p.match(operator.Kind)
		rhs := p.lookahead()
		//
		switch {
		case rhs.Kind == NUMBER && p.string(rhs) == "1" && (operator.Kind == ADD || operator.Kind == SUB):
			p.match(NUMBER)
			//
			statement.kind, statement.output = circuit.INC, circuit.SUM
			if operator.Kind == SUB {
				statement.kind, statement.output = circuit.DEC, circuit.DIFFERENCE
			}
			//
			statement.operands, statement.roles = operands, []circuit.PortRole{circuit.OPERAND_A}
		case rhs.Kind == NUMBER:
			return p.syntaxErrors(rhs, "unsupported constant")
		default:
			b, errs := p.parseOperand()
			if len(errs) > 0 {
				return errs
			}
			//
			statement.kind, statement.output = binary.kind, binary.output
			statement.operands = []lex.Token{lhs, b}
			statement.roles = []circuit.PortRole{circuit.OPERAND_A, binary.rhs}
		}
	}
	//
	return p.build(statement)
}

func (p *Parser) parseOperand() (lex.Token, []source.SyntaxError) {
	token := p.lookahead()
	//
	switch token.Kind {
	case IDENTIFIER:
		p.match(IDENTIFIER)
		return token, nil
	case NUMBER:
		return token, p.syntaxErrors(token, "unsupported constant")
	default:
		return token, p.syntaxErrors(token, "expected identifier")
	}
}

// Construct the operation for an assignment.  Operands are connected before
// the target is written, so that "x = x + 1" reads the previous version of x.
func (p *Parser) build(s assignment) []source.SyntaxError {
	var (
		op    = p.circuit.NewOperation(s.kind, p.env.Condition())
		reads []string
	)
	//
	for i, token := range s.operands {
		name := p.string(token)
		//
		net, extras, err := p.env.Read(name)
		if err != nil {
			return p.syntaxErrors(token, err.Error())
		}
		//
		p.circuit.Connect(op, net, s.roles[i])
		//
		for _, in := range priorValues(extras) {
			p.circuit.Connect(op, in.Net, in.Role)
		}
		//
		reads = append(reads, name)
	}
	//
	out, links, err := p.env.Write(p.string(s.target))
	if err != nil {
		return p.syntaxErrors(s.target, err.Error())
	}
	//
	for _, in := range append(p.env.Gate(), priorValues(links)...) {
		if !slices.ContainsFunc(p.circuit.Operation(op).Inputs(), func(q circuit.Port) bool {
			return q.Net == in.Net
		}) {
			p.circuit.Connect(op, in.Net, in.Role)
		}
	}
	//
	if err := p.circuit.Drive(op, out, s.output); err != nil {
		return p.syntaxErrors(s.target, err.Error())
	}
	//
	p.env.Produced(out, reads...)
	//
	return nil
}

// Parse "if ( c ) {".
func (p *Parser) parseIf() []source.SyntaxError {
	p.expect(IDENTIFIER)
	//
	if !p.match(LBRACE) {
		return p.syntaxErrors(p.lookahead(), "expected (")
	}
	//
	flag := p.lookahead()
	//
	if flag.Kind != IDENTIFIER {
		return p.syntaxErrors(flag, "expected identifier")
	}
	//
	p.match(IDENTIFIER)
	//
	if !p.match(RBRACE) {
		return p.syntaxErrors(p.lookahead(), "expected )")
	} else if !p.match(LCURLY) {
		return p.syntaxErrors(p.lookahead(), "expected {")
	}
	//
	if err := p.env.OpenBranch(p.string(flag)); err != nil {
		return p.syntaxErrors(flag, err.Error())
	}
	//
	return nil
}

// Parse "}", optionally followed by "else {".
func (p *Parser) parseCloseBlock() []source.SyntaxError {
	brace := p.expect(RCURLY)
	//
	if p.env.Depth() == 0 {
		return p.syntaxErrors(brace, "unexpected }")
	}
	//
	if next := p.lookahead(); next.Kind == IDENTIFIER && p.string(next) == "else" {
		p.match(IDENTIFIER)
		//
		if !p.match(LCURLY) {
			return p.syntaxErrors(p.lookahead(), "expected {")
		} else if err := p.env.OpenElse(); err != nil {
			return p.syntaxErrors(next, err.Error())
		}
		//
		return nil
	}
	//
	p.env.CloseBranch()
	//
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

type assignment struct {
	target   lex.Token
	kind     circuit.OpKind
	output   circuit.PortRole
	operands []lex.Token
	roles    []circuit.PortRole
}

type binaryOperator struct {
	kind   circuit.OpKind
	rhs    circuit.PortRole
	output circuit.PortRole
}

var binaryOperators = map[uint]binaryOperator{
	ADD:           {circuit.ADD, circuit.OPERAND_B, circuit.SUM},
	SUB:           {circuit.SUB, circuit.OPERAND_B, circuit.DIFFERENCE},
	MUL:           {circuit.MUL, circuit.OPERAND_B, circuit.PRODUCT},
	DIV:           {circuit.DIV, circuit.OPERAND_B, circuit.QUOTIENT},
	REM:           {circuit.MOD, circuit.OPERAND_B, circuit.REMAINDER},
	SHIFT_LEFT:    {circuit.SHL, circuit.SHIFT_AMOUNT, circuit.DATAPATH_OUT},
	SHIFT_RIGHT:   {circuit.SHR, circuit.SHIFT_AMOUNT, circuit.DATAPATH_OUT},
	LESS:          {circuit.COMPARE, circuit.OPERAND_B, circuit.LESS_THAN},
	GREATER:       {circuit.COMPARE, circuit.OPERAND_B, circuit.GREATER_THAN},
	EQUALS_EQUALS: {circuit.COMPARE, circuit.OPERAND_B, circuit.EQUAL},
}

var declarationKinds = map[string]circuit.NetKind{
	"input":    circuit.INPUT,
	"output":   circuit.OUTPUT,
	"wire":     circuit.WIRE,
	"register": circuit.REGISTER_NET,
	"variable": circuit.VARIABLE,
}

func isKeyword(name string) bool {
	_, ok := declarationKinds[name]
	return ok || name == "if" || name == "else"
}

// Parse a type such as Int8 or UInt32.
func parseType(name string) (circuit.Sign, uint, bool) {
	sign := circuit.SIGNED
	//
	if rest, ok := strings.CutPrefix(name, "U"); ok {
		sign, name = circuit.UNSIGNED, rest
	}
	//
	digits, ok := strings.CutPrefix(name, "Int")
	if !ok {
		return sign, 0, false
	}
	//
	width, err := strconv.ParseUint(digits, 10, 8)
	if err != nil || !circuit.IsSupportedWidth(uint(width)) {
		return sign, 0, false
	}
	//
	return sign, uint(width), true
}

func priorValues(nets []circuit.NetId) []circuit.Port {
	ports := make([]circuit.Port, len(nets))
	for i, n := range nets {
		ports[i] = circuit.Port{Net: n, Role: circuit.PRIOR_VALUE}
	}
	//
	return ports
}

func (p *Parser) string(token lex.Token) string {
	return p.srcfile.Text(token.Span)
}

// Get the next token without consuming it.
func (p *Parser) lookahead() lex.Token {
	return p.tokens[p.index]
}

// Consume the next token, which must have the given kind.
func (p *Parser) expect(kind uint) lex.Token {
	token := p.tokens[p.index]
	if token.Kind != kind {
		panic(fmt.Sprintf("expected token kind %d, found %d", kind, token.Kind))
	}
	//
	p.index++
	//
	return token
}

// Consume the next token if it has the given kind.
func (p *Parser) match(kind uint) bool {
	if p.tokens[p.index].Kind == kind {
		p.index++
		return true
	}
	//
	return false
}

func (p *Parser) syntaxErrors(token lex.Token, msg string) []source.SyntaxError {
	return []source.SyntaxError{p.srcfile.SyntaxError(token.Span, msg)}
}
