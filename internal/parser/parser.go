// Package parser consumes the scanner's token stream and builds an ir.Block,
// reporting syntax errors without aborting early so multiple diagnostics can surface
// from a single pass.
package parser

import (
	"fmt"

	"github.com/pkg/errors"

	"ilocalloc/internal/ir"
	"ilocalloc/internal/scanner"
	"ilocalloc/internal/token"
)

// SyntaxError is one diagnostic produced while parsing. Parser.Parse collects these
// instead of stopping at the first one, so a malformed line doesn't hide the rest.
type SyntaxError struct {
	Line    int
	Message string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parser drives a scanner.Scanner and assembles an ir.Block.
type Parser struct {
	s    *scanner.Scanner
	cur  token.Token
	errs []SyntaxError
}

// New creates a Parser over src. The scanner is started in its own goroutine so
// scanning and parsing overlap even though both are otherwise synchronous,
// single-pass stages.
func New(src string) *Parser {
	s := scanner.New(src)
	go s.Run()
	p := &Parser{s: s}
	p.advance()
	return p
}

// advance pulls the next token. A closed channel (the scanner's Run has returned)
// is treated as EOF rather than yielding a zero Token{}, whose Kind would otherwise
// be token.Load (the first, zero-valued Kind) and never satisfy a caller's
// Endline/EOF loop condition.
func (p *Parser) advance() {
	tok, ok := <-p.s.Tokens()
	if !ok {
		p.cur = token.Token{Kind: token.EOF}
		return
	}
	p.cur = tok
}

func (p *Parser) addError(line int, format string, args ...interface{}) {
	p.errs = append(p.errs, SyntaxError{Line: line, Message: fmt.Sprintf(format, args...)})
}

// skipLine consumes tokens through the next Endline or EOF, the resynchronization
// point used to recover from a malformed line and keep parsing the rest.
func (p *Parser) skipLine() {
	for p.cur.Kind != token.Endline && p.cur.Kind != token.EOF {
		p.advance()
	}
	if p.cur.Kind == token.Endline {
		p.advance()
	}
}

// Parse reads the full token stream and returns the assembled IR block. A non-empty
// error list means the block is incomplete and must not be renamed or allocated.
func (p *Parser) Parse() (*ir.Block, []SyntaxError) {
	b := ir.NewBlock()

	for p.cur.Kind != token.EOF {
		switch {
		case p.cur.Kind == token.Endline:
			p.advance()
			continue
		case p.cur.Kind == token.Error:
			p.addError(p.cur.Line, "%s", p.cur.Text)
			p.skipLine()
			continue
		case p.cur.Kind == token.LoadI:
			p.parseLoadI(b)
		case p.cur.Kind == token.Load || p.cur.Kind == token.Store:
			p.parseLoadStore(b)
		case p.cur.Kind.IsArith():
			p.parseArith(b)
		case p.cur.Kind == token.Output:
			p.parseOutput(b)
		case p.cur.Kind == token.Nop:
			b.Append(p.cur.Line, ir.Nop)
			p.advance()
		default:
			p.addError(p.cur.Line, "unexpected token %s", p.cur.Kind)
			p.skipLine()
		}
	}

	return b, p.errs
}

func (p *Parser) expect(line int, k token.Kind, what string) (token.Token, bool) {
	if p.cur.Kind != k {
		p.addError(line, "expected %s, got %s", what, p.cur.Kind)
		p.skipLine()
		return token.Token{}, false
	}
	t := p.cur
	p.advance()
	return t, true
}

func (p *Parser) parseLoadI(b *ir.Block) {
	line := p.cur.Line
	p.advance() // consume 'loadI'

	c, ok := p.expect(line, token.Constant, "a constant")
	if !ok {
		return
	}
	if _, ok = p.expect(line, token.Arrow, "'=>'"); !ok {
		return
	}
	r, ok := p.expect(line, token.Register, "a register")
	if !ok {
		return
	}

	op := b.Append(line, ir.LoadI)
	op.SR1 = c.Value
	op.SR3 = r.Value
}

func (p *Parser) parseLoadStore(b *ir.Block) {
	line := p.cur.Line
	opcode := ir.Load
	if p.cur.Kind == token.Store {
		opcode = ir.Store
	}
	p.advance()

	r1, ok := p.expect(line, token.Register, "a register")
	if !ok {
		return
	}
	if _, ok = p.expect(line, token.Arrow, "'=>'"); !ok {
		return
	}
	r3, ok := p.expect(line, token.Register, "a register")
	if !ok {
		return
	}

	op := b.Append(line, opcode)
	op.SR1 = r1.Value
	op.SR3 = r3.Value
}

func (p *Parser) parseArith(b *ir.Block) {
	line := p.cur.Line
	kind := p.cur.Kind
	p.advance()

	r1, ok := p.expect(line, token.Register, "a register")
	if !ok {
		return
	}
	if _, ok = p.expect(line, token.Comma, "','"); !ok {
		return
	}
	r2, ok := p.expect(line, token.Register, "a register")
	if !ok {
		return
	}
	if _, ok = p.expect(line, token.Arrow, "'=>'"); !ok {
		return
	}
	r3, ok := p.expect(line, token.Register, "a register")
	if !ok {
		return
	}

	var opcode ir.Opcode
	switch kind {
	case token.Add:
		opcode = ir.Add
	case token.Sub:
		opcode = ir.Sub
	case token.Mult:
		opcode = ir.Mult
	case token.Lshift:
		opcode = ir.Lshift
	case token.Rshift:
		opcode = ir.Rshift
	}

	op := b.Append(line, opcode)
	op.SR1 = r1.Value
	op.SR2 = r2.Value
	op.SR3 = r3.Value
}

func (p *Parser) parseOutput(b *ir.Block) {
	line := p.cur.Line
	p.advance()

	c, ok := p.expect(line, token.Constant, "a constant")
	if !ok {
		return
	}

	op := b.Append(line, ir.Output)
	op.SR1 = c.Value
}

// Parse is a convenience entry point wrapping New(src).Parse(), returning a wrapped
// error (via github.com/pkg/errors) summarizing the diagnostics when parsing failed.
func Parse(src string) (*ir.Block, error) {
	b, errs := New(src).Parse()
	if len(errs) > 0 {
		return nil, errors.Wrapf(joinErrors(errs), "%d syntax error(s)", len(errs))
	}
	return b, nil
}

type multiError []SyntaxError

func (m multiError) Error() string {
	s := ""
	for i, e := range m {
		if i > 0 {
			s += "; "
		}
		s += e.Error()
	}
	return s
}

func joinErrors(errs []SyntaxError) error {
	return multiError(errs)
}
