package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/karupanerura/pdef-light/internal/tokenizer"
	"github.com/karupanerura/pdef-light/internal/trace"
	"github.com/samber/lo"
)

var (
	statementStarts      = []tokenizer.Kind{tokenizer.TYPE, tokenizer.IDENT, tokenizer.LBRACE}
	statementTerminators = []tokenizer.Kind{tokenizer.COMMA, tokenizer.RBRACE, tokenizer.EOF}
	factorStarts         = []tokenizer.Kind{tokenizer.INT, tokenizer.FLOAT, tokenizer.IDENT, tokenizer.LPAREN}
	additiveOperators    = []tokenizer.Kind{tokenizer.ADD, tokenizer.SUB}
	multiplicativeOps    = []tokenizer.Kind{tokenizer.MUL, tokenizer.DIV, tokenizer.MOD}
)

// TokenSource supplies tokens one at a time. *tokenizer.Tokenizer satisfies it.
type TokenSource interface {
	NextToken() (tokenizer.Token, error)
}

type Option func(*Parser)

func WithTracer(t *trace.Tracer) Option {
	return func(p *Parser) {
		p.trace = t
	}
}

// Parser is a recursive descent parser for PDef-light:
//
//	Program     ::= Block EOF
//	Block       ::= '{' StmtList '}'
//	StmtList    ::= Stmt { ',' Stmt }
//	Stmt        ::= Declaration | Assignment | Block
//	Declaration ::= TYPE IDENT
//	Assignment  ::= IDENT '=' Exp
//	Exp         ::= Term { ('+' | '-') Term }
//	Term        ::= Factor { ('*' | '/' | '%') Factor }
//	Factor      ::= INT | FLOAT | IDENT | '(' Exp ')'
//
// When a parse method is called, lookahead already holds the next token to
// be examined.
type Parser struct {
	tokens    TokenSource
	lookahead tokenizer.Token
	errs      ErrorList
	trace     *trace.Tracer
}

func New(src TokenSource, opts ...Option) (*Parser, error) {
	p := &Parser{tokens: src}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse tokenizes r and parses it as a Program.
func Parse(r io.Reader, cfg tokenizer.Config, opts ...Option) error {
	p, err := New(tokenizer.New(r, cfg), opts...)
	if err != nil {
		return err
	}
	return p.ParseProgram()
}

// ParseProgram parses the whole input. It returns nil when the input is a
// valid Program, an ErrorList when syntax errors were found, and any other
// error when reading the input failed.
func (p *Parser) ParseProgram() error {
	defer p.leave(p.enter("Program"))

	err := p.parseProgram()
	var synErr *SyntaxError
	if errors.As(err, &synErr) {
		// nothing encloses the outermost block, so the parse stops here
		p.errs = append(p.errs, synErr)
	} else if err != nil {
		return err
	}

	if len(p.errs) != 0 {
		return p.errs
	}
	return nil
}

func (p *Parser) parseProgram() error {
	if err := p.parseBlock(); err != nil {
		return err
	}
	return p.consume(tokenizer.EOF)
}

func (p *Parser) parseBlock() error {
	defer p.leave(p.enter("Block"))

	if err := p.consume(tokenizer.LBRACE); err != nil {
		return err
	}
	if err := p.parseStmtList(); err != nil {
		return err
	}
	return p.consume(tokenizer.RBRACE)
}

func (p *Parser) parseStmtList() error {
	defer p.leave(p.enter("StmtList"))

	if err := p.parseStmt(); err != nil {
		return err
	}
	for p.lookahead.Kind == tokenizer.COMMA {
		if err := p.consume(tokenizer.COMMA); err != nil {
			return err
		}
		if err := p.parseStmt(); err != nil {
			return err
		}
	}
	return nil
}

// parseStmt records a syntax error inside the statement and skips to the
// next statement terminator. Only read errors are returned.
func (p *Parser) parseStmt() error {
	defer p.leave(p.enter("Stmt"))

	err := p.parseStmtBody()
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		return err
	}

	p.trace.Printf("syntax error: %v", synErr)
	p.errs = append(p.errs, synErr)
	return p.skipToStatementEnd()
}

func (p *Parser) parseStmtBody() error {
	var err error
	switch p.lookahead.Kind {
	case tokenizer.TYPE:
		err = p.parseDeclaration()
	case tokenizer.IDENT:
		err = p.parseAssignment()
	case tokenizer.LBRACE:
		err = p.parseBlock()
	default:
		return expectedSetError("a statement", p.lookahead, statementStarts...)
	}
	if err != nil {
		return err
	}

	if !p.atStatementEnd() {
		return expectedSetError("a statement terminator", p.lookahead, statementTerminators...)
	}
	return nil
}

func (p *Parser) skipToStatementEnd() error {
	for !p.atStatementEnd() {
		p.trace.Printf("discarding %s at %s", p.lookahead, p.lookahead.Pos())
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) atStatementEnd() bool {
	return lo.Contains(statementTerminators, p.lookahead.Kind)
}

func (p *Parser) parseDeclaration() error {
	defer p.leave(p.enter("Declaration"))

	if err := p.consume(tokenizer.TYPE); err != nil {
		return err
	}
	return p.consume(tokenizer.IDENT)
}

func (p *Parser) parseAssignment() error {
	defer p.leave(p.enter("Assignment"))

	if err := p.consume(tokenizer.IDENT); err != nil {
		return err
	}
	if err := p.consume(tokenizer.ASSIGN); err != nil {
		return err
	}
	return p.parseExp()
}

func (p *Parser) parseExp() error {
	defer p.leave(p.enter("Exp"))

	if err := p.parseTerm(); err != nil {
		return err
	}
	for lo.Contains(additiveOperators, p.lookahead.Kind) {
		if err := p.consume(p.lookahead.Kind); err != nil {
			return err
		}
		if err := p.parseTerm(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseTerm() error {
	defer p.leave(p.enter("Term"))

	if err := p.parseFactor(); err != nil {
		return err
	}
	for lo.Contains(multiplicativeOps, p.lookahead.Kind) {
		if err := p.consume(p.lookahead.Kind); err != nil {
			return err
		}
		if err := p.parseFactor(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseFactor() error {
	defer p.leave(p.enter("Factor"))

	switch kind := p.lookahead.Kind; kind {
	case tokenizer.INT, tokenizer.FLOAT, tokenizer.IDENT:
		return p.consume(kind)
	case tokenizer.LPAREN:
		if err := p.consume(tokenizer.LPAREN); err != nil {
			return err
		}
		if err := p.parseExp(); err != nil {
			return err
		}
		return p.consume(tokenizer.RPAREN)
	default:
		return expectedSetError("a factor", p.lookahead, factorStarts...)
	}
}

// consume advances past the lookahead if it has the expected kind. EOF is
// never advanced past since no token follows it.
func (p *Parser) consume(kind tokenizer.Kind) error {
	if p.lookahead.Kind != kind {
		return expectedKindError(kind, p.lookahead)
	}
	p.trace.Printf("consumed %s at %s", p.lookahead, p.lookahead.Pos())
	if kind == tokenizer.EOF {
		return nil
	}
	return p.advance()
}

func (p *Parser) advance() error {
	tok, err := p.tokens.NextToken()
	if err != nil {
		return fmt.Errorf("tokenizer.NextToken: %w", err)
	}
	p.lookahead = tok
	return nil
}

func (p *Parser) enter(rule string) string {
	p.trace.Printf(">>> Entering %s", rule)
	return rule
}

func (p *Parser) leave(rule string) {
	p.trace.Printf("<<< Leaving %s", rule)
}
