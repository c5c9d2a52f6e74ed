package tokenizer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/karupanerura/pdef-light/internal/trace"
	"github.com/samber/lo"
)

const eof = rune(-1)

var typeKeywords = []string{"int", "char", "float"}

type Config struct {
	// Echo writes every consumed character to EchoWriter (os.Stdout when nil).
	Echo       bool
	EchoWriter io.Writer
	Tracer     *trace.Tracer
}

type state int

const (
	startState state = iota
	identState
	zeroState
	intState
	periodState
	floatState
	errorIntState
	errorFloatState
	doneState
)

var stateNames = map[state]string{
	startState:      "START",
	identState:      "IDENT",
	zeroState:       "ZERO",
	intState:        "INT",
	periodState:     "PERIOD",
	floatState:      "FLOAT",
	errorIntState:   "ERROR_INT",
	errorFloatState: "ERROR_FLOAT",
	doneState:       "DONE",
}

func (s state) String() string {
	return stateNames[s]
}

// Tokenizer reads tokens from a character stream on demand.
type Tokenizer struct {
	r     *bufio.Reader
	echo  io.Writer
	trace *trace.Tracer

	// position of the last consumed character
	line, column int
	// position before the last consumed character, restored by unreadChar
	prevLine, prevColumn int

	peeked    rune
	hasPeeked bool
}

func New(r io.Reader, cfg Config) *Tokenizer {
	t := &Tokenizer{
		r:     bufio.NewReader(r),
		trace: cfg.Tracer,
		line:  1,
	}
	if cfg.Echo {
		t.echo = cfg.EchoWriter
		if t.echo == nil {
			t.echo = os.Stdout
		}
	}
	return t
}

// Tokenize reads r up to and including the EOF token.
func Tokenize(r io.Reader, cfg Config) ([]Token, error) {
	t := New(r, cfg)
	var tokens []Token
	for {
		tok, err := t.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

// NextToken returns the next token. The error is non-nil only when the
// underlying reader fails.
func (t *Tokenizer) NextToken() (Token, error) {
	t.trace.Printf("Entering NextToken")

	var (
		st           = startState
		kind         = ERROR
		text         strings.Builder
		line, column int
	)
	for st != doneState {
		ch, err := t.readChar()
		if err != nil {
			return Token{}, err
		}

		from := st
		t.trace.Printf("\tEntering state %s: %s", from, charString(ch))
		switch st {
		case startState:
			switch {
			case isSpace(ch):
				// skip
			case ch == eof:
				line, column = t.line, t.column+1
				kind = EOF
				st = doneState
			case ch == '0':
				line, column = t.line, t.column
				text.WriteRune(ch)
				st = zeroState
			case isDigit(ch):
				line, column = t.line, t.column
				text.WriteRune(ch)
				st = intState
			case unicode.IsLetter(ch):
				line, column = t.line, t.column
				text.WriteRune(ch)
				st = identState
			default:
				line, column = t.line, t.column
				text.WriteRune(ch)
				if k, ok := punctuationKinds[ch]; ok {
					kind = k
				}
				st = doneState
			}

		case identState:
			if unicode.IsLetter(ch) {
				text.WriteRune(ch)
			} else {
				t.unreadChar(ch)
				if lo.Contains(typeKeywords, text.String()) {
					kind = TYPE
				} else {
					kind = IDENT
				}
				st = doneState
			}

		case zeroState:
			switch {
			case isDigit(ch):
				text.WriteRune(ch)
				st = errorIntState
			case ch == '.':
				text.WriteRune(ch)
				st = periodState
			default:
				t.unreadChar(ch)
				kind = INT
				st = doneState
			}

		case intState:
			switch {
			case isDigit(ch):
				text.WriteRune(ch)
			case ch == '.':
				text.WriteRune(ch)
				st = periodState
			default:
				t.unreadChar(ch)
				kind = INT
				st = doneState
			}

		case periodState:
			if isDigit(ch) {
				text.WriteRune(ch)
				st = floatState
			} else {
				// the period stays consumed as part of the malformed literal
				t.unreadChar(ch)
				kind = ERROR
				st = doneState
			}

		case floatState:
			if isDigit(ch) {
				text.WriteRune(ch)
			} else {
				t.unreadChar(ch)
				kind = FLOAT
				st = doneState
			}

		case errorIntState:
			switch {
			case isDigit(ch):
				text.WriteRune(ch)
			case ch == '.':
				text.WriteRune(ch)
				st = errorFloatState
			default:
				t.unreadChar(ch)
				kind = ERROR
				st = doneState
			}

		case errorFloatState:
			if isDigit(ch) {
				text.WriteRune(ch)
			} else {
				t.unreadChar(ch)
				kind = ERROR
				st = doneState
			}

		default:
			panic(fmt.Sprintf("should not reach here: state=%s", st))
		}
		t.trace.Printf("\tLeaving state %s: %s", from, charString(ch))
	}

	tok := Token{Kind: kind, Text: text.String(), Line: line, Column: column}
	t.trace.Dump("Leaving NextToken", tok)
	return tok, nil
}

// readChar consumes one character, returning eof at the end of input.
func (t *Tokenizer) readChar() (rune, error) {
	if t.hasPeeked {
		t.hasPeeked = false
		t.advance(t.peeked)
		return t.peeked, nil
	}

	ch, _, err := t.r.ReadRune()
	if errors.Is(err, io.EOF) {
		return eof, nil
	} else if err != nil {
		return 0, fmt.Errorf("bufio.Reader.ReadRune: %w", err)
	}

	if t.echo != nil {
		if _, err := io.WriteString(t.echo, string(ch)); err != nil {
			return 0, fmt.Errorf("echo: %w", err)
		}
	}
	t.advance(ch)
	return ch, nil
}

func (t *Tokenizer) advance(ch rune) {
	t.prevLine, t.prevColumn = t.line, t.column
	if ch == '\n' {
		t.line++
		t.column = 0
	} else {
		t.column++
	}
}

// unreadChar pushes ch back so the next readChar returns it again. Only one
// character can be pending at a time.
func (t *Tokenizer) unreadChar(ch rune) {
	t.trace.Printf("Entering unreadChar: %s", charString(ch))
	if ch == eof {
		return
	}
	if t.hasPeeked {
		panic("should not reach here: pushback slot already in use")
	}
	t.peeked = ch
	t.hasPeeked = true
	t.line, t.column = t.prevLine, t.prevColumn
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func charString(ch rune) string {
	if ch == eof {
		return "EOF"
	}
	return strconv.QuoteRune(ch)
}
