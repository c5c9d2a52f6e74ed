package tokenizer

import "fmt"

type Kind int

const (
	ERROR Kind = iota
	EOF

	COMMA
	ASSIGN
	LBRACE
	RBRACE
	LPAREN
	RPAREN

	ADD
	SUB
	MUL
	DIV
	MOD

	TYPE
	IDENT
	INT
	FLOAT
)

var kindNames = map[Kind]string{
	ERROR:  "ERROR",
	EOF:    "EOF",
	COMMA:  "COMMA",
	ASSIGN: "ASSIGN",
	LBRACE: "LBRACE",
	RBRACE: "RBRACE",
	LPAREN: "LPAREN",
	RPAREN: "RPAREN",
	ADD:    "ADD",
	SUB:    "SUB",
	MUL:    "MUL",
	DIV:    "DIV",
	MOD:    "MOD",
	TYPE:   "TYPE",
	IDENT:  "IDENT",
	INT:    "INT",
	FLOAT:  "FLOAT",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var punctuationKinds = map[rune]Kind{
	',': COMMA,
	'=': ASSIGN,
	'{': LBRACE,
	'}': RBRACE,
	'(': LPAREN,
	')': RPAREN,
	'+': ADD,
	'-': SUB,
	'*': MUL,
	'/': DIV,
	'%': MOD,
}

// Token is a lexeme with its kind and the position of its first character.
type Token struct {
	Kind   Kind
	Text   string
	Line   int
	Column int
}

// String renders the token as KIND(text), omitting empty text.
func (t Token) String() string {
	if t.Text == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
}

// Pos renders the token position as line:column.
func (t Token) Pos() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}
