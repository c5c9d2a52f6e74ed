package parser

import (
	"fmt"
	"strings"

	"github.com/karupanerura/pdef-light/internal/tokenizer"
	"github.com/samber/lo"
)

// SyntaxError reports a token that the grammar did not allow at its position.
type SyntaxError struct {
	Message  string
	Expected []tokenizer.Kind
	Token    tokenizer.Token
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s, but saw %s", e.Token.Pos(), e.Message, e.Token)
}

func newSyntaxError(msg string, tok tokenizer.Token, expected ...tokenizer.Kind) *SyntaxError {
	return &SyntaxError{Message: msg, Expected: expected, Token: tok}
}

func expectedKindError(expected tokenizer.Kind, tok tokenizer.Token) *SyntaxError {
	return newSyntaxError(fmt.Sprintf("expected to see %s", expected), tok, expected)
}

func expectedSetError(what string, tok tokenizer.Token, expected ...tokenizer.Kind) *SyntaxError {
	names := lo.Map(expected, func(k tokenizer.Kind, _ int) string {
		return k.String()
	})
	return newSyntaxError(fmt.Sprintf("expected %s (%s)", what, strings.Join(names, ", ")), tok, expected...)
}

// ErrorList holds every syntax error of a parse in source order.
type ErrorList []*SyntaxError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}

	msgs := lo.Map([]*SyntaxError(l), func(e *SyntaxError, _ int) string {
		return e.Error()
	})
	return strings.Join(msgs, "\n")
}
