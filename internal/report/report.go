package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/karupanerura/pdef-light/internal/config"
	"github.com/karupanerura/pdef-light/internal/parser"
	"github.com/karupanerura/pdef-light/internal/tokenizer"
	"github.com/mattn/go-isatty"
	"github.com/samber/lo"
)

type FileResult struct {
	File   string       `json:"file" yaml:"file"`
	Parsed bool         `json:"parsed" yaml:"parsed"`
	Errors []ErrorEntry `json:"errors,omitempty" yaml:"errors,omitempty"`
	Tokens []TokenEntry `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

type ErrorEntry struct {
	Message string `json:"message" yaml:"message"`
	Kind    string `json:"kind" yaml:"kind"`
	Text    string `json:"text,omitempty" yaml:"text,omitempty"`
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
}

type TokenEntry struct {
	Kind   string `json:"kind" yaml:"kind"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

// NewFileResult converts the result of parser.ParseProgram. Errors other
// than syntax errors are returned as is.
func NewFileResult(file string, err error) (*FileResult, error) {
	if err == nil {
		return &FileResult{File: file, Parsed: true}, nil
	}

	var list parser.ErrorList
	if !errors.As(err, &list) {
		return nil, err
	}

	return &FileResult{
		File: file,
		Errors: lo.Map([]*parser.SyntaxError(list), func(e *parser.SyntaxError, _ int) ErrorEntry {
			return ErrorEntry{
				Message: e.Message,
				Kind:    e.Token.Kind.String(),
				Text:    e.Token.Text,
				Line:    e.Token.Line,
				Column:  e.Token.Column,
			}
		}),
	}, nil
}

func NewTokenResult(file string, tokens []tokenizer.Token) *FileResult {
	return &FileResult{
		File: file,
		Tokens: lo.Map(tokens, func(t tokenizer.Token, _ int) TokenEntry {
			return TokenEntry{Kind: t.Kind.String(), Text: t.Text, Line: t.Line, Column: t.Column}
		}),
	}
}

func Write(w io.Writer, format config.Format, results []*FileResult) error {
	switch format {
	case config.TextFormat:
		return writeText(w, results)
	case config.JSONFormat:
		return writeJSON(w, results)
	case config.YAMLFormat:
		return writeYAML(w, results)
	default:
		return fmt.Errorf("unsupported format: %q", format)
	}
}

func writeText(w io.Writer, results []*FileResult) error {
	for _, r := range results {
		if r.Tokens != nil {
			for _, t := range r.Tokens {
				if _, err := fmt.Fprintf(w, "%s: %s <%d,%d>\n", r.File, tokenString(t), t.Line, t.Column); err != nil {
					return fmt.Errorf("fmt.Fprintf: %w", err)
				}
			}
			continue
		}

		if r.Parsed {
			if _, err := fmt.Fprintf(w, "%s: Program parsed!\n", r.File); err != nil {
				return fmt.Errorf("fmt.Fprintf: %w", err)
			}
			continue
		}
		for _, e := range r.Errors {
			saw := e.Kind
			if e.Text != "" {
				saw = fmt.Sprintf("%s(%s)", e.Kind, e.Text)
			}
			if _, err := fmt.Fprintf(w, "%s:%d:%d: %s, but saw %s\n", r.File, e.Line, e.Column, e.Message, saw); err != nil {
				return fmt.Errorf("fmt.Fprintf: %w", err)
			}
		}
	}
	return nil
}

func tokenString(t TokenEntry) string {
	if t.Text == "" {
		return t.Kind
	}
	return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
}

func writeJSON(w io.Writer, results []*FileResult) error {
	opts := []json.EncodeOptionFunc{json.DisableHTMLEscape()}
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		if isatty.IsTerminal(f.Fd()) {
			opts = append(opts, json.Colorize(json.DefaultColorScheme))
		}
	}

	b, err := json.MarshalIndentWithOption(results, "", "\t", opts...)
	if err != nil {
		return fmt.Errorf("json.MarshalIndentWithOption: %w", err)
	}

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, results []*FileResult) error {
	b, err := yaml.Marshal(results)
	if err != nil {
		return fmt.Errorf("yaml.Marshal: %w", err)
	}

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	return nil
}
