package report_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/pdef-light/internal/config"
	"github.com/karupanerura/pdef-light/internal/parser"
	"github.com/karupanerura/pdef-light/internal/report"
	"github.com/karupanerura/pdef-light/internal/tokenizer"
)

func results(t *testing.T) []*report.FileResult {
	t.Helper()
	return resultsOf(t, "{int x, = 1}")
}

func resultsOf(t *testing.T, ngSource string) []*report.FileResult {
	t.Helper()

	ok, err := report.NewFileResult("ok.pdef", parser.Parse(strings.NewReader("{int x, x = 1}"), tokenizer.Config{}))
	if err != nil {
		t.Fatal(err)
	}
	ng, err := report.NewFileResult("ng.pdef", parser.Parse(strings.NewReader(ngSource), tokenizer.Config{}))
	if err != nil {
		t.Fatal(err)
	}
	return []*report.FileResult{ok, ng}
}

func TestNewFileResult(t *testing.T) {
	t.Parallel()

	expected := []*report.FileResult{
		{File: "ok.pdef", Parsed: true},
		{
			File: "ng.pdef",
			Errors: []report.ErrorEntry{
				{Message: "expected a statement (TYPE, IDENT, LBRACE)", Kind: "ASSIGN", Text: "=", Line: 1, Column: 9},
			},
		},
	}
	if diff := cmp.Diff(expected, results(t)); diff != "" {
		t.Errorf("unexpected results (-want +got):\n%s", diff)
	}

	errBoom := errors.New("boom")
	if _, err := report.NewFileResult("x.pdef", errBoom); !errors.Is(err, errBoom) {
		t.Errorf("expect %v but got %v", errBoom, err)
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := report.Write(&buf, config.TextFormat, results(t)); err != nil {
		t.Fatal(err)
	}

	expected := "ok.pdef: Program parsed!\n" +
		"ng.pdef:1:9: expected a statement (TYPE, IDENT, LBRACE), but saw ASSIGN(=)\n"
	if diff := cmp.Diff(expected, buf.String()); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestWriteTokens(t *testing.T) {
	t.Parallel()

	tokens, err := tokenizer.Tokenize(strings.NewReader("{x}"), tokenizer.Config{})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, config.TextFormat, []*report.FileResult{report.NewTokenResult("a.pdef", tokens)}); err != nil {
		t.Fatal(err)
	}

	expected := "a.pdef: LBRACE({) <1,1>\n" +
		"a.pdef: IDENT(x) <1,2>\n" +
		"a.pdef: RBRACE(}) <1,3>\n" +
		"a.pdef: EOF <1,4>\n"
	if diff := cmp.Diff(expected, buf.String()); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := report.Write(&buf, config.JSONFormat, results(t)); err != nil {
		t.Fatal(err)
	}

	var got []*report.FileResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(results(t), got); diff != "" {
		t.Errorf("unexpected results (-want +got):\n%s", diff)
	}
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()

	expected := resultsOf(t, "{int x foo}")
	var buf bytes.Buffer
	if err := report.Write(&buf, config.YAMLFormat, expected); err != nil {
		t.Fatal(err)
	}

	var got []*report.FileResult
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("unexpected results (-want +got):\n%s", diff)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	if err := report.Write(&bytes.Buffer{}, config.Format("xml"), nil); err == nil {
		t.Error("should be error")
	}
}
