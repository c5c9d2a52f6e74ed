package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/karupanerura/pdef-light/internal/config"
	"github.com/karupanerura/pdef-light/internal/parser"
	"github.com/karupanerura/pdef-light/internal/report"
	"github.com/karupanerura/pdef-light/internal/tokenizer"
	"github.com/karupanerura/pdef-light/internal/trace"
	"golang.org/x/sync/errgroup"
)

type Option struct {
	Files          []string `short:"f" long:"file" description:"[REQUIRED] Source file (repeatable, positional arguments are accepted too)"`
	Echo           bool     `short:"e" long:"echo" description:"[OPTIONAL] Echo the input as it is read"`
	TraceTokenizer bool     `short:"t" long:"trace-tokenizer" description:"[OPTIONAL] Trace the tokenizer"`
	TraceParser    bool     `short:"p" long:"trace-parser" description:"[OPTIONAL] Trace the parser"`
	Debug          string   `long:"debug" description:"[OPTIONAL] Debug letters: e (echo), t (tokenizer trace), p (parser trace)"`
	Format         string   `long:"format" description:"[OPTIONAL] Output format" choice:"text" choice:"json" choice:"yaml" default:"text"`
	Tokens         bool     `long:"tokens" description:"[OPTIONAL] Dump tokens instead of parsing"`
	Config         string   `short:"c" long:"config" description:"[OPTIONAL] YAML config file"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opt Option
	p := flags.NewParser(&opt, flags.Default)
	rest, err := p.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		} else {
			p.WriteHelp(stdout)
			return 1
		}
	}
	files := append(opt.Files, rest...)
	if len(files) == 0 {
		p.WriteHelp(stdout)
		return 1
	}

	cfg, err := loadConfig(&opt)
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}

	// echo and trace output would break structured reports on stdout
	sideOut := stdout
	if cfg.Format != config.TextFormat {
		sideOut = stderr
	}

	results, err := processFiles(files, cfg, sideOut)
	if err != nil {
		log.Printf("failed to process: %v", err)
		return 1
	}

	if err := report.Write(stdout, cfg.Format, results); err != nil {
		log.Printf("failed to write report: %v", err)
		return 1
	}
	return 0
}

func loadConfig(opt *Option) (*config.Config, error) {
	cfg := config.Default()
	if opt.Config != "" {
		var err error
		cfg, err = config.Load(opt.Config)
		if err != nil {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
	}

	envChannels, err := trace.ChannelsFromEnv()
	if err != nil {
		return nil, fmt.Errorf("trace.ChannelsFromEnv: %w", err)
	}

	o := config.Overrides{
		Echo:   opt.Echo || strings.ContainsRune(opt.Debug, 'e'),
		Trace:  append(envChannels, trace.ChannelsFromFlags(opt.Debug)...),
		Format: config.Format(opt.Format),
		Tokens: opt.Tokens,
	}
	if opt.TraceTokenizer {
		o.Trace = append(o.Trace, trace.Tokenizer)
	}
	if opt.TraceParser {
		o.Trace = append(o.Trace, trace.Parser)
	}
	cfg.Merge(o)
	return cfg, nil
}

// processFiles runs one pipeline per file concurrently. Side output of each
// file is buffered and flushed in argument order.
func processFiles(files []string, cfg *config.Config, sideOut io.Writer) ([]*report.FileResult, error) {
	outs := make([]bytes.Buffer, len(files))
	results := make([]*report.FileResult, len(files))

	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(runtime.NumCPU())
	for i, filePath := range files {
		i := i
		filePath := filePath
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			r, err := processFile(filePath, cfg, &outs[i])
			if err != nil {
				return fmt.Errorf("%s: %w", filePath, err)
			}
			results[i] = r
			return nil
		})
	}
	err := eg.Wait()

	for i := range outs {
		b := outs[i].Bytes()
		if len(b) != 0 && b[len(b)-1] != '\n' {
			b = append(b, '\n')
		}
		if _, werr := sideOut.Write(b); werr != nil {
			log.Printf("failed to write output of %s: %v", files[i], werr)
		}
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

func processFile(filePath string, cfg *config.Config, out io.Writer) (*report.FileResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%q): %w", filePath, err)
	}
	defer f.Close()

	logger := trace.New(out)
	cfg.Register(logger)
	tcfg := tokenizer.Config{
		Echo:       cfg.Echo,
		EchoWriter: out,
		Tracer:     logger.Tracer(trace.Tokenizer),
	}

	if cfg.Tokens {
		tokens, err := tokenizer.Tokenize(f, tcfg)
		if err != nil {
			return nil, fmt.Errorf("tokenizer.Tokenize: %w", err)
		}
		return report.NewTokenResult(filePath, tokens), nil
	}

	err = parser.Parse(f, tcfg, parser.WithTracer(logger.Tracer(trace.Parser)))
	return report.NewFileResult(filePath, err)
}
