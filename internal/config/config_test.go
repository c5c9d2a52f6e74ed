package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/karupanerura/pdef-light/internal/config"
	"github.com/karupanerura/pdef-light/internal/trace"
)

func TestParse(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name      string
		source    string
		expected  *config.Config
		expectErr bool
	}{
		{
			name:     "empty",
			source:   "",
			expected: &config.Config{Format: config.TextFormat},
		},
		{
			name:   "full",
			source: "echo: true\ntrace:\n  - tokenizer\n  - parser\nformat: json\ntokens: true\n",
			expected: &config.Config{
				Echo:   true,
				Trace:  []trace.Channel{trace.Tokenizer, trace.Parser},
				Format: config.JSONFormat,
				Tokens: true,
			},
		},
		{
			name:      "unknown format",
			source:    "format: xml\n",
			expectErr: true,
		},
		{
			name:      "unknown channel",
			source:    "trace: [lexer]\n",
			expectErr: true,
		},
		{
			name:      "unknown key",
			source:    "verbose: true\n",
			expectErr: true,
		},
		{
			name:      "broken yaml",
			source:    "echo: [\n",
			expectErr: true,
		},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.Parse(strings.NewReader(tt.source))
			if err != nil {
				if tt.expectErr {
					t.Logf("expected error: %v", err)
					return
				}
				t.Fatal(err)
			}
			if tt.expectErr {
				t.Fatal("should be error")
			}
			if diff := cmp.Diff(tt.expected, cfg); diff != "" {
				t.Errorf("unexpected config (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	filePath := filepath.Join(t.TempDir(), "pdef.yaml")
	if err := os.WriteFile(filePath, []byte("format: yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(filePath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Format != config.YAMLFormat {
		t.Errorf("expect yaml but got %q", cfg.Format)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("should be error")
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Trace: []trace.Channel{trace.Parser}, Format: config.JSONFormat}
	cfg.Merge(config.Overrides{
		Echo:   true,
		Trace:  []trace.Channel{trace.Parser, trace.Tokenizer},
		Format: config.TextFormat,
	})

	expected := &config.Config{
		Echo:   true,
		Trace:  []trace.Channel{trace.Parser, trace.Tokenizer},
		Format: config.JSONFormat,
	}
	if diff := cmp.Diff(expected, cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}

	cfg = config.Default()
	cfg.Merge(config.Overrides{Format: config.YAMLFormat, Tokens: true})
	expected = &config.Config{Format: config.YAMLFormat, Tokens: true}
	if diff := cmp.Diff(expected, cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
}
