package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.RulesEnabled || !cfg.LLMEnabled || !cfg.RetrievalEnabled {
		t.Error("Defaults must enable rules, LLM, and retrieval")
	}
	if cfg.AutoFix.Enabled {
		t.Error("AutoFix must be off by default")
	}
	if cfg.RetrievalK <= 0 {
		t.Error("RetrievalK default must be positive")
	}
}

func TestApplyLabels(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		check  func(t *testing.T, cfg Config)
	}{
		{
			name:   "skip",
			labels: []string{"glint:skip"},
			check: func(t *testing.T, cfg Config) {
				if !cfg.Skip {
					t.Error("expected Skip")
				}
			},
		},
		{
			name:   "rules only disables llm",
			labels: []string{"glint:rules-only"},
			check: func(t *testing.T, cfg Config) {
				if cfg.LLMEnabled {
					t.Error("expected LLM disabled")
				}
				if !cfg.RulesEnabled {
					t.Error("rules must stay enabled")
				}
			},
		},
		{
			name:   "no rag",
			labels: []string{"glint:no-rag"},
			check: func(t *testing.T, cfg Config) {
				if cfg.RetrievalEnabled {
					t.Error("expected retrieval disabled")
				}
			},
		},
		{
			name:   "case insensitive and trimmed",
			labels: []string{"  GLINT:Allow-Console "},
			check: func(t *testing.T, cfg Config) {
				if !cfg.AllowConsole {
					t.Error("expected AllowConsole")
				}
			},
		},
		{
			name:   "unknown ignored",
			labels: []string{"bug", "help wanted"},
			check: func(t *testing.T, cfg Config) {
				if cfg.Skip || !cfg.LLMEnabled {
					t.Error("unknown labels must not change config")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			ApplyLabels(&cfg, tt.labels)
			tt.check(t, cfg)
		})
	}
}

func TestMatchesPath(t *testing.T) {
	cfg := Default()
	cfg.Include = []string{"**/*.go", "**/*.py"}
	cfg.Exclude = []string{"vendor/**", "**/*_gen.go"}

	tests := []struct {
		path string
		want bool
	}{
		{"main.go", true},
		{"internal/review/engine.go", true},
		{"scripts/run.py", true},
		{"vendor/lib/lib.go", false},
		{"internal/api_gen.go", false},
		{"README.md", false},
	}
	for _, tt := range tests {
		if got := cfg.MatchesPath(tt.path); got != tt.want {
			t.Errorf("MatchesPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestProjectOverlay(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir()) // isolate from any real global config
	root := t.TempDir()
	overlay := "provider: openai\nretrievalK: 9\nautofix:\n  enabled: true\n  maxLines: 3\n"
	if err := os.WriteFile(filepath.Join(root, ".glint.yml"), []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root, nil, nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if cfg.RetrievalK != 9 {
		t.Errorf("RetrievalK = %d, want 9", cfg.RetrievalK)
	}
	if !cfg.AutoFix.Enabled || cfg.AutoFix.MaxLines != 3 {
		t.Errorf("AutoFix = %+v, want enabled with maxLines 3", cfg.AutoFix)
	}
	// Unset fields keep defaults.
	if cfg.Model != Default().Model {
		t.Errorf("Model = %q, want default", cfg.Model)
	}
}

func TestLoadClampsConcurrency(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()
	overlay := "budget:\n  maxConcurrency: 0\n"
	if err := os.WriteFile(filepath.Join(root, ".glint.yml"), []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root, nil, nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Budget.MaxConcurrency != 1 {
		t.Errorf("MaxConcurrency = %d, want clamp to 1", cfg.Budget.MaxConcurrency)
	}
}

func TestOverridesBeatLabels(t *testing.T) {
	cfg := Default()
	ApplyLabels(&cfg, []string{"glint:autofix"})
	mergeOverrides(&cfg, map[string]string{"noLLM": "true"})
	if cfg.LLMEnabled {
		t.Error("override must disable LLM")
	}
	if !cfg.AutoFix.Enabled {
		t.Error("label-applied autofix must survive unrelated overrides")
	}
}
