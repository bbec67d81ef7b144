package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	cfg, err := Load(Options{RootDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Generator.MaxRounds != 2 || cfg.Generator.MaxTokens != 800 {
		t.Fatalf("defaults lost: %#v", cfg.Generator)
	}
	if cfg.Server.Listen != "127.0.0.1:8000" {
		t.Fatalf("listen default lost: %q", cfg.Server.Listen)
	}
	if cfg.Anthropic.APIKey != "test-key" {
		t.Fatalf("env api key not applied: %q", cfg.Anthropic.APIKey)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	dir := t.TempDir()
	file := `
generator:
  max_rounds: 3
server:
  listen: "0.0.0.0:9000"
`
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigPath), []byte(file), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(Options{RootDir: dir})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Generator.MaxRounds != 3 {
		t.Fatalf("file override lost: %d", cfg.Generator.MaxRounds)
	}
	if cfg.Server.Listen != "0.0.0.0:9000" {
		t.Fatalf("file override lost: %q", cfg.Server.Listen)
	}
	// Untouched keys keep defaults.
	if cfg.Generator.MaxTokens != 800 {
		t.Fatalf("unrelated default lost: %d", cfg.Generator.MaxTokens)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("COURSERAG_LISTEN", "127.0.0.1:7777")
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigPath), []byte("server:\n  listen: \"0.0.0.0:9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(Options{RootDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Listen != "127.0.0.1:7777" {
		t.Fatalf("env did not beat file: %q", cfg.Server.Listen)
	}
}

func TestLoad_OverridesBeatEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("COURSERAG_LISTEN", "127.0.0.1:7777")
	listen := "127.0.0.1:8888"
	rounds := 5

	cfg, err := Load(Options{
		RootDir:   t.TempDir(),
		Overrides: &Overrides{Listen: &listen, MaxRounds: &rounds},
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Listen != "127.0.0.1:8888" {
		t.Fatalf("override did not beat env: %q", cfg.Server.Listen)
	}
	if cfg.Generator.MaxRounds != 5 {
		t.Fatalf("override lost: %d", cfg.Generator.MaxRounds)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigPath), []byte("generator: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(Options{RootDir: dir})
	if err == nil || !strings.Contains(err.Error(), "CONFIG_INVALID") {
		t.Fatalf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := Load(Options{RootDir: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestLoad_SkipValidate(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg, err := Load(Options{RootDir: t.TempDir(), SkipValidate: true})
	if err != nil {
		t.Fatalf("SkipValidate should not validate: %v", err)
	}
	if cfg.Anthropic.APIKey != "" {
		t.Fatalf("unexpected key: %q", cfg.Anthropic.APIKey)
	}
}

func TestValidate_Ranges(t *testing.T) {
	base := Default()
	base.Anthropic.APIKey = "k"

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"rounds", func(c *Config) { c.Generator.MaxRounds = 0 }, "max_rounds"},
		{"tokens", func(c *Config) { c.Generator.MaxTokens = 0 }, "max_tokens"},
		{"overlap", func(c *Config) { c.Chunking.OverlapChars = c.Chunking.MaxChars }, "overlap_chars"},
		{"results", func(c *Config) { c.Search.MaxResults = 0 }, "max_results"},
		{"history", func(c *Config) { c.Session.MaxHistory = 0 }, "max_history"},
		{"listen", func(c *Config) { c.Server.Listen = "" }, "server.listen"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := Validate(&cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := Default()
	cfg.Paths.StateDir = "/tmp/state"
	if got := cfg.DatabasePath(); got != filepath.Join("/tmp/state", "catalog.db") {
		t.Fatalf("got %q", got)
	}
}
