package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is looked up relative to the working directory unless an
// absolute path is supplied.
const DefaultConfigPath = ".courserag.yaml"

// Options for loading config. ConfigPath is relative to RootDir if not
// absolute.
type Options struct {
	ConfigPath   string
	RootDir      string
	SkipValidate bool
	// Overrides apply last (flags > env > file > defaults). Nil means no CLI
	// overrides.
	Overrides *Overrides
}

// Overrides holds CLI flag values that take precedence over env/file/defaults.
// Only non-nil fields are applied.
type Overrides struct {
	Listen    *string
	Model     *string
	StateDir  *string
	DocsDir   *string
	MaxRounds *int
}

// Load builds config with precedence: defaults → config file → env vars →
// Overrides. The returned error is suitable for exit code 2 when invalid.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	// Optional local dotenv files for developer ergonomics. Precedence stays:
	// explicit env > .env.local > .env.
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("CONFIG_INVALID: failed loading %s: %w", name, err)
		}
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	if !filepath.IsAbs(configPath) && opts.RootDir != "" {
		configPath = filepath.Join(opts.RootDir, configPath)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("CONFIG_INVALID: cannot read config file %s: %w", configPath, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("CONFIG_INVALID: malformed YAML in %s: %w", configPath, err)
		}
	}

	// Env overlay
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Anthropic.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_BASE_URL"); v != "" {
		cfg.Anthropic.BaseURL = v
	}
	if v := os.Getenv("COURSERAG_MODEL"); v != "" {
		cfg.Anthropic.Model = v
	}
	if v := os.Getenv("COURSERAG_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("COURSERAG_STATE_DIR"); v != "" {
		cfg.Paths.StateDir = v
	}
	if v := os.Getenv("COURSERAG_DOCS_DIR"); v != "" {
		cfg.Paths.DocsDir = v
	}
	if v := os.Getenv("COURSERAG_MAX_ROUNDS"); v != "" {
		if rounds, err := strconv.Atoi(v); err == nil && rounds > 0 {
			cfg.Generator.MaxRounds = rounds
		}
	}

	// CLI overrides (highest precedence)
	if opts.Overrides != nil {
		applyOverrides(&cfg, opts.Overrides)
	}

	if !opts.SkipValidate {
		if err := Validate(&cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func applyOverrides(cfg *Config, o *Overrides) {
	if o.Listen != nil {
		cfg.Server.Listen = *o.Listen
	}
	if o.Model != nil {
		cfg.Anthropic.Model = *o.Model
	}
	if o.StateDir != nil {
		cfg.Paths.StateDir = *o.StateDir
	}
	if o.DocsDir != nil {
		cfg.Paths.DocsDir = *o.DocsDir
	}
	if o.MaxRounds != nil {
		cfg.Generator.MaxRounds = *o.MaxRounds
	}
}

// DatabasePath is the SQLite catalog location under the state directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "catalog.db")
}
