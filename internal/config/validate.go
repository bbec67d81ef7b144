package config

import "fmt"

// Validate checks required fields and value ranges. Errors carry an
// actionable message so callers can print it and exit 2.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("CONFIG_INVALID: nil config")
	}
	if cfg.Anthropic.APIKey == "" {
		return fmt.Errorf("CONFIG_INVALID: Missing ANTHROPIC_API_KEY\nSet env: ANTHROPIC_API_KEY=...")
	}
	if cfg.Anthropic.Model == "" {
		return fmt.Errorf("CONFIG_INVALID: anthropic.model must not be empty")
	}
	if cfg.Generator.MaxRounds < 1 {
		return fmt.Errorf("CONFIG_INVALID: generator.max_rounds=%d; must be at least 1", cfg.Generator.MaxRounds)
	}
	if cfg.Generator.MaxTokens < 1 {
		return fmt.Errorf("CONFIG_INVALID: generator.max_tokens=%d; must be at least 1", cfg.Generator.MaxTokens)
	}
	if cfg.Chunking.MaxChars < 1 {
		return fmt.Errorf("CONFIG_INVALID: chunking.max_chars=%d; must be at least 1", cfg.Chunking.MaxChars)
	}
	if cfg.Chunking.OverlapChars < 0 || cfg.Chunking.OverlapChars >= cfg.Chunking.MaxChars {
		return fmt.Errorf("CONFIG_INVALID: chunking.overlap_chars=%d; must be in [0, max_chars)", cfg.Chunking.OverlapChars)
	}
	if cfg.Search.MaxResults < 1 {
		return fmt.Errorf("CONFIG_INVALID: search.max_results=%d; must be at least 1", cfg.Search.MaxResults)
	}
	if cfg.Session.MaxHistory < 1 {
		return fmt.Errorf("CONFIG_INVALID: session.max_history=%d; must be at least 1", cfg.Session.MaxHistory)
	}
	if cfg.Server.Listen == "" {
		return fmt.Errorf("CONFIG_INVALID: server.listen must not be empty")
	}
	return nil
}
