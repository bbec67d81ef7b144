// Package config layers defaults, a YAML config file, environment variables,
// and CLI flag overrides into the runtime configuration.
package config

type Config struct {
	Version int `yaml:"version"`

	Anthropic Anthropic `yaml:"anthropic"`
	Generator Generator `yaml:"generator"`
	Chunking  Chunking  `yaml:"chunking"`
	Search    Search    `yaml:"search"`
	Session   Session   `yaml:"session"`
	Server    Server    `yaml:"server"`
	Paths     Paths     `yaml:"paths"`
}

type Anthropic struct {
	// APIKey is only ever populated from the environment; it is never
	// written back to disk.
	APIKey  string `yaml:"-"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type Generator struct {
	SystemPrompt string  `yaml:"system_prompt"`
	MaxRounds    int     `yaml:"max_rounds"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
}

type Chunking struct {
	MaxChars     int `yaml:"max_chars"`
	OverlapChars int `yaml:"overlap_chars"`
}

type Search struct {
	MaxResults int `yaml:"max_results"`
	// EmbedDims sizes the hashed embedding space.
	EmbedDims int `yaml:"embed_dims"`
}

type Session struct {
	MaxHistory int `yaml:"max_history"`
}

type Server struct {
	Listen string `yaml:"listen"`
}

type Paths struct {
	// StateDir holds the SQLite catalog.
	StateDir string `yaml:"state_dir"`
	// DocsDir is scanned for course scripts at startup.
	DocsDir string `yaml:"docs_dir"`
}
