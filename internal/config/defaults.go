package config

func Default() Config {
	return Config{
		Version: 1,
		Anthropic: Anthropic{
			APIKey:  "",
			BaseURL: "https://api.anthropic.com",
			Model:   "claude-sonnet-4-20250514",
		},
		Generator: Generator{
			SystemPrompt: "",
			MaxRounds:    2,
			Temperature:  0,
			MaxTokens:    800,
		},
		Chunking: Chunking{
			MaxChars:     800,
			OverlapChars: 100,
		},
		Search: Search{
			MaxResults: 5,
			EmbedDims:  256,
		},
		Session: Session{
			MaxHistory: 2,
		},
		Server: Server{
			Listen: "127.0.0.1:8000",
		},
		Paths: Paths{
			StateDir: ".courserag",
			DocsDir:  "docs",
		},
	}
}
