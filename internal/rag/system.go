// Package rag wires the store, index, embedder, tools, generator, and session
// layers into one query surface shared by the HTTP API and the CLI.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"courserag/internal/anthropic"
	"courserag/internal/config"
	"courserag/internal/embed"
	"courserag/internal/generator"
	"courserag/internal/index"
	"courserag/internal/ingest"
	"courserag/internal/model"
	"courserag/internal/retrieval"
	"courserag/internal/session"
	"courserag/internal/store"
	"courserag/internal/tools"
)

type System struct {
	cfg       *config.Config
	store     *store.SQLiteStore
	retrieval *retrieval.Service
	ingest    *ingest.Service
	tools     *tools.Manager
	generator *generator.Generator
	sessions  *session.Manager
	logger    *slog.Logger
}

// New builds the full system from configuration. The SQLite catalog lives
// under the configured state directory; Close releases it.
func New(cfg *config.Config) (*System, error) {
	client := anthropic.NewClient(cfg.Anthropic.BaseURL, cfg.Anthropic.APIKey, cfg.Anthropic.Model)
	return newWithClient(cfg, client)
}

func newWithClient(cfg *config.Config, client generator.MessagesClient) (*System, error) {
	if err := os.MkdirAll(cfg.Paths.StateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	st := store.NewSQLiteStore(cfg.DatabasePath())
	if err := st.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	retrievalSvc := retrieval.NewService(
		st,
		index.NewCosineIndex(),
		embed.NewHashEmbedder(cfg.Search.EmbedDims),
		cfg.Search.MaxResults,
	)

	manager := tools.NewManager()
	if err := manager.Register(tools.NewSearchTool(retrievalSvc)); err != nil {
		return nil, err
	}
	if err := manager.Register(tools.NewOutlineTool(retrievalSvc)); err != nil {
		return nil, err
	}

	temperature := cfg.Generator.Temperature
	gen := generator.New(client, generator.Options{
		SystemPrompt: cfg.Generator.SystemPrompt,
		MaxRounds:    cfg.Generator.MaxRounds,
		Temperature:  &temperature,
		MaxTokens:    cfg.Generator.MaxTokens,
	})

	return &System{
		cfg:       cfg,
		store:     st,
		retrieval: retrievalSvc,
		ingest:    ingest.NewService(retrievalSvc, ingest.NewChunker(cfg.Chunking.MaxChars, cfg.Chunking.OverlapChars)),
		tools:     manager,
		generator: gen,
		sessions:  session.NewManager(cfg.Session.MaxHistory),
		logger:    slog.Default().With("component", "rag"),
	}, nil
}

// Preload warms the vector index from the persisted catalog.
func (s *System) Preload(ctx context.Context) error {
	return s.retrieval.Preload(ctx)
}

// Query answers one user message within a session. It returns the answer text
// and the sources consulted during the exchange.
func (s *System) Query(ctx context.Context, query, sessionID string) (string, []model.Source) {
	history := s.sessions.FormatHistory(sessionID)

	s.tools.ResetSources()
	answer := s.generator.Generate(ctx, query, history, s.tools.Definitions(), s.tools)
	sources := s.tools.LastSources()

	s.sessions.AddExchange(sessionID, query, answer)
	return answer, sources
}

// CreateSession starts a fresh conversation.
func (s *System) CreateSession() string {
	return s.sessions.Create()
}

// AddCourseFolder ingests course scripts from dir, skipping known courses.
func (s *System) AddCourseFolder(ctx context.Context, dir string, clearExisting bool) (int, int, error) {
	return s.ingest.AddCourseFolder(ctx, dir, clearExisting)
}

// Analytics reports catalog statistics.
func (s *System) Analytics(ctx context.Context) (model.Analytics, error) {
	return s.retrieval.Analytics(ctx)
}

func (s *System) Close() error {
	return s.store.Close()
}
