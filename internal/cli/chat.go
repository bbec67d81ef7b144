package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"courserag/internal/chat"
	"courserag/internal/rag"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat over the local catalog",
	RunE:  runChat,
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sys, err := rag.New(cfg)
	if err != nil {
		exitWith(ExitCatalogFailure, "ERROR: failed to open catalog: "+err.Error())
	}
	defer func() { _ = sys.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sys.Preload(ctx); err != nil {
		exitWith(ExitCatalogFailure, "ERROR: failed to load index: "+err.Error())
	}
	return chat.Run(ctx, sys)
}
