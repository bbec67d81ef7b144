package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"courserag/internal/rag"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [folder]",
	Short: "Parse course scripts into the catalog",
	Long:  "ingest reads course scripts from the given folder (default: the configured docs directory), chunks them, and adds new courses to the catalog. Already-known courses are skipped.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIngest,
}

var ingestClear bool

func init() {
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "wipe the catalog before ingesting")
}

func runIngest(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir := cfg.Paths.DocsDir
	if len(args) == 1 {
		dir = args[0]
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		exitWith(ExitDocsInaccessible, "ERROR: course folder not found: "+dir)
	}

	sys, err := rag.New(cfg)
	if err != nil {
		exitWith(ExitCatalogFailure, "ERROR: failed to open catalog: "+err.Error())
	}
	defer func() { _ = sys.Close() }()

	ctx := context.Background()
	if err := sys.Preload(ctx); err != nil {
		exitWith(ExitCatalogFailure, "ERROR: failed to load index: "+err.Error())
	}

	courses, chunks, err := sys.AddCourseFolder(ctx, dir, ingestClear)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	if globalFlags.JSON {
		emitJSON("ingest_complete", map[string]any{"courses": courses, "chunks": chunks})
		return nil
	}
	st := newStyles(os.Stdout, globalFlags.JSON)
	fmt.Println(st.stat("courses_added", courses), st.stat("chunks_added", chunks))
	return nil
}
