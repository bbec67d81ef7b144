package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"courserag/internal/rag"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question from the local catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func runAsk(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
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

	answer, sources := sys.Query(ctx, args[0], sys.CreateSession())
	fmt.Println(answer)

	if len(sources) > 0 && !globalFlags.Quiet {
		st := newStyles(os.Stdout, globalFlags.JSON)
		fmt.Println()
		fmt.Println(st.sectionHeader("Sources:"))
		for _, source := range sources {
			line := source.Title
			if source.LessonNumber > 0 {
				line = fmt.Sprintf("%s - Lesson %d", source.Title, source.LessonNumber)
			}
			if source.Link != "" {
				line += "  " + st.dim(source.Link)
			}
			fmt.Println("  " + line)
		}
	}
	return nil
}
