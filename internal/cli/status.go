package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"courserag/internal/rag"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog statistics",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.DatabasePath()); os.IsNotExist(err) {
		fmt.Println("No catalog found at", cfg.Paths.StateDir, "- run 'courserag ingest' first.")
		return nil
	}

	sys, err := rag.New(cfg)
	if err != nil {
		exitWith(ExitCatalogFailure, "ERROR: failed to open catalog: "+err.Error())
	}
	defer func() { _ = sys.Close() }()

	analytics, err := sys.Analytics(context.Background())
	if err != nil {
		return err
	}

	if globalFlags.JSON {
		emitJSON("status", map[string]any{
			"total_courses": analytics.TotalCourses,
			"course_titles": analytics.CourseTitles,
		})
		return nil
	}

	st := newStyles(os.Stdout, globalFlags.JSON)
	fmt.Println(st.kv("State", cfg.Paths.StateDir))
	fmt.Println(st.kv("Courses", fmt.Sprintf("%d", analytics.TotalCourses)))
	for _, title := range analytics.CourseTitles {
		fmt.Println("  -", title)
	}
	return nil
}
