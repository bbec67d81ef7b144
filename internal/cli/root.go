// Package cli implements the courserag command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"courserag/internal/config"
)

const (
	ExitSuccess          = 0
	ExitGenericError     = 1
	ExitConfigInvalid    = 2
	ExitDocsInaccessible = 3
	ExitBindFailure      = 4
	ExitCatalogFailure   = 5
)

// GlobalFlags holds flags shared across all commands.
type GlobalFlags struct {
	Dir        string
	ConfigPath string
	StateDir   string
	DocsDir    string
	JSON       bool
	Quiet      bool
}

var globalFlags GlobalFlags

var rootCmd = &cobra.Command{
	Use:   "courserag",
	Short: "Retrieval-augmented assistant for course materials",
	Long:  "courserag indexes course scripts into a local catalog and answers questions about them through a tool-calling model backend.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		configureLogging()
	},
}

// configureLogging routes structured logs to stderr: text for humans, JSON
// under --json, warnings-only under --quiet.
func configureLogging() {
	level := slog.LevelInfo
	if globalFlags.Quiet {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if globalFlags.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.Dir, "dir", ".", "project root directory")
	rootCmd.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", config.DefaultConfigPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&globalFlags.StateDir, "state-dir", "", "state directory (default: <root>/.courserag)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.DocsDir, "docs", "", "course scripts directory (default: <root>/docs)")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.JSON, "json", false, "emit JSON output for automation")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Quiet, "quiet", false, "reduce output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns an error; exit code is set by RunE.
func Execute() error {
	return rootCmd.Execute()
}

// exitWith prints message to stderr and exits with code.
func exitWith(code int, msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}

// loadConfig resolves directories from the global flags and applies the
// flags > env > file > defaults precedence.
func loadConfig() (*config.Config, error) {
	rootDir, err := filepath.Abs(globalFlags.Dir)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(rootDir); err != nil || !info.IsDir() {
		exitWith(ExitDocsInaccessible, "ERROR: root directory not found or not a directory: "+globalFlags.Dir)
	}

	overrides := &config.Overrides{}
	if globalFlags.StateDir != "" {
		stateDir, err := filepath.Abs(globalFlags.StateDir)
		if err != nil {
			return nil, err
		}
		overrides.StateDir = &stateDir
	}
	if globalFlags.DocsDir != "" {
		docsDir, err := filepath.Abs(globalFlags.DocsDir)
		if err != nil {
			return nil, err
		}
		overrides.DocsDir = &docsDir
	}

	cfg, err := config.Load(config.Options{
		ConfigPath: globalFlags.ConfigPath,
		RootDir:    rootDir,
		Overrides:  overrides,
	})
	if err != nil {
		exitWith(ExitConfigInvalid, "ERROR: "+err.Error())
	}

	// Relative state/docs paths resolve against the project root.
	if !filepath.IsAbs(cfg.Paths.StateDir) {
		cfg.Paths.StateDir = filepath.Join(rootDir, cfg.Paths.StateDir)
	}
	if !filepath.IsAbs(cfg.Paths.DocsDir) {
		cfg.Paths.DocsDir = filepath.Join(rootDir, cfg.Paths.DocsDir)
	}
	return cfg, nil
}
