package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"courserag/internal/rag"
	"courserag/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Ingest course scripts and serve the query API",
	RunE:  runServe,
}

var (
	serveListen    string
	serveStatic    string
	serveSkipDocs  bool
	serveClearDocs bool
)

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "host:port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveStatic, "static", "", "directory with the web frontend to serve at /")
	serveCmd.Flags().BoolVar(&serveSkipDocs, "skip-docs", false, "do not ingest the docs directory at startup")
	serveCmd.Flags().BoolVar(&serveClearDocs, "clear", false, "wipe the catalog before ingesting")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Server.Listen = serveListen
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

	st := newStyles(os.Stdout, globalFlags.JSON)
	if !serveSkipDocs {
		if info, err := os.Stat(cfg.Paths.DocsDir); err == nil && info.IsDir() {
			courses, chunks, err := sys.AddCourseFolder(ctx, cfg.Paths.DocsDir, serveClearDocs)
			if err != nil {
				exitWith(ExitCatalogFailure, "ERROR: ingestion failed: "+err.Error())
			}
			if !globalFlags.Quiet && !globalFlags.JSON {
				fmt.Println(st.stat("courses_added", courses), st.stat("chunks_added", chunks))
			}
		} else if !globalFlags.Quiet && !globalFlags.JSON {
			fmt.Println(st.warnPrefix(), "docs directory not found:", cfg.Paths.DocsDir)
		}
	}

	listener, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		exitWith(ExitBindFailure, "ERROR: server bind failure: "+err.Error())
	}
	baseURL := fmt.Sprintf("http://%s", listener.Addr().String())

	if globalFlags.JSON {
		emitJSON("server_started", map[string]any{"url": baseURL})
	} else if !globalFlags.Quiet {
		fmt.Println(st.banner())
		fmt.Println(st.kv("API", baseURL+"/api/query"))
		fmt.Println(st.kv("Courses", baseURL+"/api/courses"))
		if serveStatic != "" {
			fmt.Println(st.kv("Frontend", baseURL+"/"))
		}
	}

	srv := server.New(sys, server.Options{StaticDir: serveStatic})
	return srv.Serve(ctx, listener)
}

func emitJSON(event string, data map[string]any) {
	out := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": "info",
		"event": event,
		"data":  data,
	}
	_ = json.NewEncoder(os.Stdout).Encode(out)
}
