// go_ytsum: YouTube transcript summarizer MCP server.
//
// Exposes four MCP tools: youtube_summarize, youtube_transcript,
// youtube_history, youtube_title. Transcripts and summaries are cached in
// the store selected by STORE_DRIVER (sqlite, postgres, redis, memory).
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/anatolykoptev/go-mcpserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytsum/internal/app"
	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/ytserver"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn(".env load failed", slog.Any("error", err))
	}

	cfg := engine.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if !cfg.HasLLMKey() {
		slog.Warn("no LLM API key configured, summaries will fail")
	}

	a, err := app.New(context.Background(), cfg, slog.Default())
	if err != nil {
		slog.Error("app init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer a.Close()

	slog.Info("starting go_ytsum",
		slog.String("port", cfg.Port),
		slog.String("store", cfg.StoreDriver),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_ytsum",
		Version: version,
	}, nil)

	ytserver.RegisterTools(server, a)
	slog.Info("tools registered", slog.Int("count", ytserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_ytsum",
		Version:      version,
		Port:         cfg.Port,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}
