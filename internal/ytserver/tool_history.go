package ytserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/toolutil"
)

func registerHistory(server *mcp.Server, h *handlers) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_history",
		Description: "List previously processed YouTube videos and audio files, newest first, with their generated title and the summary kinds available. Filter with source_type.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, h.history)
}

func (h *handlers) history(ctx context.Context, _ *mcp.CallToolRequest, input engine.HistoryInput) (*mcp.CallToolResult, engine.HistoryOutput, error) {
	source, err := engine.ParseSourceType(input.SourceType)
	if err != nil {
		return nil, engine.HistoryOutput{}, toolutil.UserError(err)
	}
	entries, err := h.app.History(ctx, input.Limit, source)
	if err != nil {
		return nil, engine.HistoryOutput{}, err
	}
	videos := toolutil.HistoryItems(entries)
	return nil, engine.HistoryOutput{Videos: videos, Total: len(videos)}, nil
}
