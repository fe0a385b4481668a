package ytserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/toolutil"
)

func registerTitle(server *mcp.Server, h *handlers) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_title",
		Description: "Generate (or return the stored) short descriptive title for a YouTube video that was already summarized or transcribed. Uses the concise summary when available, otherwise the start of the transcript.",
	}, h.title)
}

func (h *handlers) title(ctx context.Context, _ *mcp.CallToolRequest, input engine.TitleInput) (*mcp.CallToolResult, engine.TitleOutput, error) {
	if strings.TrimSpace(input.URL) == "" {
		return nil, engine.TitleOutput{}, fmt.Errorf("url is required")
	}
	id, title, err := h.app.Title(ctx, input.URL)
	if err != nil {
		return nil, engine.TitleOutput{}, toolutil.UserError(err)
	}
	return nil, engine.TitleOutput{VideoID: id.String(), Title: title}, nil
}
