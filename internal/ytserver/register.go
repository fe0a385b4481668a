// Package ytserver exposes the summarizer as MCP tools.
package ytserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytsum/internal/app"
)

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 4

// handlers holds the tool implementations bound to one App.
type handlers struct {
	app *app.App
}

// RegisterTools registers the video tools on the given MCP server:
// youtube_summarize, youtube_transcript, youtube_history, youtube_title.
func RegisterTools(server *mcp.Server, a *app.App) {
	h := &handlers{app: a}
	registerSummarize(server, h)
	registerTranscript(server, h)
	registerHistory(server, h)
	registerTitle(server, h)
}
