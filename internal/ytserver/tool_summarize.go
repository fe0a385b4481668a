package ytserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/engine/summarize"
	"github.com/anatolykoptev/go_ytsum/internal/toolutil"
)

func registerSummarize(server *mcp.Server, h *handlers) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_summarize",
		Description: "Summarize a YouTube video from its captions. Returns concise (2-4 sentences), detailed (several paragraphs) and key_points (bullet list) summaries. Transcripts and summaries are cached, so repeated calls for the same video are instant. A failure in one summary kind does not affect the others; failed kinds are listed under failures.",
	}, h.summarize)
}

func (h *handlers) summarize(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummarizeInput) (*mcp.CallToolResult, engine.SummarizeOutput, error) {
	if strings.TrimSpace(input.URL) == "" {
		return nil, engine.SummarizeOutput{}, fmt.Errorf("url is required")
	}
	kinds, err := engine.ParseKinds(input.Kinds)
	if err != nil {
		return nil, engine.SummarizeOutput{}, err
	}

	res, err := h.app.Pipeline.Process(ctx, input.URL, kinds...)
	if err != nil {
		return nil, engine.SummarizeOutput{}, toolutil.UserError(err)
	}

	out := summarizeOutput(res)
	if len(out.Summaries) == 0 {
		return nil, out, toolutil.UserError(res.Err())
	}
	return nil, out, nil
}

func summarizeOutput(res summarize.Result) engine.SummarizeOutput {
	out := engine.SummarizeOutput{
		VideoID:   res.VideoID.String(),
		URL:       res.VideoID.WatchURL(),
		Summaries: make(map[string]string),
		Cached:    toolutil.KindNames(res.CachedKinds()),
	}
	for kind, text := range res.Summaries() {
		out.Summaries[string(kind)] = text
	}
	if failures := res.Failures(); len(failures) > 0 {
		out.Failures = make(map[string]string, len(failures))
		for kind, err := range failures {
			out.Failures[string(kind)] = err.Error()
		}
	}
	return out
}
