package ytserver

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/toolutil"
)

func registerTranscript(server *mcp.Server, h *handlers) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Fetch the plain-text transcript of a YouTube video from its captions. Returns the text with character count, estimated token count and the number of chunks used for summarization. Use max_length to cap the returned text at a word boundary.",
	}, h.transcript)
}

func (h *handlers) transcript(ctx context.Context, _ *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, engine.TranscriptOutput, error) {
	if strings.TrimSpace(input.URL) == "" {
		return nil, engine.TranscriptOutput{}, fmt.Errorf("url is required")
	}
	if input.MaxLength < 0 {
		return nil, engine.TranscriptOutput{}, fmt.Errorf("max_length must not be negative")
	}

	id, text, err := h.app.Pipeline.Transcript(ctx, input.URL)
	if err != nil {
		return nil, engine.TranscriptOutput{}, toolutil.UserError(err)
	}

	chunks, err := engine.Chunk(text, h.app.Config.ChunkMaxChars)
	if err != nil {
		return nil, engine.TranscriptOutput{}, err
	}

	out := engine.TranscriptOutput{
		VideoID:         id.String(),
		URL:             id.WatchURL(),
		Transcript:      text,
		Chars:           utf8.RuneCountInString(text),
		EstimatedTokens: engine.EstimateTokens(text),
		Chunks:          len(chunks),
	}
	if input.MaxLength > 0 && out.Chars > input.MaxLength {
		out.Transcript = engine.TruncateAtWord(text, input.MaxLength)
		out.Truncated = true
	}
	return nil, out, nil
}
