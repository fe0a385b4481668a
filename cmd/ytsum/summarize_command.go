package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/engine/summarize"
	"github.com/anatolykoptev/go_ytsum/internal/toolutil"
)

func runSummarize(cmd *cobra.Command, ctx *commandContext, rawURL string, rawKinds []string) error {
	kinds, err := engine.ParseKinds(rawKinds)
	if err != nil {
		return err
	}
	if _, err := engine.ExtractVideoID(rawURL); err != nil {
		return toolutil.UserError(err)
	}
	a, err := ctx.ensureApp(cmd.Context())
	if err != nil {
		return err
	}
	if !ctx.cfg.HasLLMKey() {
		ctx.logger.Warn("no LLM API key configured; set LLM_API_KEY or OPENAI_API_KEY")
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	id, text, err := a.Pipeline.Transcript(cmd.Context(), rawURL)
	if err != nil {
		return toolutil.UserError(err)
	}

	if ctx.verbose {
		fmt.Fprintf(errOut, "Video ID: %s\n", id)
		if err := printTranscriptStats(errOut, text, ctx.cfg.ChunkMaxChars); err != nil {
			return err
		}
	}

	res := a.Summarizer.SummarizeKinds(cmd.Context(), id, text, kinds)
	if err := writeMarkdown(out, renderSummary(res)); err != nil {
		return err
	}
	return failedKinds(res)
}

func printTranscriptStats(w io.Writer, text string, chunkChars int) error {
	chunks, err := engine.Chunk(text, chunkChars)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Transcript: %d characters, ~%d tokens, %d chunk(s)\n",
		len([]rune(text)), engine.EstimateTokens(text), len(chunks))
	return nil
}

func failedKinds(res summarize.Result) error {
	if failures := res.Failures(); len(failures) > 0 {
		return fmt.Errorf("%d of %d summaries failed", len(failures), len(res.Outcomes))
	}
	return nil
}
