package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
)

func newAudioCommand(ctx *commandContext) *cobra.Command {
	var (
		summarizeIt bool
		kinds       []string
	)

	cmd := &cobra.Command{
		Use:   "audio <file>",
		Short: "Transcribe a local audio file, optionally summarizing it",
		Long: fmt.Sprintf(`Transcribe a local audio file with the speech-to-text API.

Supported types: %s (max %d MB).
Transcripts are stored by file content, so re-running on the same
recording reuses the stored text.`, strings.Join(engine.AudioExtensions, ", "), engine.MaxAudioBytes>>20),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			parsed, err := engine.ParseKinds(kinds)
			if err != nil {
				return err
			}
			if !engine.AllowedAudioFile(filepath.Base(path)) {
				return &engine.InvalidArgumentError{
					Name:   "file",
					Reason: "supported types are " + strings.Join(engine.AudioExtensions, ", "),
				}
			}
			a, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}

			errOut := cmd.ErrOrStderr()
			if ctx.verbose {
				fmt.Fprintf(errOut, "Transcribing %s...\n", filepath.Base(path))
			}
			rec, cached, err := a.Audio.Get(cmd.Context(), path)
			if err != nil {
				return err
			}
			if ctx.verbose {
				fmt.Fprintf(errOut, "Source ID: %s\n", rec.VideoID)
				if err := printTranscriptStats(errOut, rec.FullText, ctx.cfg.ChunkMaxChars); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if !summarizeIt {
				return writeMarkdown(out, renderAudio(rec, cached, nil))
			}
			res := a.Summarizer.SummarizeKinds(cmd.Context(), rec.VideoID, rec.FullText, parsed)
			if err := writeMarkdown(out, renderAudio(rec, cached, &res)); err != nil {
				return err
			}
			return failedKinds(res)
		},
	}
	cmd.Flags().BoolVarP(&summarizeIt, "summarize", "s", false, "Summarize the transcript after transcription")
	cmd.Flags().StringSliceVarP(&kinds, "kinds", "k", nil, "Summary kinds to produce with --summarize (default: all)")
	return cmd
}
