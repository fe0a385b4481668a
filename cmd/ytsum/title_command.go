package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/toolutil"
)

func newTitleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "title <url>",
		Short: "Generate a title for an already processed video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := engine.ExtractVideoID(args[0]); err != nil {
				return toolutil.UserError(err)
			}
			a, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			_, title, err := a.Title(cmd.Context(), args[0])
			if err != nil {
				return toolutil.UserError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), title)
			return nil
		},
	}
}

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	var maxLength int

	cmd := &cobra.Command{
		Use:   "transcript <url>",
		Short: "Print the plain-text transcript of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := engine.ExtractVideoID(args[0]); err != nil {
				return toolutil.UserError(err)
			}
			a, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			id, text, err := a.Pipeline.Transcript(cmd.Context(), args[0])
			if err != nil {
				return toolutil.UserError(err)
			}
			if ctx.verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d characters, ~%d tokens\n",
					id, len([]rune(text)), engine.EstimateTokens(text))
			}
			if maxLength > 0 {
				text = engine.TruncateAtWord(text, maxLength)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxLength, "max-length", 0, "Truncate the transcript at a word boundary (0 = no limit)")
	return cmd
}
