package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	var kinds []string

	rootCmd := &cobra.Command{
		Use:   "ytsum [url]",
		Short: "Summarize YouTube videos and audio recordings",
		Long: `Summarize YouTube videos from their captions.

Examples:
  ytsum "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  ytsum --kinds concise,key_points https://youtu.be/dQw4w9WgXcQ
  ytsum list --limit 5 --type audio
  ytsum audio --summarize meeting.mp3
  ytsum title dQw4w9WgXcQ`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runSummarize(cmd, ctx, args[0], kinds)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Show detailed processing information")
	rootCmd.Flags().StringSliceVarP(&kinds, "kinds", "k", nil, "Summary kinds to produce: concise, detailed, key_points (default: all)")

	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newAudioCommand(ctx))
	rootCmd.AddCommand(newTitleCommand(ctx))
	rootCmd.AddCommand(newTranscriptCommand(ctx))

	return rootCmd
}
