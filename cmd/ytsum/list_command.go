package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/engine/store"
	"github.com/anatolykoptev/go_ytsum/internal/toolutil"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		sourceType string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List previously processed videos and audio files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := engine.ParseSourceType(sourceType)
			if err != nil {
				return toolutil.UserError(err)
			}
			a, err := ctx.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := a.History(cmd.Context(), limit, source)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No items have been processed yet.")
				return nil
			}
			fmt.Fprintln(out, renderHistory(entries))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", store.DefaultListLimit, "Maximum number of entries to list")
	cmd.Flags().StringVarP(&sourceType, "type", "t", "all", "Source type to list: all, youtube, audio")
	return cmd
}

func renderHistory(entries []store.VideoEntry) string {
	rows := make([][]string, 0, len(entries))
	for i, item := range toolutil.HistoryItems(entries) {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			item.SourceType,
			item.VideoID,
			historyName(item),
			toolutil.FormatDuration(item.DurationSeconds),
			item.FetchedAt,
			strings.Join(item.Summaries, ", "),
		})
	}
	return renderTable(
		[]string{"#", "Type", "ID", "Title", "Duration", "Fetched", "Summaries"},
		rows,
		[]columnAlignment{alignRight},
	)
}

func historyName(item engine.HistoryItem) string {
	if item.Title != "" {
		return item.Title
	}
	return item.Filename
}
