package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/engine/store"
	"github.com/anatolykoptev/go_ytsum/internal/engine/summarize"
	"github.com/anatolykoptev/go_ytsum/internal/toolutil"
)

var kindHeadings = map[engine.Kind]string{
	engine.KindConcise:   "Concise summary",
	engine.KindDetailed:  "Detailed summary",
	engine.KindKeyPoints: "Key points",
}

// renderSummary formats a video run as markdown, one section per kind.
func renderSummary(res summarize.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# YouTube Video: %s\n", res.VideoID.WatchURL())
	writeOutcomes(&sb, res)
	return sb.String()
}

func writeOutcomes(sb *strings.Builder, res summarize.Result) {
	for _, o := range res.Outcomes {
		heading := kindHeadings[o.Kind]
		switch {
		case o.State == summarize.Done:
			if o.Cached {
				heading += " (cached)"
			}
			fmt.Fprintf(sb, "\n## %s\n\n%s\n", heading, o.Text)
		case o.Err != nil:
			fmt.Fprintf(sb, "\n## %s (failed)\n\n> %s\n", heading, o.Err)
		}
	}
}

// renderAudio formats an audio transcript with its summaries, or with the
// transcript itself when res is nil.
func renderAudio(rec store.TranscriptRecord, cached bool, res *summarize.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Audio File: %s\n\n", rec.Filename)
	fmt.Fprintf(&sb, "- Source ID: `%s`\n", rec.VideoID)
	if d := toolutil.FormatDuration(rec.DurationSeconds); d != "" {
		fmt.Fprintf(&sb, "- Duration: %s\n", d)
	}
	if cached {
		sb.WriteString("- Transcript: cached\n")
	}
	if res == nil {
		fmt.Fprintf(&sb, "\n## Transcript\n\n%s\n", rec.FullText)
		return sb.String()
	}
	writeOutcomes(&sb, *res)
	return sb.String()
}

// writeMarkdown renders md with glamour on a terminal and writes it raw otherwise.
func writeMarkdown(w io.Writer, md string) error {
	if !isTerminal(w) {
		_, err := io.WriteString(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("creating terminal renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    60,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
