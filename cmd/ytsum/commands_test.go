package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytsum/internal/app"
	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/engine/store"
	"github.com/anatolykoptev/go_ytsum/internal/engine/summarize"
)

type cliCaptions struct{}

func (cliCaptions) FetchCaptions(context.Context, engine.VideoID) ([]engine.Segment, error) {
	return []engine.Segment{{Text: "how to repair a bicycle tire in five minutes"}}, nil
}

type cliGenerator struct{}

func (cliGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "descriptive title") {
		return "Fixing a Flat", nil
	}
	return "Patch the tube.", nil
}

type cliTranscriber struct{}

func (cliTranscriber) TranscribeAudio(context.Context, string) (engine.AudioTranscript, error) {
	return engine.AudioTranscript{Text: "welcome to the weekly planning meeting", Duration: 90 * time.Second}, nil
}

func newTestContext(t *testing.T) *commandContext {
	t.Helper()
	t.Setenv("STORE_DRIVER", engine.DriverMemory)
	c := newCommandContext()
	c.newApp = func(ctx context.Context, cfg engine.Config, logger *slog.Logger) (*app.App, error) {
		return app.New(ctx, cfg, logger,
			app.WithStore(store.NewMemory()),
			app.WithCaptions(cliCaptions{}),
			app.WithGenerator(cliGenerator{}),
			app.WithTitleGenerator(cliGenerator{}),
			app.WithAudioTranscriber(cliTranscriber{}),
		)
	}
	t.Cleanup(c.close)
	return c
}

func execute(c *commandContext, args ...string) (string, string, error) {
	cmd := newRootCommand(c)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_Summarize(t *testing.T) {
	c := newTestContext(t)

	out, _, err := execute(c, "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Contains(t, out, "# YouTube Video: https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.Contains(t, out, "## Concise summary")
	assert.Contains(t, out, "## Detailed summary")
	assert.Contains(t, out, "## Key points")
	assert.Contains(t, out, "Patch the tube.")

	out, _, err = execute(c, "--kinds", "key_points", "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Contains(t, out, "## Key points (cached)")
	assert.NotContains(t, out, "Concise")
}

func TestRootCommand_Verbose(t *testing.T) {
	c := newTestContext(t)
	_, errOut, err := execute(c, "-v", "--kinds", "concise", "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Video ID: dQw4w9WgXcQ")
	assert.Contains(t, errOut, "1 chunk(s)")
}

func TestRootCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad url", []string{"https://vimeo.com/1"}, "Invalid YouTube URL."},
		{"bad list type", []string{"list", "--type", "podcast"}, "source_type"},
		{"unsupported audio", []string{"audio", "notes.txt"}, "invalid argument file"},
		{"missing audio", []string{"audio", "gone.mp3"}, "not found"},
		{"bad kind", []string{"--kinds", "haiku", "dQw4w9WgXcQ"}, "haiku"},
		{"title before processing", []string{"title", "dQw4w9WgXcQ"}, "Transcript not available for this video."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(newTestContext(t), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInvalidURL_SkipsAppSetup(t *testing.T) {
	for _, args := range [][]string{
		{"https://vimeo.com/1"},
		{"title", "not a video"},
		{"transcript", "https://example.com/watch?v=dQw4w9WgXcQ"},
	} {
		t.Run(args[0], func(t *testing.T) {
			dbPath := filepath.Join(t.TempDir(), "ytsum.db")
			t.Setenv("STORE_DRIVER", engine.DriverSQLite)
			t.Setenv("SQLITE_PATH", dbPath)

			calls := 0
			c := newCommandContext()
			c.newApp = func(ctx context.Context, cfg engine.Config, logger *slog.Logger) (*app.App, error) {
				calls++
				return app.New(ctx, cfg, logger)
			}
			t.Cleanup(c.close)

			_, _, err := execute(c, args...)
			require.Error(t, err)
			assert.Equal(t, "Invalid YouTube URL.", err.Error())
			assert.Zero(t, calls)
			assert.NoFileExists(t, dbPath)
		})
	}
}

func TestAudioCommand(t *testing.T) {
	c := newTestContext(t)
	path := filepath.Join(t.TempDir(), "planning.mp3")
	require.NoError(t, os.WriteFile(path, []byte("fake audio"), 0o600))

	out, _, err := execute(c, "audio", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# Audio File: planning.mp3")
	assert.Contains(t, out, "- Source ID: `audio_")
	assert.Contains(t, out, "- Duration: 1m 30s")
	assert.Contains(t, out, "## Transcript\n\nwelcome to the weekly planning meeting")
	assert.NotContains(t, out, "cached")

	out, errOut, err := execute(c, "-v", "audio", "--summarize", "--kinds", "concise", path)
	require.NoError(t, err)
	assert.Contains(t, out, "- Transcript: cached")
	assert.Contains(t, out, "## Concise summary\n\nPatch the tube.")
	assert.NotContains(t, out, "## Transcript")
	assert.Contains(t, errOut, "Source ID: audio_")

	out, _, err = execute(c, "list", "--type", "audio")
	require.NoError(t, err)
	assert.Contains(t, out, "planning.mp3")
	assert.Contains(t, out, "1m 30s")
	assert.Contains(t, out, "concise")

	out, _, err = execute(c, "list", "--type", "youtube")
	require.NoError(t, err)
	assert.Contains(t, out, "No items have been processed yet.")
}

func TestRootCommand_Help(t *testing.T) {
	out, _, err := execute(newTestContext(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "list")
}

func TestListAndTitleCommands(t *testing.T) {
	c := newTestContext(t)

	out, _, err := execute(c, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No items have been processed yet.")

	_, _, err = execute(c, "--kinds", "concise", "dQw4w9WgXcQ")
	require.NoError(t, err)

	out, _, err = execute(c, "title", "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Fixing a Flat\n", out)

	out, _, err = execute(c, "list", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "dQw4w9WgXcQ")
	assert.Contains(t, out, "Fixing a Flat")
	assert.Contains(t, out, "concise")
}

func TestTranscriptCommand(t *testing.T) {
	c := newTestContext(t)
	out, _, err := execute(c, "transcript", "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "how to repair a bicycle tire in five minutes\n", out)
}

func TestRenderSummary_Failed(t *testing.T) {
	res := summarize.Result{
		VideoID: "dQw4w9WgXcQ",
		Outcomes: []summarize.Outcome{
			{Kind: engine.KindConcise, State: summarize.Done, Text: "Short."},
			{Kind: engine.KindDetailed, State: summarize.Failed,
				Err: &engine.SummarizationError{Kind: engine.KindDetailed, Cause: errors.New("quota")}},
		},
	}
	md := renderSummary(res)
	assert.Contains(t, md, "## Concise summary\n\nShort.")
	assert.Contains(t, md, "## Detailed summary (failed)\n\n> summarize detailed: quota")
}

func TestRenderTable(t *testing.T) {
	assert.Empty(t, renderTable(nil, nil, nil))
	got := renderTable([]string{"A", "B"}, [][]string{{"1"}}, []columnAlignment{alignRight})
	assert.Contains(t, got, "A")
	assert.Contains(t, got, "1")
}
