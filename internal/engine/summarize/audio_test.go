package summarize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/engine/store"
)

type fakeTranscriber struct {
	res   engine.AudioTranscript
	err   error
	paths []string
}

func (f *fakeTranscriber) TranscribeAudio(_ context.Context, path string) (engine.AudioTranscript, error) {
	f.paths = append(f.paths, path)
	return f.res, f.err
}

func writeAudio(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestAudioTranscripts_TranscribeOnceThenCache(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	tr := &fakeTranscriber{res: engine.AudioTranscript{Text: " welcome  to the\nweekly sync ", Duration: 95 * time.Second}}
	a := NewAudioTranscripts(mem, tr, nil)

	path := writeAudio(t, "sync.mp3", "fake mp3 bytes")
	rec, cached, err := a.Get(ctx, path)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.True(t, rec.VideoID.IsAudio())
	assert.Equal(t, engine.AudioSourceID([]byte("fake mp3 bytes")), rec.VideoID)
	assert.Equal(t, engine.SourceAudio, rec.SourceType)
	assert.Equal(t, "welcome to the weekly sync", rec.FullText)
	assert.Equal(t, "sync.mp3", rec.Filename)
	assert.Equal(t, 95, rec.DurationSeconds)

	// Same content under another name is the same source.
	renamed := writeAudio(t, "copy.MP3", "fake mp3 bytes")
	again, cached, err := a.Get(ctx, renamed)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, rec.VideoID, again.VideoID)
	assert.Equal(t, "sync.mp3", again.Filename)
	assert.Len(t, tr.paths, 1)

	entries, err := mem.ListVideos(ctx, 0, engine.SourceAudio)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rec.VideoID, entries[0].VideoID)
}

func TestAudioTranscripts_RejectsBeforeUpload(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		max  int64
	}{
		{"unsupported type", writeAudio(t, "notes.txt", "text"), engine.MaxAudioBytes},
		{"missing file", filepath.Join(dir, "gone.wav"), engine.MaxAudioBytes},
		{"directory", func() string {
			p := filepath.Join(dir, "folder.mp3")
			require.NoError(t, os.Mkdir(p, 0o750))
			return p
		}(), engine.MaxAudioBytes},
		{"too large", writeAudio(t, "big.wav", "0123456789"), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTranscriber{res: engine.AudioTranscript{Text: "x"}}
			a := NewAudioTranscripts(store.NewMemory(), tr, nil)
			a.maxBytes = tt.max

			_, _, err := a.Get(context.Background(), tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, engine.ErrInvalidArgument)
			assert.Empty(t, tr.paths)
		})
	}
}

func TestAudioTranscripts_Unavailable(t *testing.T) {
	tests := []struct {
		name      string
		tr        *fakeTranscriber
		transient bool
	}{
		{"service error", &fakeTranscriber{err: &engine.HTTPStatusError{StatusCode: 503}}, true},
		{"rejected upload", &fakeTranscriber{err: errors.New("invalid file format")}, false},
		{"silence", &fakeTranscriber{res: engine.AudioTranscript{Text: "  \n "}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mem := store.NewMemory()
			a := NewAudioTranscripts(mem, tt.tr, nil)

			path := writeAudio(t, "clip.ogg", tt.name)
			_, _, err := a.Get(ctx, path)
			require.Error(t, err)
			assert.ErrorIs(t, err, engine.ErrTranscriptUnavailable)
			var tu *engine.TranscriptUnavailableError
			require.ErrorAs(t, err, &tu)
			assert.Equal(t, tt.transient, tu.Transient)
			assert.True(t, tu.VideoID.IsAudio())

			_, ok, err := mem.GetTranscript(ctx, tu.VideoID)
			require.NoError(t, err)
			assert.False(t, ok, "nothing is stored on failure")
		})
	}
}

func TestAudioTranscripts_FeedsSummarizer(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	a := NewAudioTranscripts(mem, &fakeTranscriber{res: engine.AudioTranscript{Text: "quarterly numbers look good"}}, nil)
	rec, _, err := a.Get(ctx, writeAudio(t, "q3.m4a", "m4a"))
	require.NoError(t, err)

	gen := &fakeGenerator{}
	res := newTestSummarizer(t, mem, gen, 1000).SummarizeKinds(ctx, rec.VideoID, rec.FullText, []engine.Kind{engine.KindConcise})
	require.NoError(t, res.Err())
	text, ok := res.Text(engine.KindConcise)
	require.True(t, ok)
	assert.Equal(t, "summary of concise", text)

	entries, err := mem.ListVideos(ctx, 0, engine.SourceAudio)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []engine.Kind{engine.KindConcise}, entries[0].Kinds)
	assert.Equal(t, "q3.m4a", entries[0].Filename)
}
