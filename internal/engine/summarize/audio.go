package summarize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/engine/store"
)

var errNoSpeech = errors.New("transcription contains no text")

// AudioTranscripts is the cache-or-transcribe source for local audio files.
// Records are keyed by engine.AudioSourceID of the file content.
type AudioTranscripts struct {
	store       store.TranscriptStore
	transcriber engine.AudioTranscriber
	maxBytes    int64
	logger      *slog.Logger
	now         func() time.Time
}

func NewAudioTranscripts(st store.TranscriptStore, tr engine.AudioTranscriber, logger *slog.Logger) *AudioTranscripts {
	if logger == nil {
		logger = slog.Default()
	}
	return &AudioTranscripts{
		store:       st,
		transcriber: tr,
		maxBytes:    engine.MaxAudioBytes,
		logger:      logger.With(slog.String("component", "audio")),
		now:         time.Now,
	}
}

// Get returns the transcript record of the file at path and whether it was
// already stored. Unsupported, missing or oversized files fail with
// *engine.InvalidArgumentError before any upload; transcription failures
// return *engine.TranscriptUnavailableError.
func (a *AudioTranscripts) Get(ctx context.Context, path string) (store.TranscriptRecord, bool, error) {
	name := filepath.Base(path)
	if !engine.AllowedAudioFile(name) {
		return store.TranscriptRecord{}, false, &engine.InvalidArgumentError{
			Name:   "file",
			Reason: fmt.Sprintf("unsupported audio type %q (allowed: %s)", name, strings.Join(engine.AudioExtensions, ", ")),
		}
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store.TranscriptRecord{}, false, &engine.InvalidArgumentError{Name: "file", Reason: "not found: " + path}
	}
	if err != nil {
		return store.TranscriptRecord{}, false, fmt.Errorf("audio file: %w", err)
	}
	if info.IsDir() {
		return store.TranscriptRecord{}, false, &engine.InvalidArgumentError{Name: "file", Reason: path + " is a directory"}
	}
	if info.Size() > a.maxBytes {
		return store.TranscriptRecord{}, false, &engine.InvalidArgumentError{
			Name:   "file",
			Reason: fmt.Sprintf("too large (%d MB, max %d MB)", info.Size()>>20, a.maxBytes>>20),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return store.TranscriptRecord{}, false, fmt.Errorf("audio file: %w", err)
	}
	id := engine.AudioSourceID(data)

	engine.IncrTranscriptRequests()
	rec, ok, err := a.store.GetTranscript(ctx, id)
	if err != nil {
		return store.TranscriptRecord{}, false, fmt.Errorf("store transcript: %w", err)
	}
	if ok {
		engine.IncrTranscriptCacheHits()
		a.logger.Debug("audio transcript cache hit", slog.String("source_id", id.String()))
		return rec, true, nil
	}

	res, err := a.transcriber.TranscribeAudio(ctx, path)
	if err != nil {
		return store.TranscriptRecord{}, false, a.unavailable(id, err)
	}
	text := engine.NormalizeText(res.Text)
	if text == "" {
		return store.TranscriptRecord{}, false, a.unavailable(id, errNoSpeech)
	}

	rec = store.TranscriptRecord{
		VideoID:         id,
		SourceType:      engine.SourceAudio,
		FullText:        text,
		FetchedAt:       a.now(),
		Filename:        name,
		DurationSeconds: int(res.Duration.Seconds()),
	}
	if err := a.store.InsertTranscript(ctx, rec); err != nil {
		return store.TranscriptRecord{}, false, fmt.Errorf("store transcript: %w", err)
	}
	a.logger.Info("audio transcribed",
		slog.String("source_id", id.String()),
		slog.String("file", name),
		slog.Duration("duration", res.Duration),
		slog.Int("chars", len([]rune(text))))
	return rec, false, nil
}

func (a *AudioTranscripts) unavailable(id engine.VideoID, cause error) error {
	engine.IncrTranscriptErrors()
	transient := engine.IsTransient(cause)
	a.logger.Warn("audio transcription failed",
		slog.String("source_id", id.String()),
		slog.Bool("transient", transient),
		slog.Any("error", cause))
	return &engine.TranscriptUnavailableError{VideoID: id, Transient: transient, Cause: cause}
}
