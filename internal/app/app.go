// Package app wires configuration, storage, the captions provider and the
// LLM generators into the services shared by the MCP server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
	"github.com/anatolykoptev/go_ytsum/internal/engine/sources"
	"github.com/anatolykoptev/go_ytsum/internal/engine/store"
	"github.com/anatolykoptev/go_ytsum/internal/engine/summarize"
)

// App is created once at startup and closed at shutdown.
type App struct {
	Config      engine.Config
	Store       store.Store
	Pipeline    *summarize.Pipeline
	Summarizer  *summarize.Summarizer
	Transcripts *summarize.Transcripts
	Audio       *summarize.AudioTranscripts
	Titler      *summarize.Titler

	logger *slog.Logger
}

// Option overrides a dependency New would otherwise build from Config.
type Option func(*deps)

type deps struct {
	store    store.Store
	captions summarize.CaptionsProvider
	gen      engine.Generator
	titleGen engine.Generator
	audio    engine.AudioTranscriber
}

func WithStore(s store.Store) Option { return func(d *deps) { d.store = s } }

func WithCaptions(p summarize.CaptionsProvider) Option { return func(d *deps) { d.captions = p } }

func WithGenerator(g engine.Generator) Option { return func(d *deps) { d.gen = g } }

func WithTitleGenerator(g engine.Generator) Option { return func(d *deps) { d.titleGen = g } }

func WithAudioTranscriber(t engine.AudioTranscriber) Option { return func(d *deps) { d.audio = t } }

// New opens the store and builds the services. The caller must Close the App.
func New(ctx context.Context, cfg engine.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var d deps
	for _, fn := range opts {
		fn(&d)
	}

	if d.gen == nil {
		gen, err := engine.NewGenerator(cfg, "",
			engine.WithTemperature(cfg.LLMTemperature),
			engine.WithMaxTokens(cfg.LLMMaxTokens),
		)
		if err != nil {
			return nil, fmt.Errorf("summary generator: %w", err)
		}
		d.gen = gen
	}
	if d.titleGen == nil {
		gen, err := engine.NewGenerator(cfg, cfg.TitleModel,
			engine.WithSystem(""),
			engine.WithTemperature(0.7),
			engine.WithMaxTokens(50),
		)
		if err != nil {
			return nil, fmt.Errorf("title generator: %w", err)
		}
		d.titleGen = gen
	}
	if d.captions == nil {
		d.captions = sources.NewYouTube(
			sources.WithHTTPClient(&http.Client{
				Timeout: cfg.FetchTimeout,
				Transport: &http.Transport{
					MaxIdleConns:        20,
					MaxIdleConnsPerHost: 10,
					IdleConnTimeout:     60 * time.Second,
				},
			}),
			sources.WithLanguages(cfg.TranscriptLangs),
			sources.WithLogger(logger),
		)
	}
	if d.audio == nil {
		d.audio = engine.NewWhisperTranscriber(cfg.TranscriptionKey(), cfg.OpenAIBaseURL, cfg.WhisperModel, nil)
	}
	ownStore := d.store == nil
	if ownStore {
		st, err := store.Open(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
		}
		d.store = st
	}

	summarizer, err := summarize.NewSummarizer(d.store, d.gen, cfg.ChunkMaxChars, logger)
	if err != nil {
		if ownStore {
			d.store.Close()
		}
		return nil, err
	}
	transcripts := summarize.NewTranscripts(d.store, d.captions, logger)

	logger.Info("app ready",
		slog.String("store", cfg.StoreDriver),
		slog.String("llm_provider", cfg.LLMProvider),
		slog.String("model", cfg.LLMModel),
		slog.Int("chunk_chars", cfg.ChunkMaxChars))

	return &App{
		Config:      cfg,
		Store:       d.store,
		Pipeline:    summarize.NewPipeline(transcripts, summarizer),
		Summarizer:  summarizer,
		Transcripts: transcripts,
		Audio:       summarize.NewAudioTranscripts(d.store, d.audio, logger),
		Titler:      summarize.NewTitler(d.store, d.store, d.titleGen, logger),
		logger:      logger,
	}, nil
}

// History lists processed sources newest first; an empty source lists all.
func (a *App) History(ctx context.Context, limit int, source engine.SourceType) ([]store.VideoEntry, error) {
	return a.Store.ListVideos(ctx, store.NormLimit(limit), source)
}

// Title resolves rawURL and returns the video's title.
func (a *App) Title(ctx context.Context, rawURL string) (engine.VideoID, string, error) {
	id, err := engine.ExtractVideoID(rawURL)
	if err != nil {
		return "", "", err
	}
	title, err := a.Titler.Title(ctx, id)
	return id, title, err
}

func (a *App) Close() error {
	if err := a.Store.Close(); err != nil {
		a.logger.Warn("store close failed", slog.Any("error", err))
		return err
	}
	return nil
}
