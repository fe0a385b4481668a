package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/anatolykoptev/go_ytsum/internal/app"
	"github.com/anatolykoptev/go_ytsum/internal/engine"
)

type appFactory func(ctx context.Context, cfg engine.Config, logger *slog.Logger) (*app.App, error)

// commandContext lazily builds the App shared by all subcommands.
type commandContext struct {
	verbose bool
	newApp  appFactory

	app    *app.App
	cfg    engine.Config
	logger *slog.Logger
}

func newCommandContext() *commandContext {
	return &commandContext{
		newApp: func(ctx context.Context, cfg engine.Config, logger *slog.Logger) (*app.App, error) {
			return app.New(ctx, cfg, logger)
		},
	}
}

func (c *commandContext) ensureApp(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn(".env load failed", slog.Any("error", err))
	}
	c.cfg = engine.ConfigFromEnv()
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	a, err := c.newApp(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *commandContext) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}
