package main

import (
	"fmt"
	"time"

	"github.com/mrwolf/daybook/internal/config"
	"github.com/mrwolf/daybook/internal/evernote"
	"github.com/mrwolf/daybook/internal/logging"
	"github.com/mrwolf/daybook/internal/mappiness"
	"github.com/mrwolf/daybook/internal/moves"
	"github.com/mrwolf/daybook/internal/pipeline"
	"github.com/mrwolf/daybook/internal/render"
	"github.com/mrwolf/daybook/internal/transport"
	"github.com/mrwolf/daybook/internal/vault"
	"go.uber.org/zap"
)

type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	pipeline *pipeline.Pipeline
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	p, err := buildPipeline(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, pipeline: p}, nil
}

// buildPipeline wires the collaborators named by cfg. With the vault sink
// both memories and the finished note live on disk.
func buildPipeline(cfg *config.Config, logger *zap.Logger) (*pipeline.Pipeline, error) {
	renderer, err := render.Load(cfg.Template, cfg)
	if err != nil {
		return nil, err
	}

	opts := transport.Options{
		Timeout:           time.Duration(cfg.Transport.TimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.Transport.RequestsPerSecond,
		MaxFailures:       cfg.Transport.MaxFailures,
		Logger:            logger,
	}

	deps := pipeline.Deps{
		Mood:      mappiness.NewClient(cfg.Mappiness.URL, opts),
		Storyline: moves.NewClient(cfg.Moves.BaseURL, cfg.Moves.AccessToken, opts),
		Renderer:  renderer,
	}

	switch cfg.Sink {
	case config.SinkVault:
		v := vault.NewVault(cfg.Vault.Path, pipeline.TitleLayout)
		deps.Memories = v
		deps.Sink = v
	case config.SinkEvernote:
		en := evernote.NewClient(evernote.Config{
			BaseURL:         cfg.NoteStoreURL(),
			AccessToken:     cfg.Evernote.AccessToken,
			UserID:          cfg.Evernote.UserID,
			ShardID:         cfg.Evernote.ShardID,
			JournalNotebook: cfg.Evernote.JournalNotebook,
		}, opts)
		deps.Memories = en
		deps.Sink = en
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}

	return pipeline.New(deps, pipeline.Options{
		Location:     cfg.Location(),
		NotebookGUID: cfg.Evernote.NotebookGUID,
	}, logger), nil
}
