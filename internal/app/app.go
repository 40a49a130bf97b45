// Package app wires configuration, the source adapter, the model client and
// the pipeline into a runnable server. All dependencies are constructed here
// and passed down; there are no process-wide singletons.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"safepost/internal/config"
	"safepost/internal/handler"
	"safepost/internal/llm"
	"safepost/internal/logger"
	"safepost/internal/pipeline"
	"safepost/internal/promptgen"
	"safepost/internal/server"
	"safepost/internal/source"
)

type App struct {
	server *server.Server
	model  llm.Completer
	log    zerolog.Logger
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.LogLevel, cfg.Env)

	// Dependencies
	adapter, err := source.New(source.Config{
		Mode:         cfg.Source.Mode,
		BaseURL:      cfg.Source.BaseURL,
		SessionID:    cfg.Source.SessionID,
		AccessToken:  cfg.Source.AccessToken,
		UserAgent:    cfg.Source.UserAgent,
		Timeout:      cfg.Source.Timeout,
		CommentLimit: cfg.Source.CommentLimit,
		CacheSize:    cfg.Source.CacheSize,
		CacheTTL:     cfg.Source.CacheTTL,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build source adapter: %w", err)
	}

	gemini, err := llm.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to build model client: %w", err)
	}
	model := llm.Wrap(gemini,
		llm.WithLogging(log),
		llm.RateLimit(cfg.LLM.RPM, cfg.LLM.Burst),
	)

	compiler, err := promptgen.New(promptgen.Dialect(cfg.Prompt.Dialect))
	if err != nil {
		return nil, err
	}

	pipe := pipeline.New(adapter, model, compiler, pipeline.Config{
		PostLimit:        cfg.Pipeline.PostLimit,
		ExcerptMaxLen:    cfg.Pipeline.ExcerptMaxLen,
		CommentSampleMax: cfg.Pipeline.CommentSampleMax,
		UpstreamTimeout:  cfg.Pipeline.UpstreamTimeout,
		ModelTimeout:     cfg.Pipeline.ModelTimeout,
	}, log)

	// Routing & Server
	h := handler.New(pipe, log)
	mux := server.NewMux(h, log)
	srv := server.New(cfg.Port, mux, log)

	log.Info().
		Str("source_mode", cfg.Source.Mode).
		Str("model", model.Name()).
		Str("dialect", string(compiler.Dialect())).
		Msg("safepost configured")

	return &App{server: srv, model: model, log: log}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

// Logger exposes the root logger so the process entrypoint shares it.
func (a *App) Logger() zerolog.Logger {
	return a.log
}

func (a *App) Shutdown(ctx context.Context) error {
	defer func() { _ = a.model.Close() }()
	return a.server.Shutdown(ctx)
}
