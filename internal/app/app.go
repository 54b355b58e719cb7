package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"DailyDigest/internal/config"
	"DailyDigest/internal/fetch"
	"DailyDigest/internal/infrastructure/discord"
	"DailyDigest/internal/infrastructure/llm"
	"DailyDigest/internal/infrastructure/scrape"
	"DailyDigest/internal/infrastructure/transcript"
	"DailyDigest/internal/infrastructure/video"
	"DailyDigest/internal/logging"
	"DailyDigest/internal/ports"
	"DailyDigest/internal/server"
	"DailyDigest/internal/usecase"
)

// Application wires configuration to adapters, the pipeline, and the
// trigger server.
type Application struct {
	cfg    config.Config
	server *server.Server
}

// New builds a runnable application instance. Credential validation is
// deferred to each run so the dashboard gets a proper error response
// instead of a dead process.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	chat, err := discord.New(cfg.Discord.BotToken)
	if err != nil {
		return nil, fmt.Errorf("init discord client: %w", err)
	}

	var transcripts ports.TranscriptClient
	if cfg.Transcript.APIKey != "" {
		transcripts = transcript.NewClient(
			cfg.Transcript.Endpoint,
			cfg.Transcript.APIKey,
			cfg.Transcript.PollInterval(),
			cfg.Transcript.MaxWait(),
		)
	}

	httpClient := &http.Client{Timeout: cfg.Fetch.Timeout()}
	articles := scrape.NewArticleFetcher(httpClient, cfg.Fetch.UserAgent)
	videos := video.NewFetcher(httpClient, cfg.Fetch.UserAgent, transcripts,
		cfg.Digest.TranscriptLimit, baseLogger.With("component", "video"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:    chat,
		Fetchers:  fetch.NewRegistry(videos, articles, cfg.Fetch.VideoHosts, cfg.Fetch.SkipHosts),
		Generator: llm.NewGeminiClient(cfg.Gemini),
		Publisher: chat,
		Config:    cfg,
		Logger:    baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:    cfg,
		server: server.New(cfg.Server.Addr, pipeline, baseLogger.With("component", "server")),
	}, nil
}

// Run serves the trigger surface until ctx is canceled.
func (a *Application) Run(ctx context.Context) error {
	return a.server.ListenAndServe(ctx)
}
