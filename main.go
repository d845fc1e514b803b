package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"speechmatics-mcp/internal/config"
	"speechmatics-mcp/internal/diagnostics"
	"speechmatics-mcp/internal/probe"
	"speechmatics-mcp/internal/server"
	"speechmatics-mcp/internal/speechmatics"
	"speechmatics-mcp/internal/transcribe"
	"speechmatics-mcp/internal/transcript"
)

func main() {
	// Optional; the environment may already carry everything.
	_ = godotenv.Load()

	// Stdout carries the MCP transport, so all logging goes to stderr.
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, keeping default")
	}

	report := diagnostics.NewChecker().Run(cfg.APIKey)
	for _, item := range report.Items {
		switch item.Status {
		case diagnostics.StatusFail:
			log.Error().Str("check", item.ID).Str("hint", item.Hint).Msg(item.Message)
		case diagnostics.StatusWarn:
			log.Warn().Str("check", item.ID).Str("hint", item.Hint).Msg(item.Message)
		default:
			log.Debug().Str("check", item.ID).Msg(item.Message)
		}
	}
	if report.HasFailures {
		log.Fatal().Msg("startup checks failed")
	}

	client := speechmatics.NewClient(cfg.APIURL, cfg.APIKey, log)
	transcriber := transcribe.New(
		client,
		probe.NewFFProbe(),
		transcript.NewWriter(),
		cfg.Language,
		cfg.PollInterval,
		cfg.PollTimeout,
		log,
	)

	srv := server.New(transcriber, client, log)
	log.Info().Str("version", server.Version).Msg("serving MCP over stdio")
	if err := srv.ServeStdio(); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}
