// Command dawgtest builds a word graph from a word list, writes it to disk,
// reads it back and checks both copies against the list.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/milden6/wordgraph/internal/config"
	"github.com/milden6/wordgraph/internal/tester"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	log.Logger = logger

	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatal().Err(err).Msg("Failed to parse flags")
	}

	configPath, _ := flags.GetString("config")
	cfg, err := config.LoadConfig(configPath, flags)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if cfg.Input == "" && flags.NArg() > 0 {
		cfg.Input = flags.Arg(0)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("log_level", cfg.LogLevel).Msg("Invalid log level")
	}
	logger = logger.Level(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := tester.Run(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Dictionary test failed")
		stop()
		os.Exit(1)
	}

	logger.Info().
		Int("words", report.Words).
		Int("nodes", report.Decoded.Size.Nodes).
		Int("edges", report.Decoded.Size.Edges).
		Str("path", report.Path).
		Bool("ok", report.OK()).
		Msg("Dictionary test finished")

	if !report.OK() {
		stop()
		os.Exit(1)
	}
}
