package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"spectrum/internal/config"
	"spectrum/internal/convert"
	"spectrum/internal/deps"
	"spectrum/internal/journal"
	"spectrum/internal/logging"
	"spectrum/internal/review"
	"spectrum/internal/scanner"
	"spectrum/internal/server"
	"spectrum/internal/services/exiftool"
	"spectrum/internal/services/libraw"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		if status.Available {
			continue
		}
		if status.Optional {
			logger.Warn("optional tool missing",
				logging.String("tool", status.Name),
				logging.String("command", status.Command),
			)
		} else {
			logger.Error("required tool missing",
				logging.String("tool", status.Name),
				logging.String("command", status.Command),
			)
		}
	}

	history, err := journal.Open(cfg)
	if err != nil {
		logger.Error("open history journal", logging.Error(err))
		history = nil
	}
	defer history.Close()

	decoder := libraw.NewCLI(libraw.WithBinary(cfg.Tools.DecoderBinary))
	metadata := exiftool.NewCLI(exiftool.WithBinary(cfg.Tools.ExiftoolBinary))
	engine := convert.NewEngine(cfg, decoder, metadata, logger)

	srv := server.New(cfg, scanner.New(cfg, logger), engine, review.NewStore(cfg), history, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("api server", logging.Error(err))
	}
	logger.Info("spectrumd shutting down")
}
