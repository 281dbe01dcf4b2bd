package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"gaana-dl/cli"
	"gaana-dl/config"
	"gaana-dl/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load and validate configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("Configuration error: %v", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		log.Printf("Configuration validation failed: %v", err)
		return 1
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Printf("Logger setup failed: %v", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("Configuration loaded",
		zap.String("download_dir", cfg.DownloadDir),
		zap.String("ytdlp", cfg.YtDlpPath),
		zap.String("ffmpeg", cfg.FFmpegPath),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.String("quality", cfg.DefaultQuality),
		zap.String("format", cfg.AudioFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = cli.New(cfg, logger).Run(ctx, os.Args[1:])
	switch {
	case err == nil, errors.Is(err, pflag.ErrHelp):
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		logger.Debug("Run failed", zap.Error(err))
		return 1
	}
}
