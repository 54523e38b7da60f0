package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/transport-catalogue/internal/common/config"
	"github.com/transport-catalogue/internal/common/logger"
)

const usage = `usage: transport-catalogue [command] [flags]

commands:
  batch        answer a JSON request document (default; stdin -> stdout)
  serve        serve queries over HTTP
  import-gtfs  convert a GTFS static feed into a network
  snapshot     save, list or activate network snapshots in Postgres
`

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Failed to load .env file:", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.FromConfig(logger.LoggerConfig{
		Level:           logger.ParseLogLevel(cfg.Logging.Level),
		Console:         true,
		File:            cfg.Logging.FilePath != "",
		FilePath:        cfg.Logging.FilePath,
		MaxSizeMB:       10,
		MaxBackups:      5,
		MaxAgeDays:      30,
		Compress:        true,
		TimeFieldFormat: time.RFC3339,
		AlertWebhookURL: cfg.Logging.AlertWebhookURL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &app{cfg: cfg, log: log, stdin: os.Stdin, stdout: os.Stdout}
	if err := app.run(ctx, os.Args[1:]); err != nil {
		stop()
		log.Fatal("Command failed", "error", err)
	}
}
