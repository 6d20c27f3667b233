package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"lighter-relay/internal/app"
	"lighter-relay/internal/config"
	"lighter-relay/internal/logging"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	// Missing .env is fine; credentials can come from the real environment.
	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			panic(err)
		}
	} else {
		cfg = config.Default()
	}
	log := logging.New(cfg.Log)
	if *configPath != "" {
		log.Info("config loaded", zap.String("path", *configPath))
	}

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize relay", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("relay terminated", zap.Error(err))
		os.Exit(1)
	}
}
