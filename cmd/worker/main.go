package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/app"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/config"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/apperror"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	build := zap.NewDevelopment
	if cfg.IsProduction() {
		build = zap.NewProduction
	}
	logger, err := build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunWorker(ctx, cfg, logger); err != nil {
		logger.Fatal("run worker failed", zap.Error(err))
	}
}
