package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/app"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/bootstrap"
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

	logger := newLogger(cfg)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.BuildApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer a.Close()

	if err := bootstrap.RunHTTPServer(ctx, a.Router, cfg.Server, bootstrap.NewZapAuditLogger(logger), logger); err != nil {
		logger.Error("http server stopped with error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
