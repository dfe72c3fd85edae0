package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lumenfall/lumen-server-go/internal/config"
	"github.com/lumenfall/lumen-server-go/internal/dice"
	"github.com/lumenfall/lumen-server-go/internal/game"
	"github.com/lumenfall/lumen-server-go/internal/repository"
	"github.com/lumenfall/lumen-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting Lumenfall battle server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	db, err := repository.NewDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	deckRepo := repository.NewDeckRepository(db, logger)
	matchRepo := repository.NewMatchRepository(db, logger)

	roller := dice.New()
	if cfg.Engine.Seed != 0 {
		roller = dice.NewSeeded(cfg.Engine.Seed)
		logger.Warn("engine random source is seeded; matches are reproducible",
			zap.Int64("seed", cfg.Engine.Seed),
		)
	}

	engine := game.NewEngine(logger, roller)
	engine.AttachRecorder(game.NewReplayRecorder(logger, cfg.Engine.ReplayDir))

	registry := game.NewRegistry(deckRepo, matchRepo, engine, logger)
	logger.Info("session registry initialized")

	hub := server.NewHub(registry, engine, logger)

	go func() {
		if wsErr := server.StartWebSocketServer(cfg.Server, hub, logger); wsErr != nil {
			logger.Error("websocket server error", zap.Error(wsErr))
		}
	}()

	logger.Info("Lumenfall server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	logger.Info("Lumenfall server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
