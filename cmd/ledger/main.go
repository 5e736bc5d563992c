package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robalyx/repledger/cmd/ledger/commands"
	"github.com/robalyx/repledger/internal/database"
	"github.com/robalyx/repledger/internal/database/migrations"
	"github.com/robalyx/repledger/internal/interchange"
	"github.com/robalyx/repledger/internal/redis"
	"github.com/robalyx/repledger/internal/setup/config"
	"github.com/robalyx/repledger/internal/setup/telemetry"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	// CLILogDir specifies where ledger tool log files are stored.
	CLILogDir = "logs/cli_logs"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Setup dependencies
	deps, cleanup, err := setupDependencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup dependencies: %w", err)
	}
	defer cleanup()

	var cmds []*cli.Command
	cmds = append(cmds, commands.MigrationCommands(deps)...)
	cmds = append(cmds, commands.LedgerCommands(deps)...)

	app := &cli.Command{
		Name:     "ledger",
		Usage:    "Reputation ledger management tool",
		Commands: cmds,
	}

	return app.Run(ctx, os.Args)
}

// setupDependencies connects to the configured ledger without the in-memory fallback.
func setupDependencies(ctx context.Context) (*commands.CLIDependencies, func(), error) {
	// Load full configuration
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logManager := telemetry.NewManager(telemetry.ServiceCLI, CLILogDir, &cfg.Common.Debug)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// Migrations are run explicitly through the migrate command
	db, err := database.NewConnection(ctx, &cfg.Common.Database, dbLogger.Named("database"), false)
	if err != nil {
		logManager.Stop()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var (
		opts         []interchange.Option
		redisManager *redis.Manager
	)

	if cfg.Common.Redis.Enabled {
		redisManager = redis.NewManager(&cfg.Common.Redis, logger)

		client, err := redisManager.GetClient(redis.CacheDBIndex)
		if err != nil {
			logger.Warn("Failed to connect to Redis, leaderboard cache will not be invalidated", zap.Error(err))
		} else {
			ttl := time.Duration(cfg.Common.Redis.CacheTTL) * time.Second
			opts = append(opts, interchange.WithInvalidator(redis.NewScanCache(client, ttl, logger)))
		}
	}

	deps := &commands.CLIDependencies{
		DB:          db,
		Migrator:    migrate.NewMigrator(db.DB(), migrations.Migrations),
		Interchange: interchange.NewService(db.Model().Ledger(), logger, opts...),
		Logger:      logger,
	}

	cleanup := func() {
		if redisManager != nil {
			redisManager.Close()
		}

		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}

		logManager.Stop()
	}

	return deps, cleanup, nil
}
