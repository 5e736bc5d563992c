package setup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robalyx/repledger/internal/database"
	"github.com/robalyx/repledger/internal/interchange"
	"github.com/robalyx/repledger/internal/leaderboard"
	"github.com/robalyx/repledger/internal/pagination"
	"github.com/robalyx/repledger/internal/redis"
	"github.com/robalyx/repledger/internal/reputation"
	"github.com/robalyx/repledger/internal/setup/config"
	"github.com/robalyx/repledger/internal/setup/telemetry"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
type App struct {
	Config       *config.Config       // Application configuration
	Logger       *zap.Logger          // Main application logger
	DBLogger     *zap.Logger          // Database-specific logger
	DB           database.Client      // Ledger storage
	RedisManager *redis.Manager       // Redis connection manager, nil when the cache is disabled
	ScanCache    *redis.ScanCache     // Leaderboard scan cache, nil when disabled
	Leaderboard  *leaderboard.Builder // Leaderboard snapshot builder
	Sessions     *pagination.Manager  // Leaderboard pagination sessions
	Interchange  *interchange.Service // Bulk export and import
	LogManager   *telemetry.Manager   // Log management system
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, serviceType telemetry.ServiceType, logDir string) (*App, error) {
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	return InitializeAppWithConfig(ctx, cfg, serviceType, logDir)
}

// InitializeAppWithConfig bootstraps the application from an already loaded config.
func InitializeAppWithConfig(
	ctx context.Context, cfg *config.Config, serviceType telemetry.ServiceType, logDir string,
) (*App, error) {
	// Logging system is initialized first to capture setup issues
	logManager := telemetry.NewManager(serviceType, logDir, &cfg.Common.Debug)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		return nil, err
	}

	db := openLedger(ctx, &cfg.Common.Database, logger, dbLogger.Named("database"))

	app := &App{
		Config:     cfg,
		Logger:     logger,
		DBLogger:   dbLogger.Named("database"),
		DB:         db,
		LogManager: logManager,
	}

	// Scan cache is optional and only speeds up leaderboard builds
	var (
		builderOpts     []leaderboard.Option
		interchangeOpts []interchange.Option
	)

	if cfg.Common.Redis.Enabled {
		app.RedisManager = redis.NewManager(&cfg.Common.Redis, logger)

		client, err := app.RedisManager.GetClient(redis.CacheDBIndex)
		if err != nil {
			logger.Error("Failed to connect to Redis, leaderboard cache disabled", zap.Error(err))
		} else {
			ttl := time.Duration(cfg.Common.Redis.CacheTTL) * time.Second
			app.ScanCache = redis.NewScanCache(client, ttl, logger)
			builderOpts = append(builderOpts, leaderboard.WithCache(app.ScanCache))
			interchangeOpts = append(interchangeOpts, interchange.WithInvalidator(app.ScanCache))
		}
	}

	ledger := db.Model().Ledger()
	app.Leaderboard = leaderboard.NewBuilder(ledger, logger, builderOpts...)
	app.Sessions = pagination.NewManager(app.Leaderboard, pagination.OptionsFromConfig(&cfg.Bot.Leaderboard), logger)
	app.Interchange = interchange.NewService(ledger, logger, interchangeOpts...)

	if err := app.seed(ctx); err != nil {
		logger.Error("Failed to import seed file", zap.Error(err))
	}

	return app, nil
}

// NewGateway creates the mutation gateway on top of the app's ledger.
// Committed mutations invalidate the scan cache when it is enabled.
func (s *App) NewGateway(directory reputation.Directory) *reputation.Gateway {
	var opts []reputation.Option
	if s.ScanCache != nil {
		opts = append(opts, reputation.WithInvalidator(s.ScanCache))
	}

	return reputation.NewGateway(
		s.DB.Service().Reputation(),
		directory,
		reputation.RulesFromConfig(&s.Config.Bot.Reputation),
		s.Logger,
		opts...,
	)
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (s *App) Cleanup() {
	// Sync buffered logs before shutdown
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := s.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}

	if err := s.DB.Close(); err != nil {
		log.Printf("Failed to close database connection: %v", err)
	}

	if s.RedisManager != nil {
		s.RedisManager.Close()
	}

	s.LogManager.Stop()
}

// openLedger connects to the configured store and falls back to an empty
// in-memory ledger when it cannot be loaded.
func openLedger(ctx context.Context, cfg *config.Database, logger, dbLogger *zap.Logger) database.Client {
	db, err := database.NewConnection(ctx, cfg, dbLogger, true)
	if err == nil {
		return db
	}

	logger.Error("Failed to open ledger store, starting with an empty in-memory ledger",
		zap.String("driver", cfg.Driver),
		zap.Error(err))

	db, err = database.NewMemoryConnection(ctx, dbLogger)
	if err != nil {
		// The in-memory store needs no external resources, so this is unrecoverable
		log.Fatalf("Failed to open in-memory ledger: %v", err)
	}

	return db
}

// seed imports the configured seed file into an empty ledger.
func (s *App) seed(ctx context.Context) error {
	path := s.Config.Bot.Reputation.SeedFile
	if path == "" {
		return nil
	}

	count, err := s.DB.Model().Ledger().Count(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.Logger.Warn("Seed file not found", zap.String("path", path))
			return nil
		}

		return fmt.Errorf("failed to read seed file: %w", err)
	}

	report, err := s.Interchange.Import(ctx, data)
	if err != nil {
		return err
	}

	s.Logger.Info("Seeded empty ledger",
		zap.String("path", path),
		zap.Int("applied", report.Applied),
		zap.Int("skipped", report.Skipped))

	return nil
}
