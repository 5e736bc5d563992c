package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/robalyx/repledger/internal/database/migrations"
	"github.com/robalyx/repledger/internal/setup/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bunjson"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// MemoryDSN opens an in-memory SQLite database.
const MemoryDSN = "file::memory:"

// sonicProvider is a JSON provider that uses Sonic for encoding and decoding.
type sonicProvider struct{}

func (sonicProvider) Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

func (sonicProvider) Unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

func (sonicProvider) NewEncoder(w io.Writer) bunjson.Encoder {
	return sonic.ConfigDefault.NewEncoder(w)
}

func (sonicProvider) NewDecoder(r io.Reader) bunjson.Decoder {
	return sonic.ConfigDefault.NewDecoder(r)
}

// Client defines the methods that a database client must implement.
type Client interface {
	// Model returns the repository containing all model operations.
	Model() *Repository
	// Service returns the service containing all service operations.
	Service() *Service
	// Close gracefully shuts down the database connection.
	Close() error
	// DB returns the underlying bun.DB instance.
	DB() *bun.DB
	// InMemory reports whether the ledger lives only in process memory.
	InMemory() bool
}

// clientImpl represents the concrete implementation of the database client.
type clientImpl struct {
	db       *bun.DB
	logger   *zap.Logger
	repo     *Repository
	service  *Service
	inMemory bool
}

// NewConnection establishes a new database connection and returns a Client instance.
func NewConnection(
	ctx context.Context, cfg *config.Database, logger *zap.Logger, autoMigrate bool,
) (Client, error) {
	var db *bun.DB

	switch cfg.Driver {
	case config.DriverPostgres:
		db = openPostgres(cfg)
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}

		var err error

		db, err = openSQLite(ctx, "file:"+cfg.Path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidDriver, cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	return newClient(ctx, db, logger, autoMigrate, false)
}

// NewMemoryConnection opens an empty, migrated in-memory SQLite ledger.
// It backs tests and is the fallback when the configured store cannot be loaded.
func NewMemoryConnection(ctx context.Context, logger *zap.Logger) (Client, error) {
	db, err := openSQLite(ctx, MemoryDSN)
	if err != nil {
		return nil, err
	}

	return newClient(ctx, db, logger, true, true)
}

// openPostgres creates a bun.DB backed by pgdriver.
func openPostgres(cfg *config.Database) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithAddr(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		pgdriver.WithUser(cfg.User),
		pgdriver.WithPassword(cfg.Password),
		pgdriver.WithDatabase(cfg.DBName),
		pgdriver.WithInsecure(true),
		pgdriver.WithApplicationName("repledger"),
	))

	// Set connection pool settings
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)
	sqldb.SetConnMaxIdleTime(time.Duration(cfg.MaxIdleTime) * time.Minute)

	return bun.NewDB(sqldb, pgdialect.New())
}

// openSQLite creates a bun.DB backed by sqliteshim.
// SQLite allows a single writer, so the pool is pinned to one connection.
// That connection also keeps in-memory databases alive for the lifetime of the client.
func openSQLite(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)
	sqldb.SetConnMaxIdleTime(0)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return db, nil
}

// newClient wires the repository and services on top of an opened database.
func newClient(ctx context.Context, db *bun.DB, logger *zap.Logger, autoMigrate, inMemory bool) (Client, error) {
	// Set Sonic as the JSON provider
	bunjson.SetProvider(sonicProvider{})

	// Add query hook for monitoring
	db.AddQueryHook(NewHook(logger))

	if autoMigrate {
		if err := Migrate(ctx, db, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	repo := NewRepository(db, logger)
	service := NewService(db, repo, logger)

	client := &clientImpl{
		db:       db,
		logger:   logger,
		repo:     repo,
		service:  service,
		inMemory: inMemory,
	}

	logger.Info("Database connection established",
		zap.String("dialect", db.Dialect().Name().String()),
		zap.Bool("inMemory", inMemory))

	return client, nil
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *bun.DB, logger *zap.Logger) error {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if !group.IsZero() {
		logger.Info("Automatically ran migrations", zap.String("group", group.String()))
	}

	return nil
}

// Close gracefully shuts down the database connection.
func (c *clientImpl) Close() error {
	err := c.db.Close()
	if err != nil {
		c.logger.Error("Failed to close database connection", zap.Error(err))
		return err
	}

	c.logger.Info("Database connection closed")

	return nil
}

// Model returns the repository containing all model operations.
func (c *clientImpl) Model() *Repository {
	return c.repo
}

// Service returns the service containing all service operations.
func (c *clientImpl) Service() *Service {
	return c.service
}

// DB returns the underlying bun.DB instance.
func (c *clientImpl) DB() *bun.DB {
	return c.db
}

// InMemory reports whether the ledger lives only in process memory.
func (c *clientImpl) InMemory() bool {
	return c.inMemory
}
