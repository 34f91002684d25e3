package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ledgerbook/backend/internal/infrastructure/config"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

// Options tune how the connection is opened
type Options struct {
	Logger    gormlogger.Interface
	RetryWait time.Duration
	// OnRetry is called before each reconnect attempt
	OnRetry func(attempt uint, err error)
}

// NewDatabase opens the configured database with a silent gorm logger
func NewDatabase(ctx context.Context, cfg *config.DatabaseConfig) (*Database, error) {
	return NewDatabaseWithOptions(ctx, cfg, Options{})
}

// NewDatabaseWithLogger opens the configured database and routes gorm's logging through zap
func NewDatabaseWithLogger(ctx context.Context, cfg *config.DatabaseConfig, log *zap.Logger, gormLog gormlogger.Interface) (*Database, error) {
	return NewDatabaseWithOptions(ctx, cfg, Options{
		Logger: gormLog,
		OnRetry: func(attempt uint, err error) {
			log.Warn("Database not reachable, retrying",
				zap.Uint("attempt", attempt+1),
				zap.Uint("max_attempts", cfg.ConnectAttempts),
				zap.Error(err))
		},
	})
}

// NewDatabaseWithOptions opens the configured database. Connecting is retried
// with exponential backoff so the API can start alongside its database.
func NewDatabaseWithOptions(ctx context.Context, cfg *config.DatabaseConfig, opts Options) (*Database, error) {
	if opts.Logger == nil {
		opts.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	if opts.RetryWait == 0 {
		opts.RetryWait = time.Second
	}
	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	err = retry.Do(
		func() error {
			var openErr error
			db, openErr = gorm.Open(dialector, &gorm.Config{
				Logger:                 opts.Logger,
				SkipDefaultTransaction: true,
				TranslateError:         true,
				PrepareStmt:            cfg.Driver == "postgres",
			})
			if openErr != nil {
				return openErr
			}
			sqlDB, openErr := db.DB()
			if openErr != nil {
				return openErr
			}
			return sqlDB.PingContext(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(opts.RetryWait),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if opts.OnRetry != nil {
				opts.OnRetry(n, err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// one writer at a time; also keeps ":memory:" on a single connection
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	return &Database{DB: db}, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "postgres":
		return postgres.Open(cfg.DSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// AutoMigrate creates or updates every table from the gorm models.
// Used for sqlite; postgres deployments run the SQL migrations instead.
func (d *Database) AutoMigrate() error {
	return d.DB.AutoMigrate(models.All()...)
}

// Dialect returns the name of the underlying SQL dialect
func (d *Database) Dialect() string {
	return d.DB.Dialector.Name()
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Stats returns database connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`
}

// Transaction executes fn within a database transaction
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}
