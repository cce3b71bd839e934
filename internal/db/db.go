package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sneakerdex/internal/model"
)

// Supported values for Options.Driver.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options configures the storage connection.
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// RetryPolicy controls how many times the initial connection is attempted and
// how long to wait between attempts.
type RetryPolicy struct {
	MaxAttempts uint
	BackOff     backoff.BackOff
}

// ConstantRetryPolicy retries up to attempts times with a fixed delay.
func ConstantRetryPolicy(attempts uint, delay time.Duration) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BackOff: backoff.NewConstantBackOff(delay)}
}

// NoDelayRetryPolicy retries without sleeping. Intended for tests.
func NoDelayRetryPolicy(attempts uint) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BackOff: &backoff.ZeroBackOff{}}
}

// Client owns the pooled storage connection for the lifetime of the process.
type Client struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// Dialector returns the gorm dialector for driver.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Connect opens the database described by opts, retrying according to policy.
func Connect(ctx context.Context, opts Options, policy RetryPolicy, log *slog.Logger) (*Client, error) {
	if _, err := Dialector(opts.Driver, opts.DSN); err != nil {
		return nil, err
	}

	open := func() (*gorm.DB, error) {
		dialector, _ := Dialector(opts.Driver, opts.DSN)
		gdb, err := gorm.Open(dialector, &gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logLevelOrSilent(opts.LogLevel)),
		})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", opts.Driver, err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("ping %s: %w", opts.Driver, err)
		}
		return gdb, nil
	}

	gdb, err := connectWithRetry(ctx, policy, log, open)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	log.Info("database connected", "driver", opts.Driver)
	return &Client{db: gdb, sqlDB: sqlDB}, nil
}

func connectWithRetry(ctx context.Context, policy RetryPolicy, log *slog.Logger, open func() (*gorm.DB, error)) (*gorm.DB, error) {
	attempts := policy.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}
	bo := policy.BackOff
	if bo == nil {
		bo = &backoff.ZeroBackOff{}
	}

	gdb, err := backoff.Retry(ctx, open,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("database connection failed, retrying", "error", err, "retry_in", next)
		}),
	)
	if err != nil {
		log.Error("database connection failed after all retries", "attempts", attempts, "error", err)
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return gdb, nil
}

func logLevelOrSilent(level logger.LogLevel) logger.LogLevel {
	if level == 0 {
		return logger.Silent
	}
	return level
}

// DB returns the gorm handle. Callers must scope it with WithContext.
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Ping checks that the pool can still reach the database.
func (c *Client) Ping(ctx context.Context) error {
	return c.sqlDB.PingContext(ctx)
}

// Close releases every pooled connection.
func (c *Client) Close() error {
	return c.sqlDB.Close()
}

// Migrate creates or updates the schema. When reset is true all tables are
// dropped first.
func (c *Client) Migrate(ctx context.Context, reset bool, log *slog.Logger) error {
	db := c.db.WithContext(ctx)
	if reset {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Migrator().DropTable(&model.Sneaker{}, &model.User{}); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
	}
	if err := db.AutoMigrate(&model.User{}, &model.Sneaker{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
