package database

import (
	"fmt"
	"sync"
	"sync/atomic"

	"catalog/internal/config"
	"catalog/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a GORM handle for the given driver and DSN. When the initial
// ping fails the handle is still returned alongside the error, so callers may
// keep it and let the pool reconnect later.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("no SQL dialect for driver %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Connection is a database handle whose schema is migrated on first success.
type Connection struct {
	DB *gorm.DB

	log   zerolog.Logger
	mu    sync.Mutex
	ready atomic.Bool
}

// NewConnection wraps an open handle. The schema is not migrated until
// EnsureSchema succeeds.
func NewConnection(db *gorm.DB, log zerolog.Logger) *Connection {
	return &Connection{DB: db, log: log}
}

// EnsureSchema pings the database and migrates it once. It is cheap after the
// first success and may be retried after a failure.
func (c *Connection) EnsureSchema() error {
	if c.ready.Load() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready.Load() {
		return nil
	}

	if err := Ping(c.DB); err != nil {
		return err
	}
	if err := Migrate(c.DB); err != nil {
		return err
	}
	c.ready.Store(true)
	c.log.Info().Msg("database schema ready")
	return nil
}

// Ready reports whether EnsureSchema has succeeded.
func (c *Connection) Ready() bool {
	return c.ready.Load()
}

// Connect opens the configured database and migrates it. Connection failures
// are logged and not returned: the service starts degraded and EnsureSchema
// is retried later. The handle inside may be nil if the driver could not be
// initialised at all. A SQLite file that cannot be opened leaves a closed
// pool behind, which only a restart recovers.
func Connect(cfg *config.Config, log zerolog.Logger) *Connection {
	db, err := Open(cfg.DBDriver, cfg.DatabaseDSN)
	conn := NewConnection(db, log)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.DBDriver).Msg("database connection error")
		return conn
	}

	if err := conn.EnsureSchema(); err != nil {
		log.Error().Err(err).Msg("database connection error")
		return conn
	}

	log.Debug().Str("driver", cfg.DBDriver).Msg("database connected")
	return conn
}

// Ping reports whether the database behind db answers.
func Ping(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database handle not initialised")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql handle: %w", err)
	}
	return sqlDB.Ping()
}
