package datastore

import (
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gardenkeep/gardenkeep-go/internal/conf"
	"github.com/gardenkeep/gardenkeep-go/internal/errors"
)

// SQLiteStore implements Interface for SQLite.
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

// New creates a datastore from the configured database settings.
func New(settings *conf.Settings) Interface {
	return &SQLiteStore{Settings: settings}
}

// Open sets up the SQLite database connection and migrates the schema.
func (store *SQLiteStore) Open() error {
	path := store.Settings.Database.Path
	if path == "" {
		return errors.Newf("database path is not configured").
			Category(errors.CategoryConfiguration).
			Component("datastore").
			Build()
	}

	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.New(err).
					Category(errors.CategoryDatabase).
					Context("path", path).
					Component("datastore").
					Build()
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.New(slogWriter{}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryDatabase).
			Context("path", path).
			Component("datastore").
			Build()
	}

	store.DB = db
	if err := performAutoMigration(db); err != nil {
		return err
	}

	logger.Info("SQLite database opened", "path", path)
	return nil
}

// Close releases the underlying SQLite connection.
func (store *SQLiteStore) Close() error {
	if store.DB == nil {
		return nil
	}
	sqlDB, err := store.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// slogWriter routes GORM's own log output into the service logger.
type slogWriter struct{}

func (slogWriter) Printf(format string, args ...any) {
	logger.Warn("gorm", "message", format, "args", args)
}
