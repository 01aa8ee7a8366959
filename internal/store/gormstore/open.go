package gormstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLiteFile = "cashregister.db"
	sqlitePragmas     = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"
)

// Open connects to a postgres:// URL or a sqlite:// URL (a bare path is treated as SQLite)
// and returns the handle, the resolved driver name and a close function. A nil config, or one without a
// logger, gets a silent gorm logger; store errors are reported by callers instead.
func Open(ctx context.Context, databaseURL string, config *gorm.Config) (*gorm.DB, string, func() error, error) {
	driver, sqlitePath, err := ResolveDriver(databaseURL)
	if err != nil {
		return nil, "", nil, err
	}
	config = withSilentLogger(config)
	var db *gorm.DB
	switch driver {
	case DriverPostgres:
		db, err = gorm.Open(postgres.Open(databaseURL), config)
	case DriverSQLite:
		db, err = gorm.Open(sqlite.Open(sqliteDSN(sqlitePath)), config)
	default:
		return nil, "", nil, fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return nil, "", nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, "", nil, err
	}
	return db.WithContext(ctx), driver, sqlDB.Close, nil
}

// ResolveDriver maps a database URL onto a driver name and, for SQLite, a file path.
func ResolveDriver(databaseURL string) (string, string, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return DriverPostgres, "", nil
	}
	if strings.HasPrefix(databaseURL, "sqlite://") {
		parsed, err := url.Parse(databaseURL)
		if err != nil {
			return "", "", fmt.Errorf("parse sqlite url: %w", err)
		}
		path := parsed.Path
		if path == "" {
			path = parsed.Host
		}
		if path == "" || path == "/" {
			path = defaultSQLiteFile
		}
		sqlitePath, err := normalizeSQLitePath(path)
		return DriverSQLite, sqlitePath, err
	}
	sqlitePath, err := normalizeSQLitePath(databaseURL)
	return DriverSQLite, sqlitePath, err
}

func normalizeSQLitePath(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(".", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}

func withSilentLogger(config *gorm.Config) *gorm.Config {
	if config == nil {
		config = &gorm.Config{}
	}
	if config.Logger == nil {
		config.Logger = logger.Default.LogMode(logger.Silent)
	}
	return config
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?cache=shared&" + sqlitePragmas
	}
	return "file:" + path + "?" + sqlitePragmas
}
