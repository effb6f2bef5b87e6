package store

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"growthos/internal/config"
	"growthos/internal/errors"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Open builds the store from configuration. Missing or malformed credentials and
// connection failures yield the Disabled store with a warning instead of an error.
func Open(ctx context.Context, cfg config.DatabaseConfig, feedbackLimit int, logger *errors.Logger) Store {
	if strings.TrimSpace(cfg.URL) == "" {
		logger.Warn("Database URL not set, persistence disabled")
		return Disabled{}
	}

	writerDSN, err := buildDSN(cfg.Driver, cfg.URL, cfg.ServiceKey)
	if err != nil {
		logger.Warn("Invalid database connection string, persistence disabled", "error", err.Error())
		return Disabled{}
	}

	writer, err := openDB(cfg, writerDSN)
	if err != nil {
		logger.Warn("Failed to connect to database, persistence disabled", "driver", cfg.Driver, "error", err.Error())
		return Disabled{}
	}

	reader := writer
	if usesSeparateReader(cfg) {
		reader = openReader(cfg, logger, writer)
	}

	s := NewGormStore(writer, reader, feedbackLimit, logger)
	if cfg.AutoMigrate {
		if err := s.Migrate(ctx); err != nil {
			logger.LogError(err, "Database migration failed, persistence disabled")
			_ = s.Close()
			return Disabled{}
		}
	}

	logger.Info("Database connected",
		"driver", cfg.Driver,
		"separate_reader", reader != writer,
		"auto_migrate", cfg.AutoMigrate)
	return s
}

func usesSeparateReader(cfg config.DatabaseConfig) bool {
	if cfg.Driver != "postgres" {
		return false
	}
	return (cfg.PublicURL != "" && cfg.PublicURL != cfg.URL) || cfg.PublicKey != ""
}

// openReader opens the public-key connection, falling back to the writer on failure
func openReader(cfg config.DatabaseConfig, logger *errors.Logger, writer *gorm.DB) *gorm.DB {
	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = cfg.URL
	}
	dsn, err := buildDSN(cfg.Driver, publicURL, cfg.PublicKey)
	if err != nil {
		logger.Warn("Invalid public database connection string, using privileged connection for reads", "error", err.Error())
		return writer
	}
	reader, err := openDB(cfg, dsn)
	if err != nil {
		logger.Warn("Failed to open public database connection, using privileged connection for reads", "error", err.Error())
		return writer
	}
	return reader
}

func openDB(cfg config.DatabaseConfig, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLife > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLife)
	}
	return db, nil
}

// buildDSN validates the connection string and, for postgres, injects the key as the
// password when the URL does not carry one
func buildDSN(driver, rawURL, key string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("connection string is empty")
	}

	switch driver {
	case "sqlite":
		return rawURL, nil
	case "postgres":
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("connection string is not a valid URL")
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("unsupported connection scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("connection string has no host")
	}

	if key != "" {
		if _, hasPassword := u.User.Password(); !hasPassword {
			username := "postgres"
			if u.User != nil && u.User.Username() != "" {
				username = u.User.Username()
			}
			u.User = url.UserPassword(username, key)
		}
	}
	return u.String(), nil
}
