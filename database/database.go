package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"formharbor/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init opens the database connection using the DSN from the application config.
// A DSN of "memory" (or empty) selects an in-memory SQLite database; anything
// else is treated as a SQLite file path. The returned handle is passed to
// repositories explicitly; no package-level connection is retained.
func Init() (*gorm.DB, error) {
	dsn := config.AppConfig.Database.DSN

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	gormConfig := &gorm.Config{
		Logger: gormLogger,
	}

	if dsn == "memory" || dsn == "" {
		log.Println("INFO: [Database] Initializing in-memory SQLite database.")
		return gorm.Open(sqlite.Open("file::memory:?cache=shared"), gormConfig)
	}

	log.Printf("INFO: [Database] Initializing file-based SQLite database at '%s'.", dsn)
	dbDir := filepath.Dir(dsn)
	if dbDir != "." && dbDir != "/" {
		if _, statErr := os.Stat(dbDir); os.IsNotExist(statErr) {
			if mkdirErr := os.MkdirAll(dbDir, 0755); mkdirErr != nil {
				return nil, fmt.Errorf("failed to create database directory '%s': %w", dbDir, mkdirErr)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database (DSN: '%s'): %w", dsn, err)
	}

	log.Println("INFO: [Database] Database connection established successfully.")
	return db, nil
}
