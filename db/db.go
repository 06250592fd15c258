package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"product-image-studio/config"
	"product-image-studio/logging"
)

// DB holds the database connection
var DB *sql.DB

// InitDB opens the configured database, verifies it and applies the schema.
func InitDB(cfg *config.Config) error {
	driver, connStr, err := ConnString(cfg)
	if err != nil {
		return err
	}

	conn, err := Open(driver, connStr)
	if err != nil {
		return err
	}

	// Test the connection
	ctx := context.Background()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, conn); err != nil {
		conn.Close()
		return err
	}

	DB = conn
	logging.Default().Infof("✓ Database connection established successfully (driver: %s)", driver)
	return nil
}

// ConnString returns the driver name and connection string for cfg.
func ConnString(cfg *config.Config) (string, string, error) {
	if cfg.DBDriver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return "", "", fmt.Errorf("failed to create sqlite directory: %w", err)
		}
		return "sqlite", cfg.SQLitePath, nil
	}

	if cfg.DatabaseURL != "" {
		return "pgx", cfg.DatabaseURL, nil
	}

	// Build connection string from individual variables
	if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
		return "", "", fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}

	port := cfg.DBPort
	if port == "" {
		port = "5432"
	}
	sslmode := cfg.DBSSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, port, cfg.DBUser, cfg.DBPassword, cfg.DBName, sslmode)
	return "pgx", connStr, nil
}

// Open opens a connection pool for driver ("pgx" or "sqlite").
func Open(driver, connStr string) (*sql.DB, error) {
	conn, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if driver == "sqlite" {
		// A single writer avoids SQLITE_BUSY on concurrent transfers.
		conn.SetMaxOpenConns(1)
		pragmas := []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA busy_timeout = 5000",
		}
		for _, pragma := range pragmas {
			if _, err := conn.Exec(pragma); err != nil {
				conn.Close()
				return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
			}
		}
	}

	return conn, nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
