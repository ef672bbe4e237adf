package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	defaultDBName      = "foreman.db"
	workspaceDir       = ".foreman"
	defaultBusyTimeout = 5000
)

type Config struct {
	Workspace string
	// Path overrides the workspace-derived database file.
	Path string
	// BusyTimeoutMs is how long a writer waits for the lock before failing.
	BusyTimeoutMs int
}

func dbPath(cfg Config) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	workspace := cfg.Workspace
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, workspaceDir, defaultDBName)
}

// EnsureWorkspace creates the workspace state directory if missing.
func EnsureWorkspace(workspace string) (string, error) {
	path := filepath.Join(workspace, workspaceDir)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// DSN builds the connection string. Write transactions begin IMMEDIATE so
// read-modify-write sequences serialize on the database write lock.
func DSN(path string, busyTimeoutMs int) string {
	if busyTimeoutMs <= 0 {
		busyTimeoutMs = defaultBusyTimeout
	}
	return fmt.Sprintf("file:%s?_txlock=immediate&_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		path, busyTimeoutMs)
}

// Open opens the SQLite database with foreign keys, WAL and a busy timeout.
func Open(cfg Config) (*sql.DB, error) {
	path := dbPath(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	conn, err := sql.Open("sqlite", DSN(path, cfg.BusyTimeoutMs))
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(8)
	conn.SetMaxIdleConns(8)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	return conn, nil
}

// Path returns the db path for the config.
func Path(cfg Config) string {
	return dbPath(cfg)
}
