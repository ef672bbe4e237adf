// Package app assembles a ready engine from a workspace: config, logger,
// telemetry, database, migrations and the optional terminal launcher.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"foreman/internal/config"
	"foreman/internal/db"
	"foreman/internal/engine"
	"foreman/internal/migrate"
	"foreman/internal/telemetry"
	"foreman/internal/tmux"
)

// Version is stamped into telemetry resources.
var Version = "dev"

type Options struct {
	Workspace  string
	ConfigPath string
	// LogOutput defaults to io.Discard when nil.
	LogOutput io.Writer
}

type Runtime struct {
	Config *config.Config
	DB     *sql.DB
	Engine engine.Engine
	Log    *slog.Logger

	shutdown telemetry.ShutdownFunc
}

// NewLogger builds the slog logger described by cfg.Log.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Log.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Open loads configuration and returns a migrated, instrumented engine.
// Callers must Close the runtime.
func Open(ctx context.Context, opts Options) (*Runtime, error) {
	cfg, err := config.Load(opts.Workspace, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	return OpenWith(ctx, opts, cfg)
}

// OpenWith is Open with an already loaded config.
func OpenWith(ctx context.Context, opts Options, cfg *config.Config) (*Runtime, error) {
	logger := NewLogger(cfg, opts.LogOutput)

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Stdout:      cfg.Telemetry.Stdout,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     Version,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		if _, err := db.EnsureWorkspace(opts.Workspace); err != nil {
			return nil, errors.Join(err, shutdown(ctx))
		}
	}
	conn, err := db.Open(db.Config{Workspace: opts.Workspace, Path: cfg.Database.Path, BusyTimeoutMs: cfg.Database.BusyTimeoutMs})
	if err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}
	version, err := migrate.Migrate(ctx, conn)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("migrate: %w", err), conn.Close(), shutdown(ctx))
	}
	logger.Debug("database ready", "path", db.Path(db.Config{Workspace: opts.Workspace, Path: cfg.Database.Path}), "schema_version", version)

	e := engine.New(conn, cfg)
	e.Log = logger
	e.Telemetry = telemetry.NewRecorder()
	if cfg.Terminals.Launcher == "tmux" {
		l, err := tmux.NewLauncher()
		if err != nil {
			logger.Warn("tmux launcher unavailable", "err", err)
		} else {
			e.Launcher = l
		}
	}
	return &Runtime{Config: cfg, DB: conn, Engine: e, Log: logger, shutdown: shutdown}, nil
}

// Close flushes telemetry and closes the database.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.shutdown != nil {
		errs = append(errs, r.shutdown(ctx))
	}
	if r.DB != nil {
		errs = append(errs, r.DB.Close())
	}
	return errors.Join(errs...)
}
