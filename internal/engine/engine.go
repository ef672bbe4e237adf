package engine

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"foreman/internal/config"
	"foreman/internal/domain"
	"foreman/internal/events"
	"foreman/internal/repo"
	"foreman/internal/telemetry"
)

// Engine implements every coordination operation on top of one SQLite
// database. Each read-modify-write runs in a single transaction; the engine
// holds no locks of its own and never retries.
type Engine struct {
	DB        *sql.DB
	Repo      repo.Repo
	Config    *config.Config
	Log       *slog.Logger
	Telemetry *telemetry.Recorder
	// Launcher creates terminal sessions in the external daemon. Nil skips it.
	Launcher SessionLauncher
	Now      func() time.Time
}

func New(db *sql.DB, cfg *config.Config) Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Config: cfg,
		Log:    slog.Default(),
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) stamp() string {
	return domain.FormatTime(e.now())
}

func (e Engine) log() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}

func (e Engine) events() events.Writer {
	return events.Writer{Repo: e.Repo, Now: e.now}
}

func (e Engine) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	return e.Telemetry.Start(ctx, op, attrs...)
}

func (e Engine) pageSize(limit int) int {
	def, max := 100, 1000
	if e.Config != nil {
		def, max = e.Config.Timeline.PageSize, e.Config.Timeline.MaxPageSize
	}
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// orchestration loads the parent orchestration or returns ErrNotFound.
func (e Engine) orchestration(ctx context.Context, tx *sql.Tx, id string) (domain.Orchestration, error) {
	o, err := e.Repo.GetOrchestration(ctx, tx, id)
	if err != nil {
		return o, wrapNotFound(err, "orchestration", id)
	}
	return o, nil
}

func normalizeOptional(ts *string) (*string, error) {
	if ts == nil {
		return nil, nil
	}
	norm, err := domain.NormalizeTime(*ts)
	if err != nil {
		return nil, invalid("%v", err)
	}
	return &norm, nil
}
