package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/202510804-cloud/polar-plant-dashboard/internal/config"
	apperrors "github.com/202510804-cloud/polar-plant-dashboard/internal/errors"
	"github.com/202510804-cloud/polar-plant-dashboard/internal/files"
	"github.com/202510804-cloud/polar-plant-dashboard/internal/metrics"
)

// Snapshot is the result of one ingestion run: both unified tables, the
// group configuration they were built with, and the recoverable warnings
// accumulated along the way. Snapshots are immutable once returned.
type Snapshot struct {
	RunID    string         `json:"run_id"`
	LoadedAt time.Time      `json:"loaded_at"`
	Groups   []config.Group `json:"groups"`
	Env      EnvTable       `json:"env"`
	Growth   GrowthTable    `json:"growth"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Loader runs the ingestion pipeline and memoizes its result. Source files
// are static for the run's duration, so the first outcome — success or a
// halting failure — is cached until Invalidate is called. There is one
// writer ever (the loading goroutine under the mutex), so no further
// synchronization is needed downstream.
type Loader struct {
	cfg       *config.Config
	discovery *files.Discovery
	logger    *slog.Logger

	mu     sync.Mutex
	loaded bool
	snap   *Snapshot
	err    error
}

// NewLoader creates a loader over the configured data directory.
func NewLoader(cfg *config.Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		cfg:       cfg,
		discovery: files.NewDiscovery(cfg.Paths.DataDir),
		logger:    logger.With(slog.String("component", "loader")),
	}
}

// Load returns the memoized ingestion result, running the pipeline on
// first use. Halting failures (missing base directory, empty dataset) are
// memoized too; recoverable per-group failures surface only as warnings on
// the snapshot.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.snap, l.err
	}

	snap, err := l.load(ctx)
	l.loaded = true
	l.snap, l.err = snap, err
	return snap, err
}

// Invalidate clears the memoized result so the next Load re-reads disk.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = false
	l.snap, l.err = nil, nil
}

// load executes one full ingestion run: group-by-group, source-by-source,
// in configuration order.
func (l *Loader) load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	l.logger.InfoContext(ctx, "starting ingestion run",
		slog.String("data_dir", l.discovery.BaseDir()),
		slog.Int("groups", len(l.cfg.Groups)))

	if err := l.discovery.CheckBase(); err != nil {
		l.logger.ErrorContext(ctx, "data directory missing", slog.String("error", err.Error()))
		metrics.IngestRuns.WithLabelValues("directory_missing").Inc()
		return nil, err
	}

	var warnings []string
	warn := func(group, msg string) {
		warnings = append(warnings, msg)
		l.logger.WarnContext(ctx, msg, slog.String("group", group))
		metrics.GroupWarnings.WithLabelValues(group).Inc()
	}

	env := l.loadEnv(ctx, warn)
	growth := l.loadGrowth(ctx, warn)

	if env.Empty() || growth.Empty() {
		dataset := "environmental"
		switch {
		case env.Empty() && growth.Empty():
			dataset = "environmental and growth"
		case growth.Empty():
			dataset = "growth"
		}
		err := apperrors.NewEmptyDatasetError(dataset)
		l.logger.ErrorContext(ctx, "ingestion produced an empty dataset",
			slog.String("dataset", dataset),
			slog.Int("env_rows", len(env.Rows)),
			slog.Int("growth_rows", len(growth.Rows)))
		metrics.IngestRuns.WithLabelValues("empty_dataset").Inc()
		return nil, err
	}

	snap := &Snapshot{
		RunID:    uuid.NewString(),
		LoadedAt: time.Now(),
		Groups:   l.cfg.Groups,
		Env:      env,
		Growth:   growth,
		Warnings: warnings,
	}

	metrics.IngestRuns.WithLabelValues("success").Inc()
	metrics.RowsIngested.WithLabelValues("environmental").Set(float64(len(env.Rows)))
	metrics.RowsIngested.WithLabelValues("growth").Set(float64(len(growth.Rows)))

	l.logger.InfoContext(ctx, "ingestion run complete",
		slog.String("run_id", snap.RunID),
		slog.Int("env_rows", len(env.Rows)),
		slog.Int("growth_rows", len(growth.Rows)),
		slog.Int("warnings", len(warnings)),
		slog.Duration("elapsed", time.Since(start)))

	return snap, nil
}

// loadEnv parses each group's environmental CSV. A group whose file is
// missing or unreadable contributes zero rows; the run continues.
func (l *Loader) loadEnv(ctx context.Context, warn func(group, msg string)) EnvTable {
	var tables []EnvTable
	for _, group := range l.cfg.Groups {
		logical := group.Name + l.cfg.Paths.EnvFileSuffix

		path, ok, err := l.discovery.Resolve(logical)
		if err != nil {
			warn(group.Name, fmt.Sprintf("group %s: listing data directory failed: %v", group.Name, err))
			continue
		}
		if !ok {
			warn(group.Name, fmt.Sprintf("group %s: environmental file %q not found", group.Name, logical))
			continue
		}

		table, err := ParseEnvCSV(path, group)
		if err != nil {
			warn(group.Name, fmt.Sprintf("group %s: environmental data unreadable: %v", group.Name, err))
			continue
		}

		l.logger.InfoContext(ctx, "parsed environmental data",
			slog.String("group", group.Name),
			slog.Int("rows", len(table.Rows)))
		tables = append(tables, table)
	}
	return AggregateEnv(tables)
}

// loadGrowth parses the growth workbook. A workbook-level failure empties
// the growth dataset as a whole; the emptiness check in load decides
// whether that halts the run.
func (l *Loader) loadGrowth(ctx context.Context, warn func(group, msg string)) GrowthTable {
	logical := l.cfg.Paths.GrowthWorkbook

	path, ok, err := l.discovery.Resolve(logical)
	if err != nil {
		warn("workbook", fmt.Sprintf("listing data directory for growth workbook failed: %v", err))
		return AggregateGrowth(nil)
	}
	if !ok {
		warn("workbook", fmt.Sprintf("growth workbook %q not found", logical))
		return AggregateGrowth(nil)
	}

	tables, err := ParseGrowthWorkbook(path, l.cfg.Groups)
	if err != nil {
		warn("workbook", fmt.Sprintf("growth workbook unreadable: %v", err))
		return AggregateGrowth(nil)
	}

	return AggregateGrowth(tables)
}
