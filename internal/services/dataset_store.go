package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"stockpulse/internal/dataprocessing"
	"stockpulse/internal/infrastructure"
	api "stockpulse/pkg/contracts/api/v1"
	"stockpulse/pkg/contracts/domain"
)

// DatasetLoader reads a dataset from a source path.
type DatasetLoader interface {
	LoadFile(ctx context.Context, path string) (*dataprocessing.Dataset, error)
}

// Indexer is refreshed with the records of every newly loaded dataset.
type Indexer interface {
	Rebuild(ctx context.Context, records []domain.StockRecord) error
}

// LoadNotifier is told about every successful load.
type LoadNotifier interface {
	NotifyDatasetLoaded(ctx context.Context, result api.ReloadResult)
}

// DatasetStore holds the current dataset. Readers get an immutable snapshot;
// a reload swaps in a new snapshot only when it succeeds.
type DatasetStore struct {
	path    string
	loader  DatasetLoader
	indexer Indexer
	notify  LoadNotifier
	metrics *infrastructure.DashboardMetrics
	logger  *slog.Logger

	current atomic.Pointer[dataprocessing.Dataset]
	group   singleflight.Group
	cron    *cron.Cron
}

// NewDatasetStore creates a store for the source at path. indexer and
// metrics may be nil.
func NewDatasetStore(path string, loader DatasetLoader, indexer Indexer, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DatasetStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetStore{
		path:    path,
		loader:  loader,
		indexer: indexer,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "dataset_store")),
	}
}

// SetNotifier registers n to hear about loads. Call it before the first load.
func (s *DatasetStore) SetNotifier(n LoadNotifier) { s.notify = n }

// Path returns the source path.
func (s *DatasetStore) Path() string { return s.path }

// Current returns the loaded dataset or ErrDatasetNotLoaded.
func (s *DatasetStore) Current() (*dataprocessing.Dataset, error) {
	ds := s.current.Load()
	if ds == nil {
		return nil, ErrDatasetNotLoaded
	}
	return ds, nil
}

// Loaded reports whether a dataset is available.
func (s *DatasetStore) Loaded() bool {
	return s.current.Load() != nil
}

// Load reads the source and makes it current. Concurrent calls share a
// single read. On failure the previous dataset stays current.
func (s *DatasetStore) Load(ctx context.Context) (*dataprocessing.Dataset, error) {
	v, err, shared := s.group.Do("load", func() (interface{}, error) {
		return s.load(ctx)
	})
	if shared {
		s.logger.DebugContext(ctx, "joined in-flight dataset load")
	}
	if err != nil {
		return nil, err
	}
	return v.(*dataprocessing.Dataset), nil
}

func (s *DatasetStore) load(ctx context.Context) (*dataprocessing.Dataset, error) {
	start := time.Now()
	ds, err := s.loader.LoadFile(ctx, s.path)
	if err != nil {
		s.metrics.RecordDatasetLoad(ctx, 0, err)
		s.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
			slog.Bool("kept_previous", s.Loaded()))
		return nil, err
	}

	if s.indexer != nil {
		if err := s.indexer.Rebuild(ctx, ds.Records()); err != nil {
			// Search is auxiliary; the dataset is still served.
			s.logger.WarnContext(ctx, "search index rebuild failed", slog.String("error", err.Error()))
		}
	}

	s.current.Store(ds)
	s.metrics.RecordDatasetLoad(ctx, ds.Len(), nil)
	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", s.path),
		slog.Int("records", ds.Len()),
		slog.Duration("duration", time.Since(start)))

	if s.notify != nil {
		s.notify.NotifyDatasetLoaded(ctx, reloadResult(ds))
	}
	return ds, nil
}

func reloadResult(ds *dataprocessing.Dataset) api.ReloadResult {
	return api.ReloadResult{
		Source:      ds.Source(),
		RecordCount: ds.Len(),
		LoadedAt:    ds.LoadedAt(),
	}
}

// Reload re-reads the source and reports the result.
func (s *DatasetStore) Reload(ctx context.Context) (*api.ReloadResult, error) {
	ds, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload failed: %w", err)
	}
	result := reloadResult(ds)
	return &result, nil
}

// StartSchedule reloads the dataset on a cron schedule such as
// "0 18 * * 1-5" or "@every 1h". An empty spec does nothing.
func (s *DatasetStore) StartSchedule(spec string) error {
	if spec == "" {
		return nil
	}
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug))
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := c.AddFunc(spec, s.scheduledReload); err != nil {
		return fmt.Errorf("register reload schedule %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("reload schedule started", slog.String("schedule", spec))
	return nil
}

func (s *DatasetStore) scheduledReload() {
	ctx := infrastructure.EnsureTraceID(context.Background())
	// Failures are logged by load and the previous dataset stays current.
	_, _ = s.Load(ctx)
}

// Stop halts the reload schedule and waits for a running reload.
func (s *DatasetStore) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	s.logger.Info("reload schedule stopped")
}
