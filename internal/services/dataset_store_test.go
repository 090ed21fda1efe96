package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/dataprocessing"
	apperrors "stockpulse/internal/errors"
	"stockpulse/internal/shared/testutil"
	api "stockpulse/pkg/contracts/api/v1"
	"stockpulse/pkg/contracts/domain"
)

func smallDataset(source string) *dataprocessing.Dataset {
	return dataprocessing.NewDataset(source, []domain.StockRecord{
		testutil.Record("2024-01-02", "RELIANCE", testutil.WithPrice(2580.5)),
		testutil.Record("2024-01-02", "TCS", testutil.WithPrice(3720)),
	})
}

func TestDatasetStore_CurrentBeforeLoad(t *testing.T) {
	store := NewDatasetStore("metrics.csv", &MockDatasetLoader{}, nil, nil, nil)

	_, err := store.Current()
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
	assert.False(t, store.Loaded())
	assert.Equal(t, "metrics.csv", store.Path())
}

func TestDatasetStore_Load(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	loader := &MockDatasetLoader{}
	indexer := &MockIndexer{}
	ds := smallDataset("metrics.csv")

	loader.On("LoadFile", mock.Anything, "metrics.csv").Return(ds, nil).Once()
	indexer.On("Rebuild", mock.Anything, mock.MatchedBy(func(r []domain.StockRecord) bool { return len(r) == 2 })).Return(nil).Once()

	store := NewDatasetStore("metrics.csv", loader, indexer, nil, logger)
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, ds, got)

	current, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, ds, current)
	assert.True(t, store.Loaded())
	assert.True(t, handler.ContainsMessage("dataset loaded"))

	loader.AssertExpectations(t)
	indexer.AssertExpectations(t)
}

func TestDatasetStore_FailedReloadKeepsPrevious(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	loader := &MockDatasetLoader{}
	first := smallDataset("metrics.csv")
	loadErr := &apperrors.DataLoadError{Path: "metrics.csv", MissingColumns: []string{"LTP"}}

	loader.On("LoadFile", mock.Anything, "metrics.csv").Return(first, nil).Once()
	loader.On("LoadFile", mock.Anything, "metrics.csv").Return(nil, loadErr).Once()

	store := NewDatasetStore("metrics.csv", loader, nil, nil, logger)
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	_, err = store.Reload(context.Background())
	require.Error(t, err)
	var dle *apperrors.DataLoadError
	assert.True(t, errors.As(err, &dle))
	assert.ErrorIs(t, err, apperrors.ErrDataLoad)

	current, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)
	assert.True(t, handler.ContainsMessage("dataset load failed"))
}

func TestDatasetStore_IndexFailureIsNotFatal(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	loader := &MockDatasetLoader{}
	indexer := &MockIndexer{}
	loader.On("LoadFile", mock.Anything, "metrics.csv").Return(smallDataset("metrics.csv"), nil)
	indexer.On("Rebuild", mock.Anything, mock.Anything).Return(errors.New("index broken"))

	store := NewDatasetStore("metrics.csv", loader, indexer, nil, logger)
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, store.Loaded())
	assert.True(t, handler.ContainsMessage("search index rebuild failed"))
}

func TestDatasetStore_Reload(t *testing.T) {
	loader := &MockDatasetLoader{}
	loader.On("LoadFile", mock.Anything, "metrics.csv").Return(smallDataset("metrics.csv"), nil)

	store := NewDatasetStore("metrics.csv", loader, nil, nil, nil)
	result, err := store.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "metrics.csv", result.Source)
	assert.Equal(t, 2, result.RecordCount)
	assert.False(t, result.LoadedAt.IsZero())
}

// gatedLoader blocks every load until release is closed.
type gatedLoader struct {
	calls   atomic.Int32
	release chan struct{}
}

func (g *gatedLoader) LoadFile(ctx context.Context, path string) (*dataprocessing.Dataset, error) {
	g.calls.Add(1)
	<-g.release
	return smallDataset(path), nil
}

func TestDatasetStore_ConcurrentLoadsShareOneRead(t *testing.T) {
	loader := &gatedLoader{release: make(chan struct{})}
	store := NewDatasetStore("metrics.csv", loader, nil, nil, nil)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*dataprocessing.Dataset, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := store.Load(context.Background())
			assert.NoError(t, err)
			results[i] = ds
		}(i)
	}

	require.Eventually(t, func() bool { return loader.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(loader.release)
	wg.Wait()

	assert.Equal(t, int32(1), loader.calls.Load())
	for _, ds := range results {
		assert.Same(t, results[0], ds)
	}
}

type countingLoader struct {
	calls atomic.Int32
}

func (c *countingLoader) LoadFile(ctx context.Context, path string) (*dataprocessing.Dataset, error) {
	c.calls.Add(1)
	return smallDataset(path), nil
}

func TestDatasetStore_StartSchedule(t *testing.T) {
	t.Run("empty spec is a no-op", func(t *testing.T) {
		store := NewDatasetStore("metrics.csv", &countingLoader{}, nil, nil, nil)
		require.NoError(t, store.StartSchedule(""))
		store.Stop()
	})

	t.Run("invalid spec", func(t *testing.T) {
		store := NewDatasetStore("metrics.csv", &countingLoader{}, nil, nil, nil)
		err := store.StartSchedule("every now and then")
		assert.Error(t, err)
	})

	t.Run("reloads on schedule", func(t *testing.T) {
		loader := &countingLoader{}
		logger, _ := testutil.NewTestLogger(t)
		store := NewDatasetStore("metrics.csv", loader, nil, nil, logger)

		require.NoError(t, store.StartSchedule("@every 1s"))
		defer store.Stop()

		require.Eventually(t, func() bool { return loader.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
		assert.True(t, store.Loaded())
	})
}

func TestDatasetStore_NotifiesOnSuccessfulLoad(t *testing.T) {
	loader := &MockDatasetLoader{}
	notifier := &MockLoadNotifier{}
	ds := smallDataset("metrics.csv")

	loader.On("LoadFile", mock.Anything, "metrics.csv").Return(ds, nil).Once()
	loader.On("LoadFile", mock.Anything, "metrics.csv").Return(nil, errors.New("boom")).Once()
	notifier.On("NotifyDatasetLoaded", mock.Anything, mock.MatchedBy(func(r api.ReloadResult) bool {
		return r.Source == "metrics.csv" && r.RecordCount == 2
	})).Once()

	store := NewDatasetStore("metrics.csv", loader, nil, nil, nil)
	store.SetNotifier(notifier)

	_, err := store.Load(context.Background())
	require.NoError(t, err)
	_, err = store.Reload(context.Background())
	require.Error(t, err)

	notifier.AssertExpectations(t)
	notifier.AssertNumberOfCalls(t, "NotifyDatasetLoaded", 1)
}
