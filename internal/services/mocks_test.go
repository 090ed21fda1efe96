package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stockpulse/internal/dataprocessing"
	api "stockpulse/pkg/contracts/api/v1"
	"stockpulse/pkg/contracts/domain"
)

// MockDatasetLoader is a mock for DatasetLoader
type MockDatasetLoader struct {
	mock.Mock
}

func (m *MockDatasetLoader) LoadFile(ctx context.Context, path string) (*dataprocessing.Dataset, error) {
	args := m.Called(ctx, path)
	if ds := args.Get(0); ds != nil {
		return ds.(*dataprocessing.Dataset), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockIndexer is a mock for Indexer
type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) Rebuild(ctx context.Context, records []domain.StockRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// MockLoadNotifier is a mock for LoadNotifier
type MockLoadNotifier struct {
	mock.Mock
}

func (m *MockLoadNotifier) NotifyDatasetLoaded(ctx context.Context, result api.ReloadResult) {
	m.Called(ctx, result)
}

// MockCompanySearcher is a mock for CompanySearcher
type MockCompanySearcher struct {
	mock.Mock
}

func (m *MockCompanySearcher) Search(ctx context.Context, query string, limit int) (api.SearchResult, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).(api.SearchResult), args.Error(1)
}

// staticDatasets serves a fixed dataset, or ErrDatasetNotLoaded when nil.
type staticDatasets struct {
	ds *dataprocessing.Dataset
}

func (s staticDatasets) Current() (*dataprocessing.Dataset, error) {
	if s.ds == nil {
		return nil, ErrDatasetNotLoaded
	}
	return s.ds, nil
}
