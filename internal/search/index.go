// Package search keeps an in-memory full-text index of the companies in the
// loaded dataset. The index is rebuilt whenever the dataset is reloaded.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"stockpulse/internal/dataprocessing"
	api "stockpulse/pkg/contracts/api/v1"
	"stockpulse/pkg/contracts/domain"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Index is a company search index safe for concurrent use.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	size   int
	logger *slog.Logger
}

// NewIndex returns an empty index.
func NewIndex(logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{logger: logger.With(slog.String("component", "search"))}
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	companyMapping := bleve.NewDocumentMapping()

	// Exact and prefix symbol matches run against the untokenized key.
	keyFieldMapping := bleve.NewKeywordFieldMapping()
	companyMapping.AddFieldMappingsAt("symbol_key", keyFieldMapping)

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Store = true
	companyMapping.AddFieldMappingsAt("symbol", textFieldMapping)
	companyMapping.AddFieldMappingsAt("sector", textFieldMapping)
	companyMapping.AddFieldMappingsAt("industry", textFieldMapping)

	aboutFieldMapping := bleve.NewTextFieldMapping()
	aboutFieldMapping.Store = false
	companyMapping.AddFieldMappingsAt("about", aboutFieldMapping)

	indexMapping.DefaultMapping = companyMapping
	return indexMapping
}

// Rebuild replaces the index contents with one document per symbol, taken
// from the symbol's latest record.
func (i *Index) Rebuild(ctx context.Context, records []domain.StockRecord) error {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	latest := dataprocessing.LatestPerSymbol(records)
	batch := idx.NewBatch()
	for _, r := range latest {
		doc := map[string]interface{}{
			"symbol_key": strings.ToLower(r.Symbol),
			"symbol":     r.Symbol,
			"sector":     r.Sector,
			"industry":   r.Industry,
			"about":      r.About,
		}
		if err := batch.Index(r.Symbol, doc); err != nil {
			idx.Close()
			return fmt.Errorf("failed to add %s to batch: %w", r.Symbol, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return fmt.Errorf("failed to execute batch: %w", err)
	}

	i.mu.Lock()
	old := i.index
	i.index = idx
	i.size = len(latest)
	i.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			i.logger.WarnContext(ctx, "failed to close previous index", slog.String("error", err.Error()))
		}
	}

	i.logger.InfoContext(ctx, "search index rebuilt", slog.Int("companies", len(latest)))
	return nil
}

// Len returns the number of indexed companies.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.size
}

// Search looks up companies by symbol, sector, industry and description.
// Exact symbol matches rank first, then symbol prefixes, then text matches.
// A blank query or an unbuilt index yields no hits.
func (i *Index) Search(ctx context.Context, query string, limit int) (api.SearchResult, error) {
	query = strings.TrimSpace(query)
	result := api.SearchResult{Query: query, Hits: []api.CompanyHit{}}
	if query == "" {
		return result, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.index == nil {
		return result, nil
	}

	key := strings.ToLower(query)

	exactQuery := bleve.NewTermQuery(key)
	exactQuery.SetField("symbol_key")
	exactQuery.SetBoost(10.0)

	prefixQuery := bleve.NewPrefixQuery(key)
	prefixQuery.SetField("symbol_key")
	prefixQuery.SetBoost(5.0)

	sectorQuery := bleve.NewMatchQuery(query)
	sectorQuery.SetField("sector")
	sectorQuery.SetBoost(2.0)

	industryQuery := bleve.NewMatchQuery(query)
	industryQuery.SetField("industry")
	industryQuery.SetBoost(2.0)

	aboutQuery := bleve.NewMatchQuery(query)
	aboutQuery.SetField("about")

	searchRequest := bleve.NewSearchRequestOptions(
		bleve.NewDisjunctionQuery(exactQuery, prefixQuery, sectorQuery, industryQuery, aboutQuery),
		limit, 0, false)
	searchRequest.Fields = []string{"symbol", "sector", "industry"}

	searchResults, err := i.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return result, fmt.Errorf("search failed: %w", err)
	}

	getString := func(fields map[string]interface{}, key string) string {
		if val, ok := fields[key].(string); ok {
			return val
		}
		return ""
	}

	result.Total = searchResults.Total
	for _, hit := range searchResults.Hits {
		result.Hits = append(result.Hits, api.CompanyHit{
			Symbol:   hit.ID,
			Sector:   getString(hit.Fields, "sector"),
			Industry: getString(hit.Fields, "industry"),
			Score:    hit.Score,
		})
	}

	i.logger.DebugContext(ctx, "search completed",
		slog.String("query", query),
		slog.Uint64("total", searchResults.Total),
		slog.Int("returned", len(result.Hits)))
	return result, nil
}

// Close releases the index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.index == nil {
		return nil
	}
	err := i.index.Close()
	i.index = nil
	i.size = 0
	return err
}
