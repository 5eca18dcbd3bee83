package elasticsearch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/domain"
)

// These tests need a live cluster. Set ELASTICSEARCH_URL to run them,
// for example http://localhost:9200.
func newIntegrationEngine(t *testing.T) *Engine {
	t.Helper()

	url := os.Getenv("ELASTICSEARCH_URL")
	if url == "" {
		t.Skip("ELASTICSEARCH_URL not set")
	}

	eng, err := New(Config{
		Addresses: strings.Split(url, ","),
		Username:  os.Getenv("ELASTICSEARCH_USERNAME"),
		Password:  os.Getenv("ELASTICSEARCH_PASSWORD"),
		IndexName: fmt.Sprintf("products-test-%s", uuid.New().String()[:8]),
		// Immediate visibility keeps the tests deterministic.
		BulkRefresh: true,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, eng.Ping(ctx))
	require.NoError(t, eng.EnsureIndex(ctx))
	t.Cleanup(func() {
		_ = eng.DropIndex(context.Background())
	})
	return eng
}

func integrationDocs() []domain.SearchDocument {
	now := time.Now().UTC()
	return []domain.SearchDocument{
		{
			ID: "it-p1", Name: "Laptop Dell XPS 13", Description: "Ultrabook cao cấp màn hình 13 inch",
			Category: "Laptop", Brand: "Dell", Price: 25_000_000,
			Stock: 5, Availability: domain.AvailabilityInStock,
			Rating: 4.5, ReviewCount: 120, CreatedAt: now,
			SearchText: "laptop dell xps 13 ultrabook cao cấp màn hình 13 inch laptop dell",
		},
		{
			ID: "it-p2", Name: "Laptop MacBook Air M3", Description: "Mỏng nhẹ pin lâu",
			Category: "Laptop", Brand: "Apple", Price: 28_000_000,
			Stock: 0, Availability: domain.AvailabilityOutOfStock,
			Rating: 4.8, ReviewCount: 300, CreatedAt: now,
			SearchText: "laptop macbook air m3 mỏng nhẹ pin lâu laptop apple",
		},
		{
			ID: "it-p3", Name: "Chuột Logitech MX Master 3S", Description: "Chuột không dây văn phòng",
			Category: "Phụ kiện", Brand: "Logitech", Price: 2_500_000,
			Stock: 50, Availability: domain.AvailabilityInStock,
			Rating: 4.6, ReviewCount: 80, CreatedAt: now,
			SearchText: "chuột logitech mx master 3s chuột không dây văn phòng phụ kiện logitech",
		},
	}
}

func TestIntegrationEndToEndSearch(t *testing.T) {
	eng := newIntegrationEngine(t)
	ctx := context.Background()

	result, err := eng.Bulk(ctx, integrationDocs())
	require.NoError(t, err)
	require.Zero(t, result.FailedCount)

	search, err := eng.Search(ctx, &domain.SearchQuery{Query: "laptop", Size: 10, Aggregations: true})
	require.NoError(t, err)

	assert.True(t, search.Success)
	assert.Equal(t, 2, search.Total)
	assert.Positive(t, search.MaxScore)
	require.NotNil(t, search.Facets)
	assert.Equal(t, "Laptop", search.Facets.Categories[0].Key)

	for _, hit := range search.Hits {
		if len(hit.Highlights["name"]) > 0 {
			assert.Contains(t, hit.Highlights["name"][0], "<em>")
		}
	}
}

func TestIntegrationTypoTolerance(t *testing.T) {
	eng := newIntegrationEngine(t)
	ctx := context.Background()

	_, err := eng.Bulk(ctx, integrationDocs())
	require.NoError(t, err)

	// One transposition still finds the laptops through fuzziness.
	search, err := eng.Search(ctx, &domain.SearchQuery{Query: "lapotp", Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, search.Total)
}

func TestIntegrationPriceFilterInclusive(t *testing.T) {
	eng := newIntegrationEngine(t)
	ctx := context.Background()

	_, err := eng.Bulk(ctx, integrationDocs())
	require.NoError(t, err)

	min, max := 2_500_000.0, 25_000_000.0
	search, err := eng.Search(ctx, &domain.SearchQuery{MinPrice: &min, MaxPrice: &max, Size: 10})
	require.NoError(t, err)

	// Both boundary prices are included.
	assert.Equal(t, 2, search.Total)
}

func TestIntegrationFacetBandBoundary(t *testing.T) {
	eng := newIntegrationEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Index(ctx, &domain.SearchDocument{
		ID: "edge", Name: "Edge Product", Price: 5_000_000,
		Stock: 1, Availability: domain.AvailabilityInStock,
	}))

	search, err := eng.Search(ctx, &domain.SearchQuery{Aggregations: true, Size: 10})
	require.NoError(t, err)
	require.NotNil(t, search.Facets)

	for _, band := range search.Facets.PriceRanges {
		switch band.Key {
		case "Dưới 5 triệu":
			assert.Equal(t, 0, band.Count, "upper bound is exclusive")
		case "5 - 10 triệu":
			assert.Equal(t, 1, band.Count, "lower bound is inclusive")
		}
	}
}

func TestIntegrationDeleteIdempotent(t *testing.T) {
	eng := newIntegrationEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Index(ctx, &domain.SearchDocument{ID: "del-1", Name: "X"}))

	outcome, err := eng.Delete(ctx, "del-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Deleted, outcome)

	outcome, err = eng.Delete(ctx, "del-1")
	require.NoError(t, err)
	assert.Equal(t, domain.NotFound, outcome)
}

func TestIntegrationUpsertConverges(t *testing.T) {
	eng := newIntegrationEngine(t)
	ctx := context.Background()

	doc := domain.SearchDocument{ID: "up-1", Name: "Bàn phím", Price: 1_000_000}
	require.NoError(t, eng.Update(ctx, &doc))
	doc.Price = 900_000
	require.NoError(t, eng.Update(ctx, &doc))

	search, err := eng.Search(ctx, &domain.SearchQuery{Query: "bàn phím", Size: 10})
	require.NoError(t, err)
	require.Equal(t, 1, search.Total)
	assert.Equal(t, 900_000.0, search.Hits[0].Price)
}

func TestIntegrationAutocompletePrefix(t *testing.T) {
	eng := newIntegrationEngine(t)
	ctx := context.Background()

	_, err := eng.Bulk(ctx, integrationDocs())
	require.NoError(t, err)

	suggestions, err := eng.Autocomplete(ctx, "lap", 10)
	require.NoError(t, err)
	assert.Len(t, suggestions, 2)
	for _, s := range suggestions {
		assert.NotEmpty(t, s.Name)
		assert.Positive(t, s.Score)
	}
}

func TestIntegrationSimilarExcludesSeed(t *testing.T) {
	eng := newIntegrationEngine(t)
	ctx := context.Background()

	_, err := eng.Bulk(ctx, integrationDocs())
	require.NoError(t, err)

	hits, err := eng.FindSimilar(ctx, "it-p1", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.NotEqual(t, "it-p1", h.ID)
	}
	// The other laptop shares category and name terms, so it leads.
	assert.Equal(t, "it-p2", hits[0].ID)
}
