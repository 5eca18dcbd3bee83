package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/domain"
	apperrors "github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/errors"
)

func seedEngine(t *testing.T) *Engine {
	t.Helper()

	e := New()
	docs := []domain.SearchDocument{
		{
			ID: "p1", Name: "Laptop Dell XPS 13", Description: "Ultrabook cao cấp",
			Category: "Laptop", Brand: "Dell", Price: 25_000_000,
			Stock: 5, Availability: domain.AvailabilityInStock,
			Rating: 4.5, ReviewCount: 120,
			CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			SearchText: "laptop dell xps 13 ultrabook cao cấp laptop dell",
		},
		{
			ID: "p2", Name: "Laptop MacBook Air M3", Description: "Mỏng nhẹ, pin lâu",
			Category: "Laptop", Brand: "Apple", Price: 28_000_000,
			Stock: 0, Availability: domain.AvailabilityOutOfStock,
			Rating: 4.8, ReviewCount: 300,
			CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			SearchText: "laptop macbook air m3 mỏng nhẹ pin lâu laptop apple",
		},
		{
			ID: "p3", Name: "iPhone 16 Pro", Description: "Camera tốt nhất",
			Category: "Điện thoại", Brand: "Apple", Price: 32_000_000,
			Stock: 10, Availability: domain.AvailabilityInStock,
			Rating: 4.7, ReviewCount: 500,
			CreatedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			SearchText: "iphone 16 pro camera tốt nhất điện thoại apple",
		},
		{
			ID: "p4", Name: "Chuột Logitech MX Master 3S", Description: "Chuột văn phòng",
			Category: "Phụ kiện", Brand: "Logitech", Price: 2_500_000,
			Stock: 50, Availability: domain.AvailabilityInStock,
			Rating: 4.6, ReviewCount: 80,
			CreatedAt: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			SearchText: "chuột logitech mx master 3s chuột văn phòng phụ kiện logitech",
		},
	}
	result, err := e.Bulk(context.Background(), docs)
	require.NoError(t, err)
	require.Equal(t, len(docs), result.SuccessCount)
	return e
}

func TestSearchTextMatch(t *testing.T) {
	e := seedEngine(t)

	result, err := e.Search(context.Background(), &domain.SearchQuery{Query: "laptop", Size: 10})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Total)
	for _, hit := range result.Hits {
		assert.Contains(t, hit.Highlights["name"][0], "<em>")
	}
}

func TestSearchMatchAllOnEmptyQuery(t *testing.T) {
	e := seedEngine(t)

	result, err := e.Search(context.Background(), &domain.SearchQuery{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
}

func TestSearchFilters(t *testing.T) {
	e := seedEngine(t)
	ctx := context.Background()

	t.Run("category and brand", func(t *testing.T) {
		result, err := e.Search(ctx, &domain.SearchQuery{
			Categories: []string{"Laptop"},
			Brands:     []string{"Apple"},
			Size:       10,
		})
		require.NoError(t, err)
		require.Equal(t, 1, result.Total)
		assert.Equal(t, "p2", result.Hits[0].ID)
	})

	t.Run("price range is inclusive on both ends", func(t *testing.T) {
		min, max := 2_500_000.0, 28_000_000.0
		result, err := e.Search(ctx, &domain.SearchQuery{
			MinPrice: &min, MaxPrice: &max, Size: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Total)
	})

	t.Run("in stock excludes zero stock", func(t *testing.T) {
		result, err := e.Search(ctx, &domain.SearchQuery{InStock: true, Size: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Total)
		for _, hit := range result.Hits {
			assert.NotEqual(t, "p2", hit.ID)
		}
	})
}

func TestSearchSorts(t *testing.T) {
	e := seedEngine(t)
	ctx := context.Background()

	t.Run("price ascending", func(t *testing.T) {
		result, err := e.Search(ctx, &domain.SearchQuery{
			SortBy: domain.SortPrice, SortOrder: domain.OrderAsc, Size: 10,
		})
		require.NoError(t, err)
		require.Len(t, result.Hits, 4)
		assert.Equal(t, "p4", result.Hits[0].ID)
		assert.Equal(t, "p3", result.Hits[3].ID)
	})

	t.Run("popularity ignores order", func(t *testing.T) {
		for _, order := range []string{domain.OrderAsc, domain.OrderDesc} {
			result, err := e.Search(ctx, &domain.SearchQuery{
				SortBy: domain.SortPopularity, SortOrder: order, Size: 10,
			})
			require.NoError(t, err)
			assert.Equal(t, "p3", result.Hits[0].ID, "most reviewed first regardless of order %s", order)
		}
	})

	t.Run("createdAt descending", func(t *testing.T) {
		result, err := e.Search(ctx, &domain.SearchQuery{
			SortBy: domain.SortCreatedAt, SortOrder: domain.OrderDesc, Size: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, "p2", result.Hits[0].ID)
	})
}

func TestSearchPagination(t *testing.T) {
	e := seedEngine(t)

	result, err := e.Search(context.Background(), &domain.SearchQuery{
		SortBy: domain.SortPrice, SortOrder: domain.OrderAsc, From: 2, Size: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, "p2", result.Hits[0].ID)

	beyond, err := e.Search(context.Background(), &domain.SearchQuery{From: 100, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond.Hits)
	assert.Equal(t, 4, beyond.Total)
}

func TestSearchFacets(t *testing.T) {
	e := seedEngine(t)

	result, err := e.Search(context.Background(), &domain.SearchQuery{Aggregations: true, Size: 10})
	require.NoError(t, err)
	require.NotNil(t, result.Facets)

	assert.Equal(t, "Laptop", result.Facets.Categories[0].Key)
	assert.Equal(t, 2, result.Facets.Categories[0].Count)
	assert.Equal(t, "Apple", result.Facets.Brands[0].Key)
	assert.Equal(t, 3, result.Facets.InStockCount)
	assert.InDelta(t, 21_875_000, result.Facets.AvgPrice, 0.01)

	// Band upper bounds are exclusive: the 25M doc falls in 20-30, not 10-20.
	bands := map[string]int{}
	for _, r := range result.Facets.PriceRanges {
		bands[r.Key] = r.Count
	}
	assert.Equal(t, 1, bands["Dưới 5 triệu"])
	assert.Equal(t, 2, bands["20 - 30 triệu"])
	assert.Equal(t, 1, bands["Trên 30 triệu"])
}

func TestFacetBandBoundary(t *testing.T) {
	e := New()
	ctx := context.Background()
	require.NoError(t, e.Index(ctx, &domain.SearchDocument{
		ID: "edge", Name: "Edge", Price: 5_000_000,
		Stock: 1, Availability: domain.AvailabilityInStock,
	}))

	result, err := e.Search(ctx, &domain.SearchQuery{Aggregations: true, Size: 10})
	require.NoError(t, err)
	require.NotNil(t, result.Facets)

	for _, r := range result.Facets.PriceRanges {
		switch r.Key {
		case "Dưới 5 triệu":
			assert.Equal(t, 0, r.Count, "5M is excluded from the sub-5M band")
		case "5 - 10 triệu":
			assert.Equal(t, 1, r.Count)
		}
	}
}

func TestDeleteOutcomes(t *testing.T) {
	e := seedEngine(t)
	ctx := context.Background()

	outcome, err := e.Delete(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.Deleted, outcome)

	outcome, err = e.Delete(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.NotFound, outcome)

	outcome, err = e.Delete(ctx, "never-existed")
	require.NoError(t, err)
	assert.Equal(t, domain.NotFound, outcome)
}

func TestUpdateUpserts(t *testing.T) {
	e := New()
	ctx := context.Background()

	doc := domain.SearchDocument{ID: "u1", Name: "Bàn phím cơ", Price: 1_000_000}
	require.NoError(t, e.Update(ctx, &doc))

	doc.Price = 900_000
	require.NoError(t, e.Update(ctx, &doc))

	result, err := e.Search(ctx, &domain.SearchQuery{Size: 10})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, 900_000.0, result.Hits[0].Price)
}

func TestBulkPartialFailure(t *testing.T) {
	e := New()

	docs := []domain.SearchDocument{
		{ID: "ok1", Name: "A"},
		{ID: "", Name: "broken"},
		{ID: "ok2", Name: "B"},
	}
	result, err := e.Bulk(context.Background(), docs)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Reason, "empty document id")

	search, err := e.Search(context.Background(), &domain.SearchQuery{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, search.Total)
}

func TestAutocomplete(t *testing.T) {
	e := seedEngine(t)
	ctx := context.Background()

	suggestions, err := e.Autocomplete(ctx, "lap", 10)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	for _, s := range suggestions {
		assert.Equal(t, 3.0, s.Score, "name word prefix scores highest")
	}

	// p4 matches both a name word and the brand; the name score wins.
	byBrand, err := e.Autocomplete(ctx, "logi", 10)
	require.NoError(t, err)
	require.Len(t, byBrand, 1)
	assert.Equal(t, "p4", byBrand[0].ID)
	assert.Equal(t, 3.0, byBrand[0].Score)

	none, err := e.Autocomplete(ctx, "zzz", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindSimilar(t *testing.T) {
	e := seedEngine(t)
	ctx := context.Background()

	hits, err := e.FindSimilar(ctx, "p1", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	// p2 shares category and a name term with p1, so it ranks first.
	assert.Equal(t, "p2", hits[0].ID)
	for _, h := range hits {
		assert.NotEqual(t, "p1", h.ID, "seed is excluded")
	}

	_, err = e.FindSimilar(ctx, "missing", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPopularTerms(t *testing.T) {
	e := seedEngine(t)

	categories, brands, err := e.PopularTerms(context.Background(), 10)
	require.NoError(t, err)

	require.NotEmpty(t, categories)
	assert.Equal(t, "Laptop", categories[0].Key)
	assert.Equal(t, 2, categories[0].Count)

	require.NotEmpty(t, brands)
	assert.Equal(t, "Apple", brands[0].Key)
	assert.Equal(t, 2, brands[0].Count)
}

func TestDropIndexClears(t *testing.T) {
	e := seedEngine(t)
	ctx := context.Background()

	require.NoError(t, e.DropIndex(ctx))
	result, err := e.Search(ctx, &domain.SearchQuery{Size: 10})
	require.NoError(t, err)
	assert.Zero(t, result.Total)
}
