package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/domain"
)

// searchFields are the weighted targets for the main multi-match query.
// Name dominates, with the autocomplete sub-field and brand next, so that a
// product called "Laptop Acer" outranks one merely mentioning laptops in its
// description.
var searchFields = []string{
	"name^3",
	"name.autocomplete^2",
	"brand^2",
	"category.text^1.5",
	"description^1",
	"searchText^1",
}

// esSearchResponse decodes an Elasticsearch search response, including the
// aggregations this engine requests.
type esSearchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []esHit  `json:"hits"`
	} `json:"hits"`
	Aggregations struct {
		Categories  termsAgg `json:"categories"`
		Brands      termsAgg `json:"brands"`
		PriceRanges struct {
			Buckets []struct {
				Key      string   `json:"key"`
				From     *float64 `json:"from"`
				To       *float64 `json:"to"`
				DocCount int      `json:"doc_count"`
			} `json:"buckets"`
		} `json:"price_ranges"`
		AvgPrice struct {
			Value *float64 `json:"value"`
		} `json:"avg_price"`
		InStock struct {
			DocCount int `json:"doc_count"`
		} `json:"in_stock"`
	} `json:"aggregations"`
}

type esHit struct {
	ID        string                `json:"_id"`
	Score     *float64              `json:"_score"`
	Source    domain.SearchDocument `json:"_source"`
	Highlight map[string][]string   `json:"highlight"`
}

type termsAgg struct {
	Buckets []struct {
		Key      string `json:"key"`
		DocCount int    `json:"doc_count"`
	} `json:"buckets"`
}

// Search executes a product search and shapes hits, facets, and highlights.
func (e *Engine) Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	esQuery := e.buildSearchQuery(query)

	data, err := json.Marshal(esQuery)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search: %s", decodeError(res.Body, res.Status()))
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	hits := make([]domain.Hit, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		h := domain.Hit{
			SearchDocument: hit.Source,
			Highlights:     hit.Highlight,
		}
		if hit.Score != nil {
			h.Score = *hit.Score
		}
		hits = append(hits, h)
	}

	result := &domain.SearchResult{
		Success: true,
		Hits:    hits,
		Total:   esResp.Hits.Total.Value,
		Took:    esResp.Took,
	}
	if esResp.Hits.MaxScore != nil {
		result.MaxScore = *esResp.Hits.MaxScore
	}
	if query.Aggregations {
		result.Facets = decodeFacets(&esResp)
	}

	return result, nil
}

// buildSearchQuery constructs the Elasticsearch query DSL as a map.
func (e *Engine) buildSearchQuery(query *domain.SearchQuery) map[string]any {
	// A whitespace-only query would analyze to zero tokens and match
	// nothing, so emptiness is decided on the trimmed text.
	queryText := strings.TrimSpace(query.Query)

	var mustClause any
	if queryText != "" {
		mustClause = map[string]any{
			"multi_match": map[string]any{
				"query":     queryText,
				"fields":    searchFields,
				"type":      "best_fields",
				"fuzziness": "AUTO",
				// Require the first two characters to match exactly so
				// short words are not fuzzed into nonsense, and the fuzzy
				// candidate set stays bounded.
				"prefix_length": 2,
			},
		}
	} else {
		// Empty query: match everything so filter-only browsing and
		// facet-only requests still work.
		mustClause = map[string]any{
			"match_all": map[string]any{},
		}
	}

	boolQuery := map[string]any{
		"must": []any{mustClause},
	}
	if filters := buildFilters(query); len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	esQuery := map[string]any{
		"query": map[string]any{
			"bool": boolQuery,
		},
		"from":             query.From,
		"size":             query.Size,
		"track_total_hits": true,
		"highlight": map[string]any{
			"pre_tags":  []string{"<em>"},
			"post_tags": []string{"</em>"},
			"fields": map[string]any{
				"name":        map[string]any{},
				"description": map[string]any{},
			},
		},
	}

	if sortClause := buildSort(query.SortBy, query.SortOrder); sortClause != nil {
		esQuery["sort"] = sortClause
	}

	if query.Aggregations {
		esQuery["aggs"] = buildAggregations()
	}

	return esQuery
}

// buildFilters constructs the non-scoring filter clauses. Filters restrict
// the matched set without contributing to relevance.
func buildFilters(query *domain.SearchQuery) []any {
	var filters []any

	if len(query.Categories) > 0 {
		filters = append(filters, map[string]any{
			"terms": map[string]any{"category": query.Categories},
		})
	}

	if len(query.Brands) > 0 {
		filters = append(filters, map[string]any{
			"terms": map[string]any{"brand": query.Brands},
		})
	}

	if query.MinPrice != nil || query.MaxPrice != nil {
		rangeFilter := map[string]any{}
		if query.MinPrice != nil {
			rangeFilter["gte"] = *query.MinPrice
		}
		if query.MaxPrice != nil {
			rangeFilter["lte"] = *query.MaxPrice
		}
		filters = append(filters, map[string]any{
			"range": map[string]any{"price": rangeFilter},
		})
	}

	if query.InStock {
		filters = append(filters,
			map[string]any{"range": map[string]any{"stock": map[string]any{"gt": 0}}},
			map[string]any{"term": map[string]any{"availability": domain.AvailabilityInStock}},
		)
	}

	return filters
}

// buildSort constructs the sort clause based on the sort option.
// Popularity ignores the requested order: it always means most-reviewed,
// best-rated first.
func buildSort(sortBy, sortOrder string) []any {
	order := domain.OrderDesc
	if sortOrder == domain.OrderAsc {
		order = domain.OrderAsc
	}

	switch sortBy {
	case domain.SortPrice:
		return []any{map[string]any{"price": order}}
	case domain.SortName:
		return []any{map[string]any{"name.keyword": order}}
	case domain.SortCreatedAt:
		return []any{map[string]any{"createdAt": order}}
	case domain.SortPopularity:
		return []any{
			map[string]any{"reviewCount": "desc"},
			map[string]any{"rating": "desc"},
		}
	default:
		// Relevance: default ES scoring.
		return []any{map[string]any{"_score": "desc"}}
	}
}

// buildAggregations constructs the facet aggregations: top categories and
// brands, the named price histogram, average price, and in-stock count.
func buildAggregations() map[string]any {
	ranges := make([]map[string]any, 0, len(domain.PriceBands))
	for _, band := range domain.PriceBands {
		r := map[string]any{"key": band.Key}
		if band.From != nil {
			r["from"] = *band.From
		}
		if band.To != nil {
			r["to"] = *band.To
		}
		ranges = append(ranges, r)
	}

	return map[string]any{
		"categories": map[string]any{
			"terms": map[string]any{"field": "category", "size": 20},
		},
		"brands": map[string]any{
			"terms": map[string]any{"field": "brand", "size": 30},
		},
		"price_ranges": map[string]any{
			"range": map[string]any{"field": "price", "ranges": ranges},
		},
		"avg_price": map[string]any{
			"avg": map[string]any{"field": "price"},
		},
		"in_stock": map[string]any{
			"filter": map[string]any{
				"bool": map[string]any{
					"must": []any{
						map[string]any{"range": map[string]any{"stock": map[string]any{"gt": 0}}},
						map[string]any{"term": map[string]any{"availability": domain.AvailabilityInStock}},
					},
				},
			},
		},
	}
}

// decodeFacets shapes the raw aggregation response into the facet envelope.
func decodeFacets(resp *esSearchResponse) *domain.Facets {
	facets := &domain.Facets{
		Categories:   make([]domain.Bucket, 0, len(resp.Aggregations.Categories.Buckets)),
		Brands:       make([]domain.Bucket, 0, len(resp.Aggregations.Brands.Buckets)),
		PriceRanges:  make([]domain.PriceRange, 0, len(resp.Aggregations.PriceRanges.Buckets)),
		InStockCount: resp.Aggregations.InStock.DocCount,
	}

	for _, b := range resp.Aggregations.Categories.Buckets {
		facets.Categories = append(facets.Categories, domain.Bucket{Key: b.Key, Count: b.DocCount})
	}
	for _, b := range resp.Aggregations.Brands.Buckets {
		facets.Brands = append(facets.Brands, domain.Bucket{Key: b.Key, Count: b.DocCount})
	}
	for _, b := range resp.Aggregations.PriceRanges.Buckets {
		facets.PriceRanges = append(facets.PriceRanges, domain.PriceRange{
			Key:   b.Key,
			From:  b.From,
			To:    b.To,
			Count: b.DocCount,
		})
	}
	if resp.Aggregations.AvgPrice.Value != nil {
		facets.AvgPrice = *resp.Aggregations.AvgPrice.Value
	}

	return facets
}
