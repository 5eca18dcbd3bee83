package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/domain"
)

// PopularTerms returns category and brand term frequencies across the whole
// index, descending by document count. The query is aggregation-only: no
// hits are fetched.
func (e *Engine) PopularTerms(ctx context.Context, limit int) ([]domain.Bucket, []domain.Bucket, error) {
	if limit <= 0 {
		limit = 10
	}

	query := map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"categories": map[string]any{
				"terms": map[string]any{"field": "category", "size": limit},
			},
			"brands": map[string]any{
				"terms": map[string]any{"field": "brand", "size": limit},
			},
		},
	}

	data, err := json.Marshal(query)
	if err != nil {
		return nil, nil, fmt.Errorf("elasticsearch popular terms: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("elasticsearch popular terms: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, nil, fmt.Errorf("elasticsearch popular terms: %s", decodeError(res.Body, res.Status()))
	}

	var esResp struct {
		Aggregations struct {
			Categories termsAgg `json:"categories"`
			Brands     termsAgg `json:"brands"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, nil, fmt.Errorf("elasticsearch popular terms: decode response: %w", err)
	}

	categories := make([]domain.Bucket, 0, len(esResp.Aggregations.Categories.Buckets))
	for _, b := range esResp.Aggregations.Categories.Buckets {
		categories = append(categories, domain.Bucket{Key: b.Key, Count: b.DocCount})
	}
	brands := make([]domain.Bucket, 0, len(esResp.Aggregations.Brands.Buckets))
	for _, b := range esResp.Aggregations.Brands.Buckets {
		brands = append(brands, domain.Bucket{Key: b.Key, Count: b.DocCount})
	}

	return categories, brands, nil
}
