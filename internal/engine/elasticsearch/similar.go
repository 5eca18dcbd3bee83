package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/domain"
)

// FindSimilar returns products similar to the seed document: same category
// first, same brand second, then textual overlap on name/description/tags via
// a more-like-this clause seeded with the stored document. The seed itself is
// excluded from results.
//
// A missing seed is a hard failure (wrapping apperrors.ErrNotFound): there is
// no sensible notion of similarity without one.
func (e *Engine) FindSimilar(ctx context.Context, id string, limit int) ([]domain.Hit, error) {
	if limit <= 0 {
		limit = 10
	}

	seed, err := e.getDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	should := []any{
		map[string]any{
			"term": map[string]any{
				"category": map[string]any{"value": seed.Category, "boost": 3},
			},
		},
		map[string]any{
			"term": map[string]any{
				"brand": map[string]any{"value": seed.Brand, "boost": 2},
			},
		},
		map[string]any{
			"more_like_this": map[string]any{
				"fields": []string{"name", "description", "tags"},
				"like": []any{
					map[string]any{"_index": e.indexName, "_id": id},
				},
				"min_term_freq": 1,
				"min_doc_freq":  1,
			},
		},
	}

	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
				"must_not": []any{
					map[string]any{"ids": map[string]any{"values": []string{id}}},
				},
			},
		},
		"size": limit,
	}

	data, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch similar: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch similar: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch similar: %s", decodeError(res.Body, res.Status()))
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch similar: decode response: %w", err)
	}

	hits := make([]domain.Hit, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		h := domain.Hit{SearchDocument: hit.Source}
		if hit.Score != nil {
			h.Score = *hit.Score
		}
		hits = append(hits, h)
	}

	return hits, nil
}
