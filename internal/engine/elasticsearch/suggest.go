package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/domain"
)

// esSuggestResponse decodes the reduced-projection autocomplete response.
type esSuggestResponse struct {
	Hits struct {
		Hits []struct {
			ID     string   `json:"_id"`
			Score  *float64 `json:"_score"`
			Source struct {
				Name     string  `json:"name"`
				Category string  `json:"category"`
				Brand    string  `json:"brand"`
				Price    float64 `json:"price"`
				Image    string  `json:"image"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Autocomplete returns prefix suggestions for the given text. The caller is
// responsible for the minimum-length guard; this method always queries.
func (e *Engine) Autocomplete(ctx context.Context, prefix string, limit int) ([]domain.Suggestion, error) {
	if limit <= 0 {
		limit = 10
	}

	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should": []any{
					map[string]any{
						"match": map[string]any{
							"name.autocomplete": map[string]any{"query": prefix, "boost": 3},
						},
					},
					map[string]any{
						"match": map[string]any{
							"brand": map[string]any{"query": prefix, "boost": 2},
						},
					},
					map[string]any{
						"match": map[string]any{
							"category.text": map[string]any{"query": prefix, "boost": 1.5},
						},
					},
				},
				"minimum_should_match": 1,
			},
		},
		"size":    limit,
		"_source": []string{"name", "category", "brand", "price", "image"},
	}

	data, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch suggest: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch suggest: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch suggest: %s", decodeError(res.Body, res.Status()))
	}

	var esResp esSuggestResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch suggest: decode response: %w", err)
	}

	suggestions := make([]domain.Suggestion, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		s := domain.Suggestion{
			ID:       hit.ID,
			Name:     hit.Source.Name,
			Category: hit.Source.Category,
			Brand:    hit.Source.Brand,
			Price:    hit.Source.Price,
			Image:    hit.Source.Image,
		}
		if hit.Score != nil {
			s.Score = *hit.Score
		}
		suggestions = append(suggestions, s)
	}

	return suggestions, nil
}
