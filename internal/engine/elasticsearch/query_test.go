package elasticsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/domain"
)

func mustClause(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	boolQuery, ok := body["query"].(map[string]any)["bool"].(map[string]any)
	require.True(t, ok)
	must, ok := boolQuery["must"].([]any)
	require.True(t, ok)
	require.Len(t, must, 1)
	clause, ok := must[0].(map[string]any)
	require.True(t, ok)
	return clause
}

func TestBuildSearchQueryBlankTextMatchesAll(t *testing.T) {
	e := &Engine{indexName: DefaultIndexName}

	// Whitespace-only input is browsing, not searching: it must fall back
	// to match_all exactly like the empty string does.
	for _, q := range []string{"", "   ", "\t\n "} {
		clause := mustClause(t, e.buildSearchQuery(&domain.SearchQuery{Query: q, Size: 10}))
		_, isMatchAll := clause["match_all"]
		assert.True(t, isMatchAll, "query %q should build match_all, got %v", q, clause)
	}
}

func TestBuildSearchQueryTrimsText(t *testing.T) {
	e := &Engine{indexName: DefaultIndexName}

	clause := mustClause(t, e.buildSearchQuery(&domain.SearchQuery{Query: "  laptop  ", Size: 10}))
	multiMatch, ok := clause["multi_match"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "laptop", multiMatch["query"])
	assert.Equal(t, searchFields, multiMatch["fields"])
}

func TestBuildSearchQueryFilters(t *testing.T) {
	e := &Engine{indexName: DefaultIndexName}
	min, max := 5_000_000.0, 10_000_000.0

	body := e.buildSearchQuery(&domain.SearchQuery{
		Categories: []string{"Laptop"},
		MinPrice:   &min,
		MaxPrice:   &max,
		InStock:    true,
		Size:       10,
	})

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	filters, ok := boolQuery["filter"].([]any)
	require.True(t, ok)
	// terms, range on price, and the two in-stock clauses.
	assert.Len(t, filters, 4)
}
