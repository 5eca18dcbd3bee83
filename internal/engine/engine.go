package engine

import (
	"context"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/domain"
)

// SyncEngine keeps the search index consistent with the catalog.
// Implementations may use Elasticsearch, in-memory storage, or other backends.
type SyncEngine interface {
	// EnsureIndex creates the index with its mapping if it does not exist.
	EnsureIndex(ctx context.Context) error

	// DropIndex removes the index. A missing index is treated as success.
	DropIndex(ctx context.Context) error

	// Index adds or fully replaces a single document.
	Index(ctx context.Context, doc *domain.SearchDocument) error

	// Update applies the document as a partial update, inserting it if absent.
	Update(ctx context.Context, doc *domain.SearchDocument) error

	// Delete removes a document by ID. Deleting an absent document is not an
	// error; the outcome reports whether it existed.
	Delete(ctx context.Context, id string) (domain.DeleteOutcome, error)

	// Bulk indexes multiple documents in one round trip, reporting per-item
	// outcomes. One rejected document must not abort the batch.
	Bulk(ctx context.Context, docs []domain.SearchDocument) (*domain.BulkResult, error)
}

// QueryEngine serves ranked, faceted, typo-tolerant product search.
type QueryEngine interface {
	// Search executes a search query and returns ranked hits with optional facets.
	Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error)

	// Autocomplete returns prefix-match suggestions for the given text.
	Autocomplete(ctx context.Context, prefix string, limit int) ([]domain.Suggestion, error)

	// FindSimilar returns products similar to the given seed document.
	// A missing seed is a hard failure (domain-level not found).
	FindSimilar(ctx context.Context, id string, limit int) ([]domain.Hit, error)

	// PopularTerms returns category/brand term frequencies across the index.
	PopularTerms(ctx context.Context, limit int) ([]domain.Bucket, []domain.Bucket, error)
}

// SearchEngine is the full contract the search service depends on.
type SearchEngine interface {
	SyncEngine
	QueryEngine

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
