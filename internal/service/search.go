// Package service holds the application logic between the HTTP and
// event surfaces and the search engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/cache"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/domain"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/engine"
	apperrors "github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/errors"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/logger"
)

// MinSuggestPrefix is the shortest prefix that triggers a backend
// autocomplete call. Shorter input returns an empty successful result.
const MinSuggestPrefix = 2

// SearchService answers product search queries. Failures of the search
// backend degrade to an unsuccessful result envelope instead of
// propagating, so callers always have a well-formed response to serve.
type SearchService struct {
	engine engine.QueryEngine
	cache  *cache.Cache
	logger *slog.Logger
}

// NewSearchService creates a search service. cache may be nil.
func NewSearchService(eng engine.QueryEngine, c *cache.Cache, log *slog.Logger) *SearchService {
	return &SearchService{engine: eng, cache: c, logger: log}
}

// Search runs a full search query. The returned result is always
// non-nil; Success is false when the backend failed.
func (s *SearchService) Search(ctx context.Context, query *domain.SearchQuery) *domain.SearchResult {
	query.Query = strings.TrimSpace(query.Query)
	if query.Size <= 0 {
		query.Size = domain.DefaultPageSize
	}
	if query.Size > domain.MaxPageSize {
		query.Size = domain.MaxPageSize
	}
	if query.From < 0 {
		query.From = 0
	}

	result, err := s.engine.Search(ctx, query)
	if err != nil {
		logger.WithContext(ctx, s.logger).Error("search failed",
			slog.String("query", query.Query),
			slog.String("error", err.Error()),
		)
		return &domain.SearchResult{
			Success: false,
			Hits:    []domain.Hit{},
			Error:   "search is temporarily unavailable",
		}
	}
	if result.Hits == nil {
		result.Hits = []domain.Hit{}
	}
	return result
}

// Suggest returns autocomplete suggestions for a prefix. Prefixes
// shorter than MinSuggestPrefix succeed with an empty list and never
// reach the backend.
func (s *SearchService) Suggest(ctx context.Context, prefix string, limit int) *domain.SuggestResult {
	prefix = strings.TrimSpace(prefix)
	if utf8.RuneCountInString(prefix) < MinSuggestPrefix {
		return &domain.SuggestResult{Success: true, Suggestions: []domain.Suggestion{}}
	}
	if limit <= 0 {
		limit = 10
	}

	key := fmt.Sprintf("suggest:%s:%d", strings.ToLower(prefix), limit)
	var cached []domain.Suggestion
	if s.cache.Get(ctx, key, &cached) {
		return &domain.SuggestResult{Success: true, Suggestions: cached}
	}

	suggestions, err := s.engine.Autocomplete(ctx, prefix, limit)
	if err != nil {
		logger.WithContext(ctx, s.logger).Error("autocomplete failed",
			slog.String("prefix", prefix),
			slog.String("error", err.Error()),
		)
		return &domain.SuggestResult{
			Success:     false,
			Suggestions: []domain.Suggestion{},
			Error:       "suggestions are temporarily unavailable",
		}
	}
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}
	s.cache.Set(ctx, key, suggestions)
	return &domain.SuggestResult{Success: true, Suggestions: suggestions}
}

// Similar returns products similar to the seed document. A missing seed
// is reported as a not-found error so the transport can answer 404;
// backend failures degrade like Search.
func (s *SearchService) Similar(ctx context.Context, id string, limit int) (*domain.SimilarResult, error) {
	if limit <= 0 {
		limit = 10
	}

	hits, err := s.engine.FindSimilar(ctx, id, limit)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		logger.WithContext(ctx, s.logger).Error("similar products failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return &domain.SimilarResult{
			Success:  false,
			Products: []domain.Hit{},
			Error:    "similar products are temporarily unavailable",
		}, nil
	}
	if hits == nil {
		hits = []domain.Hit{}
	}
	return &domain.SimilarResult{Success: true, Products: hits}, nil
}

// Popular returns the most frequent categories and brands in the index.
func (s *SearchService) Popular(ctx context.Context, limit int) *domain.PopularTermsResult {
	if limit <= 0 {
		limit = 10
	}

	key := fmt.Sprintf("popular:%d", limit)
	var cached domain.PopularTermsResult
	if s.cache.Get(ctx, key, &cached) {
		return &cached
	}

	categories, brands, err := s.engine.PopularTerms(ctx, limit)
	if err != nil {
		logger.WithContext(ctx, s.logger).Error("popular terms failed",
			slog.String("error", err.Error()),
		)
		return &domain.PopularTermsResult{
			Success:    false,
			Categories: []domain.Bucket{},
			Brands:     []domain.Bucket{},
			Error:      "popular terms are temporarily unavailable",
		}
	}
	if categories == nil {
		categories = []domain.Bucket{}
	}
	if brands == nil {
		brands = []domain.Bucket{}
	}

	result := &domain.PopularTermsResult{Success: true, Categories: categories, Brands: brands}
	s.cache.Set(ctx, key, result)
	return result
}
