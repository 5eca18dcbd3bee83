package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/domain"
	apperrors "github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/errors"
)

// Engine is an in-memory implementation of the SearchEngine interface used
// in unit tests and as a development fallback. Matching is simple substring
// and prefix containment; scoring approximates the field boosts of the
// Elasticsearch engine closely enough to exercise the service layer.
// Thread-safe via sync.RWMutex.
type Engine struct {
	mu   sync.RWMutex
	docs map[string]domain.SearchDocument
}

// New creates a new in-memory search engine.
func New() *Engine {
	return &Engine{
		docs: make(map[string]domain.SearchDocument),
	}
}

// Ping always succeeds.
func (e *Engine) Ping(context.Context) error { return nil }

// EnsureIndex is a no-op for the in-memory engine.
func (e *Engine) EnsureIndex(context.Context) error { return nil }

// DropIndex clears all documents.
func (e *Engine) DropIndex(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs = make(map[string]domain.SearchDocument)
	return nil
}

// Index adds or fully replaces a single document.
func (e *Engine) Index(_ context.Context, doc *domain.SearchDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("memory index: %w: empty document id", apperrors.ErrInvalidInput)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs[doc.ID] = *doc
	return nil
}

// Update upserts a document. The transformer always produces complete
// documents, so a full replace gives the same observable result.
func (e *Engine) Update(ctx context.Context, doc *domain.SearchDocument) error {
	return e.Index(ctx, doc)
}

// Delete removes a document by ID, reporting whether it existed.
func (e *Engine) Delete(_ context.Context, id string) (domain.DeleteOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.docs[id]; !ok {
		return domain.NotFound, nil
	}
	delete(e.docs, id)
	return domain.Deleted, nil
}

// Bulk indexes documents one by one, collecting per-item failures the way
// the Elasticsearch bulk API reports them.
func (e *Engine) Bulk(_ context.Context, docs []domain.SearchDocument) (*domain.BulkResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := &domain.BulkResult{}
	for i := range docs {
		if docs[i].ID == "" {
			result.FailedCount++
			result.Failures = append(result.Failures, domain.BulkFailure{
				ID:     docs[i].ID,
				Reason: "mapper_parsing_exception: empty document id",
			})
			continue
		}
		e.docs[docs[i].ID] = docs[i]
		result.SuccessCount++
	}
	return result, nil
}

// Search executes a query against the in-memory index.
func (e *Engine) Search(_ context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	queryLower := strings.ToLower(strings.TrimSpace(query.Query))

	var matched []domain.Hit
	for _, doc := range e.docs {
		if !matchesFilters(doc, query) {
			continue
		}
		score, highlights := scoreText(doc, queryLower)
		if queryLower != "" && score == 0 {
			continue
		}
		matched = append(matched, domain.Hit{
			SearchDocument: doc,
			Score:          score,
			Highlights:     highlights,
		})
	}

	sortHits(matched, query.SortBy, query.SortOrder)

	total := len(matched)
	var maxScore float64
	for _, h := range matched {
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}

	var facets *domain.Facets
	if query.Aggregations {
		facets = computeFacets(matched)
	}

	from := query.From
	if from > total {
		from = total
	}
	size := query.Size
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	end := from + size
	if end > total {
		end = total
	}

	page := matched[from:end]
	if page == nil {
		page = []domain.Hit{}
	}

	return &domain.SearchResult{
		Success:  true,
		Hits:     page,
		Total:    total,
		MaxScore: maxScore,
		Facets:   facets,
	}, nil
}

// Autocomplete returns prefix-matched suggestions ranked by field weight.
func (e *Engine) Autocomplete(_ context.Context, prefix string, limit int) ([]domain.Suggestion, error) {
	if limit <= 0 {
		limit = 10
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	prefixLower := strings.ToLower(strings.TrimSpace(prefix))
	var suggestions []domain.Suggestion

	for _, doc := range e.docs {
		var score float64
		for _, word := range strings.Fields(strings.ToLower(doc.Name)) {
			if strings.HasPrefix(word, prefixLower) {
				score = 3
				break
			}
		}
		if score == 0 && strings.HasPrefix(strings.ToLower(doc.Brand), prefixLower) {
			score = 2
		}
		if score == 0 && strings.HasPrefix(strings.ToLower(doc.Category), prefixLower) {
			score = 1.5
		}
		if score == 0 {
			continue
		}

		suggestions = append(suggestions, domain.Suggestion{
			ID:       doc.ID,
			Name:     doc.Name,
			Category: doc.Category,
			Brand:    doc.Brand,
			Price:    doc.Price,
			Image:    doc.Image,
			Score:    score,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}
	return suggestions, nil
}

// FindSimilar ranks documents by shared category (weight 3), shared brand
// (weight 2), and overlapping name terms. A missing seed is a hard failure.
func (e *Engine) FindSimilar(_ context.Context, id string, limit int) ([]domain.Hit, error) {
	if limit <= 0 {
		limit = 10
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	seed, ok := e.docs[id]
	if !ok {
		return nil, fmt.Errorf("similar seed %s: %w", id, apperrors.ErrNotFound)
	}

	seedWords := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(seed.Name)) {
		seedWords[w] = struct{}{}
	}

	var hits []domain.Hit
	for docID, doc := range e.docs {
		if docID == id {
			continue
		}
		var score float64
		if doc.Category != "" && doc.Category == seed.Category {
			score += 3
		}
		if doc.Brand != "" && doc.Brand == seed.Brand {
			score += 2
		}
		for _, w := range strings.Fields(strings.ToLower(doc.Name)) {
			if _, shared := seedWords[w]; shared {
				score++
				break
			}
		}
		if score == 0 {
			continue
		}
		hits = append(hits, domain.Hit{SearchDocument: doc, Score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	if hits == nil {
		hits = []domain.Hit{}
	}
	return hits, nil
}

// PopularTerms counts category and brand frequencies, descending by count.
func (e *Engine) PopularTerms(_ context.Context, limit int) ([]domain.Bucket, []domain.Bucket, error) {
	if limit <= 0 {
		limit = 10
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	categoryCounts := make(map[string]int)
	brandCounts := make(map[string]int)
	for _, doc := range e.docs {
		if doc.Category != "" {
			categoryCounts[doc.Category]++
		}
		if doc.Brand != "" {
			brandCounts[doc.Brand]++
		}
	}

	return topBuckets(categoryCounts, limit), topBuckets(brandCounts, limit), nil
}

func topBuckets(counts map[string]int, limit int) []domain.Bucket {
	buckets := make([]domain.Bucket, 0, len(counts))
	for k, c := range counts {
		buckets = append(buckets, domain.Bucket{Key: k, Count: c})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	if len(buckets) > limit {
		buckets = buckets[:limit]
	}
	return buckets
}

// matchesFilters applies the non-scoring filters.
func matchesFilters(doc domain.SearchDocument, query *domain.SearchQuery) bool {
	if len(query.Categories) > 0 && !containsString(query.Categories, doc.Category) {
		return false
	}
	if len(query.Brands) > 0 && !containsString(query.Brands, doc.Brand) {
		return false
	}
	if query.MinPrice != nil && doc.Price < *query.MinPrice {
		return false
	}
	if query.MaxPrice != nil && doc.Price > *query.MaxPrice {
		return false
	}
	if query.InStock {
		if doc.Stock <= 0 || doc.Availability != domain.AvailabilityInStock {
			return false
		}
	}
	return true
}

// scoreText approximates the weighted multi-field match: name hits score
// highest, then brand, then category, then description/searchText.
func scoreText(doc domain.SearchDocument, queryLower string) (float64, map[string][]string) {
	if queryLower == "" {
		return 0, nil
	}

	var score float64
	highlights := make(map[string][]string)

	if strings.Contains(strings.ToLower(doc.Name), queryLower) {
		score += 3
		highlights["name"] = []string{highlight(doc.Name, queryLower)}
	}
	if strings.Contains(strings.ToLower(doc.Brand), queryLower) {
		score += 2
	}
	if strings.Contains(strings.ToLower(doc.Category), queryLower) {
		score += 1.5
	}
	if strings.Contains(strings.ToLower(doc.Description), queryLower) {
		score++
		highlights["description"] = []string{highlight(doc.Description, queryLower)}
	}
	if score == 0 && strings.Contains(doc.SearchText, queryLower) {
		score = 1
	}

	if len(highlights) == 0 {
		highlights = nil
	}
	return score, highlights
}

// highlight wraps the first occurrence of the query in emphasis tags.
func highlight(text, queryLower string) string {
	idx := strings.Index(strings.ToLower(text), queryLower)
	if idx < 0 {
		return text
	}
	end := idx + len(queryLower)
	return text[:idx] + "<em>" + text[idx:end] + "</em>" + text[end:]
}

func sortHits(hits []domain.Hit, sortBy, sortOrder string) {
	asc := sortOrder == domain.OrderAsc

	switch sortBy {
	case domain.SortPrice:
		sort.SliceStable(hits, func(i, j int) bool {
			if asc {
				return hits[i].Price < hits[j].Price
			}
			return hits[i].Price > hits[j].Price
		})
	case domain.SortName:
		sort.SliceStable(hits, func(i, j int) bool {
			if asc {
				return hits[i].Name < hits[j].Name
			}
			return hits[i].Name > hits[j].Name
		})
	case domain.SortCreatedAt:
		sort.SliceStable(hits, func(i, j int) bool {
			if asc {
				return hits[i].CreatedAt.Before(hits[j].CreatedAt)
			}
			return hits[i].CreatedAt.After(hits[j].CreatedAt)
		})
	case domain.SortPopularity:
		// Popularity ignores the requested order: most reviewed first,
		// rating breaks ties.
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].ReviewCount != hits[j].ReviewCount {
				return hits[i].ReviewCount > hits[j].ReviewCount
			}
			return hits[i].Rating > hits[j].Rating
		})
	default:
		sort.SliceStable(hits, func(i, j int) bool {
			return hits[i].Score > hits[j].Score
		})
	}
}

// computeFacets mirrors the Elasticsearch aggregation semantics: top-20
// categories, top-30 brands, the shared price bands (inclusive lower,
// exclusive upper), average price, and in-stock count.
func computeFacets(hits []domain.Hit) *domain.Facets {
	categoryCounts := make(map[string]int)
	brandCounts := make(map[string]int)

	ranges := make([]domain.PriceRange, len(domain.PriceBands))
	copy(ranges, domain.PriceBands)

	var priceSum float64
	inStock := 0

	for _, h := range hits {
		if h.Category != "" {
			categoryCounts[h.Category]++
		}
		if h.Brand != "" {
			brandCounts[h.Brand]++
		}
		priceSum += h.Price
		if h.Stock > 0 && h.Availability == domain.AvailabilityInStock {
			inStock++
		}
		for i := range ranges {
			if ranges[i].From != nil && h.Price < *ranges[i].From {
				continue
			}
			if ranges[i].To != nil && h.Price >= *ranges[i].To {
				continue
			}
			ranges[i].Count++
		}
	}

	avg := 0.0
	if len(hits) > 0 {
		avg = priceSum / float64(len(hits))
	}

	return &domain.Facets{
		Categories:   topBuckets(categoryCounts, 20),
		Brands:       topBuckets(brandCounts, 30),
		PriceRanges:  ranges,
		AvgPrice:     avg,
		InStockCount: inStock,
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
