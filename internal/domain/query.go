package domain

// Default pagination values for search queries.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchQuery holds all parameters for a product search request.
type SearchQuery struct {
	Query        string   `json:"query"`
	From         int      `json:"from"`
	Size         int      `json:"size"`
	Categories   []string `json:"categories,omitempty"`
	Brands       []string `json:"brands,omitempty"`
	MinPrice     *float64 `json:"minPrice,omitempty"`
	MaxPrice     *float64 `json:"maxPrice,omitempty"`
	InStock      bool     `json:"inStock"`
	SortBy       string   `json:"sortBy"`
	SortOrder    string   `json:"sortOrder"`
	Aggregations bool     `json:"aggregations"`
}

// Hit is a single search result: the indexed document plus query-dependent
// score and highlight fragments.
type Hit struct {
	SearchDocument
	Score      float64             `json:"score"`
	Highlights map[string][]string `json:"highlights,omitempty"`
}

// Bucket is a single facet bucket: a distinct field value and its document count.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// PriceRange is a named price band with its matched document count.
// From is inclusive, To is exclusive, following range aggregation semantics.
type PriceRange struct {
	Key   string   `json:"key"`
	From  *float64 `json:"from,omitempty"`
	To    *float64 `json:"to,omitempty"`
	Count int      `json:"count"`
}

// PriceBands are the five named price bands of the facet histogram, in VND.
// From is inclusive, To is exclusive: a product priced exactly 5,000,000
// lands in the "5 - 10 triệu" band.
var PriceBands = []PriceRange{
	{Key: "Dưới 5 triệu", To: bandBound(5000000)},
	{Key: "5 - 10 triệu", From: bandBound(5000000), To: bandBound(10000000)},
	{Key: "10 - 20 triệu", From: bandBound(10000000), To: bandBound(20000000)},
	{Key: "20 - 30 triệu", From: bandBound(20000000), To: bandBound(30000000)},
	{Key: "Trên 30 triệu", From: bandBound(30000000)},
}

func bandBound(v float64) *float64 { return &v }

// Facets is the aggregation breakdown computed over the matched document set.
type Facets struct {
	Categories   []Bucket     `json:"categories"`
	Brands       []Bucket     `json:"brands"`
	PriceRanges  []PriceRange `json:"priceRanges"`
	AvgPrice     float64      `json:"avgPrice"`
	InStockCount int          `json:"inStockCount"`
}

// SearchResult is the public search response envelope.
type SearchResult struct {
	Success  bool    `json:"success"`
	Hits     []Hit   `json:"hits"`
	Total    int     `json:"total"`
	Took     int     `json:"took"`
	MaxScore float64 `json:"maxScore"`
	Facets   *Facets `json:"facets,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Suggestion is a reduced product projection returned by autocomplete.
type Suggestion struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Score    float64 `json:"score"`
}

// SuggestResult is the autocomplete response envelope.
type SuggestResult struct {
	Success     bool         `json:"success"`
	Suggestions []Suggestion `json:"suggestions"`
	Error       string       `json:"error,omitempty"`
}

// SimilarResult is the similar-products response envelope.
type SimilarResult struct {
	Success  bool   `json:"success"`
	Products []Hit  `json:"products"`
	Error    string `json:"error,omitempty"`
}

// PopularTermsResult is the popular-terms response envelope.
type PopularTermsResult struct {
	Success    bool     `json:"success"`
	Categories []Bucket `json:"categories"`
	Brands     []Bucket `json:"brands"`
	Error      string   `json:"error,omitempty"`
}

// DeleteOutcome distinguishes an actual removal from an already-absent
// document. Both are successful deletes; the distinction exists for logging.
type DeleteOutcome int

const (
	Deleted DeleteOutcome = iota
	NotFound
)

func (o DeleteOutcome) String() string {
	if o == NotFound {
		return "not_found"
	}
	return "deleted"
}

// BulkFailure records one rejected document in a bulk request.
type BulkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BulkResult reports per-item outcomes of a bulk index request. A bulk
// request is not atomic: partial application is an expected outcome.
type BulkResult struct {
	SuccessCount int           `json:"successCount"`
	FailedCount  int           `json:"failedCount"`
	Failures     []BulkFailure `json:"failures,omitempty"`
}

// SyncReport summarizes a full catalog resync.
type SyncReport struct {
	Success       bool `json:"success"`
	TotalProducts int  `json:"totalProducts"`
	SuccessCount  int  `json:"successCount"`
	FailedCount   int  `json:"failedCount"`
}
