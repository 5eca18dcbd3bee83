package domain

import (
	"time"
)

// Availability states for a product.
const (
	AvailabilityInStock    = "in-stock"
	AvailabilityOutOfStock = "out-of-stock"
	AvailabilityPreOrder   = "pre-order"
)

// SearchDocument is a product document as it lives in the search index.
// It is a normalized projection of a catalog record: the catalog is the
// source of truth and the index is rebuildable from it at any time.
type SearchDocument struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Category       string         `json:"category"`
	Brand          string         `json:"brand"`
	Price          float64        `json:"price"`
	OriginalPrice  float64        `json:"originalPrice"`
	Stock          int            `json:"stock"`
	Rating         float64        `json:"rating"`
	ReviewCount    int            `json:"reviewCount"`
	Discount       float64        `json:"discount"`
	Availability   string         `json:"availability"`
	Image          string         `json:"image"`
	Images         []string       `json:"images"`
	Specifications map[string]any `json:"specifications"`
	Tags           []string       `json:"tags"`
	IsNew          bool           `json:"isNew"`
	IsBestSeller   bool           `json:"isBestSeller"`
	IsFeatured     bool           `json:"isFeatured"`
	SearchText     string         `json:"searchText"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Sort options for search results.
const (
	SortRelevance  = "relevance"
	SortPrice      = "price"
	SortName       = "name"
	SortCreatedAt  = "createdAt"
	SortPopularity = "popularity"
)

// Sort orders.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ValidSortOptions returns the list of valid sort options.
func ValidSortOptions() []string {
	return []string{SortRelevance, SortPrice, SortName, SortCreatedAt, SortPopularity}
}

// IsValidSort checks whether the given sort string is a valid sort option.
func IsValidSort(sort string) bool {
	for _, s := range ValidSortOptions() {
		if s == sort {
			return true
		}
	}
	return false
}
