package domain

import (
	"strconv"
	"strings"
	"time"
)

// TransformProduct maps a raw catalog record into a SearchDocument.
//
// It is pure and total: malformed or missing fields degrade to zero values
// instead of failing, so a single bad record can never poison a sync run.
// The document ID always equals the catalog record ID.
func TransformProduct(id string, record map[string]any) SearchDocument {
	now := time.Now().UTC()

	doc := SearchDocument{
		ID:             id,
		Name:           toString(record["name"]),
		Description:    toString(record["description"]),
		Category:       toString(record["category"]),
		Brand:          toString(record["brand"]),
		Price:          toFloat(record["price"]),
		OriginalPrice:  toFloat(record["originalPrice"]),
		Stock:          toInt(record["stock"]),
		Rating:         toFloat(record["rating"]),
		ReviewCount:    toInt(record["reviewCount"]),
		Discount:       toFloat(record["discount"]),
		Availability:   toString(record["availability"]),
		Image:          toString(record["image"]),
		Images:         toStringSlice(record["images"]),
		Specifications: toMap(record["specifications"]),
		Tags:           toStringSlice(record["tags"]),
		IsNew:          toBool(record["isNew"]),
		IsBestSeller:   toBool(record["isBestSeller"]),
		IsFeatured:     toBool(record["isFeatured"]),
		CreatedAt:      toTime(record["createdAt"], now),
		UpdatedAt:      toTime(record["updatedAt"], now),
	}

	if doc.Availability == "" {
		doc.Availability = AvailabilityInStock
	}

	doc.SearchText = buildSearchText(doc)

	return doc
}

// buildSearchText derives the full-text fallback field: a lowercase
// concatenation of name, description, category, brand, and tags.
func buildSearchText(doc SearchDocument) string {
	parts := []string{
		doc.Name,
		doc.Description,
		doc.Category,
		doc.Brand,
		strings.Join(doc.Tags, " "),
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}

func toStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		out := make([]string, len(s))
		copy(out, s)
		return out
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return []string{}
	}
}

func toMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func toTime(v any, fallback time.Time) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
		return fallback
	case float64:
		return epochToTime(int64(t))
	case int64:
		return epochToTime(t)
	default:
		return fallback
	}
}

// epochToTime interprets a numeric timestamp as milliseconds when it is too
// large to be a plausible seconds value.
func epochToTime(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
