// Package catalog defines the port to the primary product store. The
// search index is a derived view; this package is how it reads the
// source of truth and observes changes to it.
package catalog

import "context"

// Product is a raw catalog record. Data carries the stored fields
// untyped so the document transformer owns all coercion rules.
type Product struct {
	ID   string
	Data map[string]any
}

// ChangeKind classifies a catalog change event.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeRemoved
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeModified:
		return "modified"
	case ChangeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is a single catalog mutation. Data is nil for removals.
type Change struct {
	Kind ChangeKind
	ID   string
	Data map[string]any
}

// Store reads products from the primary store.
type Store interface {
	// FetchAll returns every product in the catalog.
	FetchAll(ctx context.Context) ([]Product, error)

	// FetchByID returns a single product, or a not-found error.
	FetchByID(ctx context.Context, id string) (*Product, error)

	// Subscribe streams change batches until ctx is cancelled. The
	// returned channel is closed when the subscription ends; the caller
	// owns the consuming goroutine.
	Subscribe(ctx context.Context) (<-chan []Change, error)
}
