// Package memory implements the catalog store in process memory for
// tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/catalog"
	apperrors "github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/errors"
)

// Store holds products in a map and fans change batches out to
// subscribers.
type Store struct {
	mu       sync.RWMutex
	products map[string]map[string]any
	subs     []*subscriber
}

// subscriber guards its channel with a closed flag so a publish racing
// with cancellation never sends on a closed channel.
type subscriber struct {
	mu     sync.Mutex
	ch     chan []catalog.Change
	closed bool
}

func (sub *subscriber) send(batch []catalog.Change) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	// A subscriber that stopped draining must not stall publishers,
	// so the batch is dropped once the buffer is full.
	select {
	case sub.ch <- batch:
	default:
	}
}

func (sub *subscriber) close() {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.closed = true
	close(sub.ch)
}

// New creates an empty in-memory catalog.
func New() *Store {
	return &Store{products: make(map[string]map[string]any)}
}

// Put inserts or replaces a product and notifies subscribers.
func (s *Store) Put(id string, data map[string]any) {
	s.mu.Lock()
	_, existed := s.products[id]
	s.products[id] = data
	subs := append([]*subscriber(nil), s.subs...)
	s.mu.Unlock()

	kind := catalog.ChangeAdded
	if existed {
		kind = catalog.ChangeModified
	}
	notify(subs, []catalog.Change{{Kind: kind, ID: id, Data: data}})
}

// Remove deletes a product and notifies subscribers. Unknown IDs are
// ignored.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	_, existed := s.products[id]
	delete(s.products, id)
	subs := append([]*subscriber(nil), s.subs...)
	s.mu.Unlock()

	if !existed {
		return
	}
	notify(subs, []catalog.Change{{Kind: catalog.ChangeRemoved, ID: id}})
}

func notify(subs []*subscriber, batch []catalog.Change) {
	for _, sub := range subs {
		sub.send(batch)
	}
}

// FetchAll returns all products in stable ID order.
func (s *Store) FetchAll(context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	products := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		products = append(products, catalog.Product{ID: id, Data: s.products[id]})
	}
	return products, nil
}

// FetchByID returns one product or a not-found error.
func (s *Store) FetchByID(_ context.Context, id string) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}
	return &catalog.Product{ID: id, Data: data}, nil
}

// Subscribe registers a change channel closed when ctx is cancelled.
func (s *Store) Subscribe(ctx context.Context) (<-chan []catalog.Change, error) {
	sub := &subscriber{ch: make(chan []catalog.Change, 16)}

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		for i, registered := range s.subs {
			if registered == sub {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		sub.close()
	}()

	return sub.ch, nil
}
