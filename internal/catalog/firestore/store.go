// Package firestore implements the catalog store against Cloud Firestore.
package firestore

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/catalog"
	apperrors "github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/errors"
)

// Store reads products from a Firestore collection.
type Store struct {
	client     *firestore.Client
	collection string
	logger     *slog.Logger
}

// New connects to Firestore for the given project.
func New(ctx context.Context, projectID, collection string, logger *slog.Logger) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Store{
		client:     client,
		collection: collection,
		logger:     logger,
	}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// FetchAll reads every product document in the collection.
func (s *Store) FetchAll(ctx context.Context) ([]catalog.Product, error) {
	iter := s.client.Collection(s.collection).Documents(ctx)
	defer iter.Stop()

	var products []catalog.Product
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate %s: %w", s.collection, err)
		}
		products = append(products, catalog.Product{
			ID:   snap.Ref.ID,
			Data: snap.Data(),
		})
	}
	return products, nil
}

// FetchByID reads a single product document.
func (s *Store) FetchByID(ctx context.Context, id string) (*catalog.Product, error) {
	snap, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &catalog.Product{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

// Subscribe watches the collection and streams change batches. The first
// batch replays the current collection contents as added changes.
func (s *Store) Subscribe(ctx context.Context) (<-chan []catalog.Change, error) {
	snapshots := s.client.Collection(s.collection).Snapshots(ctx)
	out := make(chan []catalog.Change)

	go func() {
		defer close(out)
		defer snapshots.Stop()

		for {
			snap, err := snapshots.Next()
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error("catalog snapshot stream ended", slog.String("error", err.Error()))
				}
				return
			}

			batch := make([]catalog.Change, 0, len(snap.Changes))
			for _, dc := range snap.Changes {
				change := catalog.Change{ID: dc.Doc.Ref.ID}
				switch dc.Kind {
				case firestore.DocumentAdded:
					change.Kind = catalog.ChangeAdded
					change.Data = dc.Doc.Data()
				case firestore.DocumentModified:
					change.Kind = catalog.ChangeModified
					change.Data = dc.Doc.Data()
				case firestore.DocumentRemoved:
					change.Kind = catalog.ChangeRemoved
				}
				batch = append(batch, change)
			}
			if len(batch) == 0 {
				continue
			}

			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
