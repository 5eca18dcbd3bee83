package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/cache"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/catalog"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/domain"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/engine"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/logger"
)

// DefaultChunkSize is how many documents go into one bulk request
// during a full resync.
const DefaultChunkSize = 500

// SyncService keeps the search index consistent with the product
// catalog, both one document at a time and in full resyncs.
type SyncService struct {
	engine    engine.SyncEngine
	store     catalog.Store
	cache     *cache.Cache
	chunkSize int
	logger    *slog.Logger
}

// NewSyncService creates a sync service. store and cache may be nil
// when the deployment has no catalog connection or no Redis.
func NewSyncService(eng engine.SyncEngine, store catalog.Store, c *cache.Cache, chunkSize int, log *slog.Logger) *SyncService {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &SyncService{
		engine:    eng,
		store:     store,
		cache:     c,
		chunkSize: chunkSize,
		logger:    log,
	}
}

// IndexRecord transforms a raw catalog record and writes it to the
// index as a full document.
func (s *SyncService) IndexRecord(ctx context.Context, id string, record map[string]any) error {
	doc := domain.TransformProduct(id, record)
	if err := s.engine.Index(ctx, &doc); err != nil {
		syncOperations.WithLabelValues("index", "error").Inc()
		return fmt.Errorf("index product %s: %w", id, err)
	}
	syncOperations.WithLabelValues("index", "success").Inc()
	return nil
}

// UpsertRecord transforms a raw catalog record and applies it as an
// upsert, so out-of-order create and update events converge.
func (s *SyncService) UpsertRecord(ctx context.Context, id string, record map[string]any) error {
	doc := domain.TransformProduct(id, record)
	if err := s.engine.Update(ctx, &doc); err != nil {
		syncOperations.WithLabelValues("update", "error").Inc()
		return fmt.Errorf("upsert product %s: %w", id, err)
	}
	syncOperations.WithLabelValues("update", "success").Inc()
	return nil
}

// DeleteProduct removes a document from the index. Deleting an absent
// document succeeds; the outcome is logged for observability.
func (s *SyncService) DeleteProduct(ctx context.Context, id string) error {
	outcome, err := s.engine.Delete(ctx, id)
	if err != nil {
		syncOperations.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	syncOperations.WithLabelValues("delete", "success").Inc()
	if outcome == domain.NotFound {
		logger.WithContext(ctx, s.logger).Info("delete for absent document",
			slog.String("id", id),
		)
	}
	return nil
}

// BulkIndex transforms and indexes a batch of catalog products in one
// request. Individual rejections do not abort the batch.
func (s *SyncService) BulkIndex(ctx context.Context, products []catalog.Product) (*domain.BulkResult, error) {
	docs := make([]domain.SearchDocument, 0, len(products))
	for _, p := range products {
		docs = append(docs, domain.TransformProduct(p.ID, p.Data))
	}

	result, err := s.engine.Bulk(ctx, docs)
	if err != nil {
		syncOperations.WithLabelValues("bulk", "error").Inc()
		return nil, fmt.Errorf("bulk index: %w", err)
	}
	syncOperations.WithLabelValues("bulk", "success").Inc()
	syncedDocuments.WithLabelValues("success").Add(float64(result.SuccessCount))
	syncedDocuments.WithLabelValues("failed").Add(float64(result.FailedCount))
	return result, nil
}

// SyncAll reindexes the entire catalog in sequential chunks and reports
// accumulated counts. Chunks stay sequential to keep pressure on the
// search backend bounded.
func (s *SyncService) SyncAll(ctx context.Context) (*domain.SyncReport, error) {
	if s.store == nil {
		return nil, fmt.Errorf("sync all: no catalog store configured")
	}

	start := time.Now()
	log := logger.WithContext(ctx, s.logger)

	products, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	report := &domain.SyncReport{TotalProducts: len(products)}
	for offset := 0; offset < len(products); offset += s.chunkSize {
		end := offset + s.chunkSize
		if end > len(products) {
			end = len(products)
		}

		result, err := s.BulkIndex(ctx, products[offset:end])
		if err != nil {
			return nil, fmt.Errorf("sync chunk at %d: %w", offset, err)
		}
		report.SuccessCount += result.SuccessCount
		report.FailedCount += result.FailedCount

		log.Info("sync chunk complete",
			slog.Int("offset", offset),
			slog.Int("indexed", result.SuccessCount),
			slog.Int("failed", result.FailedCount),
		)
	}

	report.Success = report.FailedCount == 0
	resyncDuration.Observe(time.Since(start).Seconds())
	s.cache.Invalidate(ctx, "suggest:")
	s.cache.Invalidate(ctx, "popular:")

	log.Info("catalog sync complete",
		slog.Int("total", report.TotalProducts),
		slog.Int("indexed", report.SuccessCount),
		slog.Int("failed", report.FailedCount),
		slog.Duration("took", time.Since(start)),
	)
	return report, nil
}

// Reindex drops the index, recreates it with the current mapping, and
// replays the catalog into it.
func (s *SyncService) Reindex(ctx context.Context) (*domain.SyncReport, error) {
	if err := s.engine.DropIndex(ctx); err != nil {
		return nil, fmt.Errorf("drop index: %w", err)
	}
	if err := s.engine.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("recreate index: %w", err)
	}
	return s.SyncAll(ctx)
}

// RunSubscription consumes catalog change batches until the channel
// closes. A failed change is logged and skipped so one bad document
// cannot stall the stream.
func (s *SyncService) RunSubscription(ctx context.Context, changes <-chan []catalog.Change) {
	for batch := range changes {
		for _, change := range batch {
			var err error
			switch change.Kind {
			case catalog.ChangeAdded, catalog.ChangeModified:
				err = s.UpsertRecord(ctx, change.ID, change.Data)
			case catalog.ChangeRemoved:
				err = s.DeleteProduct(ctx, change.ID)
			}
			if err != nil {
				s.logger.Error("catalog change not applied",
					slog.String("kind", change.Kind.String()),
					slog.String("id", change.ID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
