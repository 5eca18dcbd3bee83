// Package event bridges product lifecycle events from Kafka into index
// sync operations, as an alternative ingest path to the catalog change
// feed for deployments that publish events instead.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/service"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/kafka"
)

// Product lifecycle event types.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ProductConsumer applies product events to the search index.
type ProductConsumer struct {
	sync      *service.SyncService
	consumers []*kafka.Consumer
	logger    *slog.Logger
}

// NewProductConsumer wires one Kafka consumer per product topic.
func NewProductConsumer(brokers []string, groupID string, sync *service.SyncService, logger *slog.Logger) *ProductConsumer {
	pc := &ProductConsumer{sync: sync, logger: logger}

	for _, action := range []string{"created", "updated", "deleted"} {
		cfg := kafka.ConsumerConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   kafka.Topic("product", action),
		}
		pc.consumers = append(pc.consumers, kafka.NewConsumer(cfg, pc.Handle, logger))
	}
	return pc
}

// Start runs all topic consumers until ctx is cancelled or one fails.
func (pc *ProductConsumer) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range pc.consumers {
		c := c
		g.Go(func() error { return c.Start(ctx) })
	}
	return g.Wait()
}

// Close stops all topic consumers.
func (pc *ProductConsumer) Close() error {
	var firstErr error
	for _, c := range pc.consumers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Handle applies a single product event. Created and updated events are
// both upserts so replays and reordering converge on the same document.
func (pc *ProductConsumer) Handle(ctx context.Context, event *kafka.Event) error {
	if event.AggregateID == "" {
		return fmt.Errorf("product event %s has no aggregate id", event.EventID)
	}

	switch event.EventType {
	case EventProductCreated, EventProductUpdated:
		var record map[string]any
		if err := event.UnmarshalData(&record); err != nil {
			return fmt.Errorf("decode product payload: %w", err)
		}
		return pc.sync.UpsertRecord(ctx, event.AggregateID, record)

	case EventProductDeleted:
		return pc.sync.DeleteProduct(ctx, event.AggregateID)

	default:
		pc.logger.Warn("ignoring unknown product event type",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}
