package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/domain"
	apperrors "github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/errors"
)

// Config holds Elasticsearch connection settings. Two modes are supported:
// a local node (URL plus basic auth) and Elastic Cloud (cloud ID plus API
// key). A non-empty CloudID selects the cloud mode.
type Config struct {
	Addresses []string
	Username  string
	Password  string

	CloudID string
	APIKey  string

	// DiscoverNodes enables sniffing cluster topology on startup. Keep it
	// off for serverless and proxied deployments, where the node addresses
	// reported by the cluster are not directly reachable.
	DiscoverNodes bool

	IndexName string

	// BulkRefresh forces an index refresh after each bulk request, trading
	// write latency for read-after-write visibility in the sync path.
	BulkRefresh bool
}

// Engine is an Elasticsearch-backed implementation of the SearchEngine interface.
type Engine struct {
	client      *elasticsearch.Client
	indexName   string
	bulkRefresh bool
	logger      *slog.Logger
}

// esErrorResponse is used to decode Elasticsearch error responses.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// esBulkResponse is the structure used to decode Elasticsearch bulk responses.
type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

// New creates an Elasticsearch engine from the given configuration.
// It does not touch the index; call EnsureIndex before first use.
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	if cfg.IndexName == "" {
		cfg.IndexName = DefaultIndexName
	}

	esCfg := elasticsearch.Config{
		DiscoverNodesOnStart: cfg.DiscoverNodes,
	}

	switch {
	case cfg.CloudID != "":
		esCfg.CloudID = cfg.CloudID
		esCfg.APIKey = cfg.APIKey
	case cfg.APIKey != "":
		esCfg.Addresses = cfg.Addresses
		esCfg.APIKey = cfg.APIKey
	default:
		esCfg.Addresses = cfg.Addresses
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to create client: %w", err)
	}

	return &Engine{
		client:      client,
		indexName:   cfg.IndexName,
		bulkRefresh: cfg.BulkRefresh,
		logger:      logger,
	}, nil
}

// Ping checks whether the Elasticsearch cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// EnsureIndex checks whether the products index exists and creates it if not.
func (e *Engine) EnsureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists(
		[]string{e.indexName},
		e.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == 200 {
		e.logger.Info("elasticsearch index already exists", "index", e.indexName)
		return nil
	}

	mapping := buildIndexMapping()
	res, err = e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(mapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("create index: %s", decodeError(res.Body, res.Status()))
	}

	e.logger.Info("elasticsearch index created", "index", e.indexName)
	return nil
}

// DropIndex removes the entire index. A 404 is treated as success.
func (e *Engine) DropIndex(ctx context.Context) error {
	res, err := e.client.Indices.Delete(
		[]string{e.indexName},
		e.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch drop index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("elasticsearch drop index: %s", decodeError(res.Body, res.Status()))
	}

	e.logger.Info("elasticsearch index dropped", "index", e.indexName)
	return nil
}

// Index adds or fully replaces a single product document.
func (e *Engine) Index(ctx context.Context, doc *domain.SearchDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal document: %w", err)
	}

	res, err := e.client.Index(
		e.indexName,
		bytes.NewReader(data),
		e.client.Index.WithDocumentID(doc.ID),
		e.client.Index.WithRefresh("true"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch index: %s", decodeError(res.Body, res.Status()))
	}

	e.logger.Debug("indexed product", "id", doc.ID, "name", doc.Name)
	return nil
}

// Update applies the document as a partial update with upsert semantics, so
// an update for a not-yet-indexed product becomes an insert. This lets the
// change feed treat added and modified events uniformly.
func (e *Engine) Update(ctx context.Context, doc *domain.SearchDocument) error {
	body, err := json.Marshal(map[string]any{
		"doc":           doc,
		"doc_as_upsert": true,
	})
	if err != nil {
		return fmt.Errorf("elasticsearch update: marshal document: %w", err)
	}

	res, err := e.client.Update(
		e.indexName,
		doc.ID,
		bytes.NewReader(body),
		e.client.Update.WithRefresh("true"),
		e.client.Update.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch update: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch update: %s", decodeError(res.Body, res.Status()))
	}

	e.logger.Debug("upserted product", "id", doc.ID)
	return nil
}

// Delete removes a product document by ID. A 404 reports domain.NotFound
// without an error: under eventual consistency a delete-after-delete race is
// expected, not exceptional.
func (e *Engine) Delete(ctx context.Context, id string) (domain.DeleteOutcome, error) {
	res, err := e.client.Delete(
		e.indexName,
		id,
		e.client.Delete.WithRefresh("true"),
		e.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return domain.NotFound, fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == 404 {
		return domain.NotFound, nil
	}
	if res.IsError() {
		return domain.NotFound, fmt.Errorf("elasticsearch delete: %s", decodeError(res.Body, res.Status()))
	}

	e.logger.Debug("deleted product", "id", id)
	return domain.Deleted, nil
}

// Bulk indexes multiple documents using the bulk NDJSON API in a single
// round trip. Per-item failures are collected, not propagated: one rejected
// document must not block the rest of the batch.
func (e *Engine) Bulk(ctx context.Context, docs []domain.SearchDocument) (*domain.BulkResult, error) {
	if len(docs) == 0 {
		return &domain.BulkResult{}, nil
	}

	var buf bytes.Buffer
	for i := range docs {
		action := map[string]any{
			"index": map[string]any{
				"_index": e.indexName,
				"_id":    docs[i].ID,
			},
		}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return nil, fmt.Errorf("elasticsearch bulk: encode action: %w", err)
		}
		if err := json.NewEncoder(&buf).Encode(docs[i]); err != nil {
			return nil, fmt.Errorf("elasticsearch bulk: encode document: %w", err)
		}
	}

	refresh := "false"
	if e.bulkRefresh {
		refresh = "true"
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithIndex(e.indexName),
		e.client.Bulk.WithRefresh(refresh),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch bulk: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch bulk: %s", decodeError(res.Body, res.Status()))
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return nil, fmt.Errorf("elasticsearch bulk: decode response: %w", err)
	}

	result := &domain.BulkResult{}
	for _, item := range bulkResp.Items {
		if item.Index.Status >= 200 && item.Index.Status < 300 {
			result.SuccessCount++
			continue
		}
		result.FailedCount++
		result.Failures = append(result.Failures, domain.BulkFailure{
			ID:     item.Index.ID,
			Reason: fmt.Sprintf("%s: %s", item.Index.Error.Type, item.Index.Error.Reason),
		})
		e.logger.Warn("bulk item rejected",
			"id", item.Index.ID,
			"status", item.Index.Status,
			"error_type", item.Index.Error.Type,
			"reason", item.Index.Error.Reason,
		)
	}

	e.logger.Info("bulk indexed products",
		"count", len(docs),
		"succeeded", result.SuccessCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

// getDocument fetches a single document by ID. Returns apperrors.ErrNotFound
// when the document does not exist.
func (e *Engine) getDocument(ctx context.Context, id string) (*domain.SearchDocument, error) {
	res, err := e.client.Get(
		e.indexName,
		id,
		e.client.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch get: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == 404 {
		return nil, fmt.Errorf("elasticsearch get %s: %w", id, apperrors.ErrNotFound)
	}
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch get: %s", decodeError(res.Body, res.Status()))
	}

	var getResp struct {
		Source domain.SearchDocument `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&getResp); err != nil {
		return nil, fmt.Errorf("elasticsearch get: decode response: %w", err)
	}
	return &getResp.Source, nil
}

// decodeError extracts the error type and reason from an ES error body,
// falling back to the HTTP status line.
func decodeError(body io.Reader, status string) string {
	var errResp esErrorResponse
	if err := json.NewDecoder(body).Decode(&errResp); err == nil && errResp.Error.Type != "" {
		return fmt.Sprintf("%s: %s", errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Sprintf("unexpected status %s", status)
}
