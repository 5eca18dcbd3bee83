package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/catalog"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/service"
	apperrors "github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/errors"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/httputil"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/validator"
)

// reindexTimeout bounds a background reindex kicked off over HTTP.
const reindexTimeout = 30 * time.Minute

// AdminHandler serves the index management endpoints. These use the
// shared response envelope since they are internal, not storefront
// facing.
type AdminHandler struct {
	sync   *service.SyncService
	logger *slog.Logger
}

// NewAdminHandler creates the index administration handler.
func NewAdminHandler(sync *service.SyncService, log *slog.Logger) *AdminHandler {
	return &AdminHandler{sync: sync, logger: log}
}

type indexProductRequest struct {
	ID   string         `json:"id" validate:"required"`
	Data map[string]any `json:"data" validate:"required"`
}

type bulkIndexRequest struct {
	Products []indexProductRequest `json:"products" validate:"required,min=1,max=1000,dive"`
}

// IndexProduct handles POST /api/v1/admin/products.
func (h *AdminHandler) IndexProduct(w http.ResponseWriter, r *http.Request) {
	var req indexProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("request body must be valid JSON"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.sync.IndexRecord(r.Context(), req.ID, req.Data); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: map[string]string{"id": req.ID, "status": "indexed"},
	})
}

// DeleteProduct handles DELETE /api/v1/admin/products/{id}.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("product id is required"), h.logger)
		return
	}

	if err := h.sync.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"id": id, "status": "deleted"},
	})
}

// BulkIndex handles POST /api/v1/admin/products/bulk.
func (h *AdminHandler) BulkIndex(w http.ResponseWriter, r *http.Request) {
	var req bulkIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("request body must be valid JSON"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	products := make([]catalog.Product, 0, len(req.Products))
	for _, p := range req.Products {
		products = append(products, catalog.Product{ID: p.ID, Data: p.Data})
	}

	result, err := h.sync.BulkIndex(r.Context(), products)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Reindex handles POST /api/v1/admin/reindex. The rebuild runs in the
// background; the request returns immediately with 202.
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), reindexTimeout)
		defer cancel()

		report, err := h.sync.Reindex(ctx)
		if err != nil {
			h.logger.Error("background reindex failed", slog.String("error", err.Error()))
			return
		}
		h.logger.Info("background reindex complete",
			slog.Int("total", report.TotalProducts),
			slog.Int("indexed", report.SuccessCount),
			slog.Int("failed", report.FailedCount),
		)
	}()

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{
		Data: map[string]string{"status": "reindex started"},
	})
}

// SyncAll handles POST /api/v1/admin/sync. Unlike Reindex it keeps the
// existing index and runs synchronously, returning the full report.
func (h *AdminHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.sync.SyncAll(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: report})
}
