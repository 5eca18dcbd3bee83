// Package http exposes the search service over REST.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/domain"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/service"
	apperrors "github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/errors"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/httputil"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/logger"
)

// SearchHandler serves the public search endpoints. Result envelopes
// are written directly, not wrapped in the shared response type, so the
// payload shape stays stable for storefront clients.
type SearchHandler struct {
	search *service.SearchService
	logger *slog.Logger
}

// NewSearchHandler creates the public search handler.
func NewSearchHandler(search *service.SearchService, log *slog.Logger) *SearchHandler {
	return &SearchHandler{search: search, logger: log}
}

// Search handles GET /api/v1/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, err := parseSearchQuery(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result := h.search.Search(r.Context(), query)
	writeResult(w, r, resultStatus(result.Success), result, h.logger)
}

// Suggest handles GET /api/v1/search/suggest.
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", 10)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result := h.search.Suggest(r.Context(), r.URL.Query().Get("q"), limit)
	writeResult(w, r, resultStatus(result.Success), result, h.logger)
}

// Similar handles GET /api/v1/search/similar/{id}.
func (h *SearchHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit, err := parseIntParam(r, "limit", 10)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.search.Similar(r.Context(), id, limit)
	if err != nil {
		writeResult(w, r, apperrors.HTTPStatus(err), &domain.SimilarResult{
			Success:  false,
			Products: []domain.Hit{},
			Error:    err.Error(),
		}, h.logger)
		return
	}
	writeResult(w, r, resultStatus(result.Success), result, h.logger)
}

// Popular handles GET /api/v1/search/popular.
func (h *SearchHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", 10)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result := h.search.Popular(r.Context(), limit)
	writeResult(w, r, resultStatus(result.Success), result, h.logger)
}

func parseSearchQuery(r *http.Request) (*domain.SearchQuery, error) {
	params := r.URL.Query()
	query := &domain.SearchQuery{
		Query:      params.Get("q"),
		Categories: splitParam(params.Get("category")),
		Brands:     splitParam(params.Get("brand")),
		InStock:    params.Get("inStock") == "true",
		// Facets are on unless the client opts out.
		Aggregations: params.Get("facets") != "false",
		SortBy:       params.Get("sortBy"),
		SortOrder:    params.Get("sortOrder"),
	}

	if query.SortBy != "" && !domain.IsValidSort(query.SortBy) {
		return nil, apperrors.InvalidInput("sortBy must be one of: " + strings.Join(domain.ValidSortOptions(), ", "))
	}
	if query.SortOrder != "" && query.SortOrder != domain.OrderAsc && query.SortOrder != domain.OrderDesc {
		return nil, apperrors.InvalidInput("sortOrder must be asc or desc")
	}

	var err error
	if query.From, err = parseIntParam(r, "from", 0); err != nil {
		return nil, err
	}
	if query.Size, err = parseIntParam(r, "size", domain.DefaultPageSize); err != nil {
		return nil, err
	}
	if query.MinPrice, err = parseFloatParam(params.Get("minPrice"), "minPrice"); err != nil {
		return nil, err
	}
	if query.MaxPrice, err = parseFloatParam(params.Get("maxPrice"), "maxPrice"); err != nil {
		return nil, err
	}
	return query, nil
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIntParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput(name + " must be an integer")
	}
	return v, nil
}

func parseFloatParam(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.InvalidInput(name + " must be a number")
	}
	return &v, nil
}

// resultStatus maps a degraded result to 503 so load balancers and
// clients can tell a failing backend from an empty result set.
func resultStatus(success bool) int {
	if success {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func writeResult(w http.ResponseWriter, r *http.Request, status int, v any, fallback *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithContext(r.Context(), fallback).Error("write response failed",
			slog.String("error", err.Error()),
		)
	}
}
