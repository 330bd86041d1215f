package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pricescout/models"
	"pricescout/repository"
	"pricescout/search"
)

type Handlers struct {
	aggregator *search.Aggregator
	searchLogs *repository.SearchLogRepository
}

func NewHandlers(aggregator *search.Aggregator, searchLogs *repository.SearchLogRepository) *Handlers {
	return &Handlers{
		aggregator: aggregator,
		searchLogs: searchLogs,
	}
}

// SearchExternalProducts handles GET /api/v1/external-products/search
func (h *Handlers) SearchExternalProducts(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := params.Get("query")
	selector := params.Get("provider")
	take := 20
	if raw := params.Get("take"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			take = parsed
		}
	}

	start := time.Now()
	products, cacheHit, err := h.aggregator.Search(r.Context(), query, selector, take)
	if err != nil {
		status, code := classifyError(err)
		writeJSON(w, status, models.ErrorResponse(code, err.Error()))
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	h.recordSearch(selector, query, take, len(products), cacheHit, time.Since(start))
	writeJSON(w, http.StatusOK, models.OKResponse(products))
}

// RecentSearches handles GET /api/v1/external-products/searches
func (h *Handlers) RecentSearches(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	logs, err := h.searchLogs.RecentSearches(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse("internal_error", err.Error()))
		return
	}
	if logs == nil {
		logs = []models.SearchLog{}
	}
	writeJSON(w, http.StatusOK, models.OKResponse(logs))
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handlers) recordSearch(selector, query string, take, results int, cacheHit bool, duration time.Duration) {
	if h.searchLogs == nil {
		return
	}
	selector = strings.ToLower(strings.TrimSpace(selector))
	if selector == "" {
		selector = "all"
	}
	if err := h.searchLogs.Record(selector, strings.TrimSpace(query), take, results, cacheHit, duration); err != nil {
		log.Printf("handlers: %v", err)
	}
}

func classifyError(err error) (int, string) {
	var queryRequired *search.QueryRequiredError
	var allFailed *search.AllFailedError
	switch {
	case errors.Is(err, search.ErrProviderNotSupported):
		return http.StatusBadRequest, "provider_not_supported"
	case errors.As(err, &queryRequired):
		return http.StatusBadRequest, "query_required"
	case errors.As(err, &allFailed):
		return http.StatusBadGateway, "external_provider_error"
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("handlers: failed to encode response: %v", err)
	}
}
