package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pricescout/config"
	"pricescout/models"
	"pricescout/repository"
	"pricescout/search"
)

type stubProvider struct {
	name  string
	items []models.Product
	err   error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(context.Context, string, int) ([]models.Product, error) {
	return s.items, s.err
}

func newTestHandlers(local, meli *stubProvider) *Handlers {
	aggregator := search.New(nil, config.CacheOptions{}, true, search.Providers{
		Local:        local,
		MercadoLibre: meli,
		ScrapingBee:  &stubProvider{name: "mercadolibre-scrapingbee"},
		ScrapeGraph:  &stubProvider{name: "mercadolibre-scrapegraph"},
		Amazon:       &stubProvider{name: "amazon-browser"},
		AliExpress:   &stubProvider{name: "aliexpress-browser"},
	})
	return NewHandlers(aggregator, repository.NewSearchLogRepository())
}

func doSearch(t *testing.T, h *Handlers, target string) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.SearchExternalProducts(rec, req)

	var envelope models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid response body %q: %v", rec.Body.String(), err)
	}
	return rec, envelope
}

func TestSearchSuccessEnvelope(t *testing.T) {
	meli := &stubProvider{name: "mercadolibre-browser", items: []models.Product{
		{Title: "tv 50", Link: "https://x.test/tv", Source: "mercadolibre"},
	}}
	h := newTestHandlers(&stubProvider{name: "local"}, meli)

	rec, envelope := doSearch(t, h, "/api/v1/external-products/search?query=tv&provider=mercadolibre")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !envelope.OK || envelope.Error != nil {
		t.Errorf("envelope = %+v, want ok without error", envelope)
	}
	if envelope.Data == nil {
		t.Error("data missing from success envelope")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestSearchUnknownProvider(t *testing.T) {
	h := newTestHandlers(&stubProvider{name: "local"}, &stubProvider{name: "mercadolibre-browser"})

	rec, envelope := doSearch(t, h, "/api/v1/external-products/search?query=tv&provider=foo")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if envelope.OK || envelope.Error == nil || envelope.Error.Code != "provider_not_supported" {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestSearchQueryRequired(t *testing.T) {
	h := newTestHandlers(&stubProvider{name: "local"}, &stubProvider{name: "mercadolibre-browser"})

	rec, envelope := doSearch(t, h, "/api/v1/external-products/search?provider=mercadolibre")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if envelope.Error == nil || envelope.Error.Code != "query_required" {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestSearchAllProvidersFailed(t *testing.T) {
	meli := &stubProvider{name: "mercadolibre-browser", err: errors.New("blocked upstream")}
	h := newTestHandlers(&stubProvider{name: "local"}, meli)

	rec, envelope := doSearch(t, h, "/api/v1/external-products/search?query=tv&provider=mercadolibre")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if envelope.Error == nil || envelope.Error.Code != "external_provider_error" {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestSearchEmptyResultIsArray(t *testing.T) {
	h := newTestHandlers(&stubProvider{name: "local"}, &stubProvider{name: "mercadolibre-browser"})

	rec, _ := doSearch(t, h, "/api/v1/external-products/search?query=tv&provider=mercadolibre")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data []models.Product `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data == nil {
		t.Error("data should be an empty array, not null")
	}
}

func TestSearchInvalidTakeDefaults(t *testing.T) {
	h := newTestHandlers(&stubProvider{name: "local"}, &stubProvider{name: "mercadolibre-browser"})

	rec, envelope := doSearch(t, h, "/api/v1/external-products/search?query=tv&provider=mercadolibre&take=abc")
	if rec.Code != http.StatusOK || !envelope.OK {
		t.Errorf("status = %d envelope = %+v", rec.Code, envelope)
	}
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandlers(&stubProvider{name: "local"}, &stubProvider{name: "mercadolibre-browser"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %q", body["status"])
	}
}
