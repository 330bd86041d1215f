package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pricescout/config"
)

func beeOptions(baseURL string) config.ScrapingBeeOptions {
	return config.ScrapingBeeOptions{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		RenderJS:    true,
		CountryCode: "AR",
		Wait:        2 * time.Second,
		HTTPTimeout: 5 * time.Second,
	}
}

func TestScrapingBeeMapsItems(t *testing.T) {
	var gotParams map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotParams = map[string]string{}
		for k := range r.URL.Query() {
			gotParams[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"title":"Zapatillas Running","link":"https://listado.test/item-1","price":"45.999","price_currency":"$","original_price":"59.999","shipping":"Envío gratis"},
			{"title":"","link":"https://listado.test/item-2"}
		]}`))
	}))
	defer server.Close()

	p := NewScrapingBee(beeOptions(server.URL))
	products, err := p.Search(context.Background(), "zapatillas", 20)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}

	got := products[0]
	if got.Title != "Zapatillas Running" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Offer.Price == nil || got.Offer.Price.Amount != 45999 || got.Offer.Price.Currency != "ARS" {
		t.Errorf("price = %+v", got.Offer.Price)
	}
	if got.Offer.DiscountPercent == nil || *got.Offer.DiscountPercent != 23 {
		t.Errorf("discount = %v, want 23", got.Offer.DiscountPercent)
	}
	if !got.Shipping.Free {
		t.Error("free shipping not inferred from 'gratis'")
	}
	if got.Source != "mercadolibre" || got.ScrapeMethod != "scrapingbee" {
		t.Errorf("provenance = %s/%s", got.Source, got.ScrapeMethod)
	}

	if gotParams["api_key"] != "test-key" {
		t.Errorf("api_key param = %q", gotParams["api_key"])
	}
	if gotParams["render_js"] != "true" {
		t.Errorf("render_js param = %q", gotParams["render_js"])
	}
	if gotParams["url"] != "https://listado.mercadolibre.com.ar/zapatillas" {
		t.Errorf("url param = %q", gotParams["url"])
	}
	if gotParams["wait"] != "2000" {
		t.Errorf("wait param = %q", gotParams["wait"])
	}
	if gotParams["country_code"] != "AR" {
		t.Errorf("country_code param = %q", gotParams["country_code"])
	}
}

func TestScrapingBeeJSFallbackRetry(t *testing.T) {
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		renderJS := r.URL.Query().Get("render_js")
		calls = append(calls, renderJS)
		w.Header().Set("Content-Type", "application/json")
		if renderJS == "true" {
			w.Write([]byte(`{"items":[{"title":"Solo con JS","link":"https://listado.test/item-js"}]}`))
			return
		}
		w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	opts := beeOptions(server.URL)
	opts.RenderJS = false
	opts.JSFallback = true

	p := NewScrapingBee(opts)
	products, err := p.Search(context.Background(), "algo", 20)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}
	if len(calls) != 2 || calls[0] != "false" || calls[1] != "true" {
		t.Errorf("render_js call sequence = %v, want [false true]", calls)
	}
}

func TestScrapingBeeMissingKeySkips(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request issued without API key")
	}))
	defer server.Close()

	opts := beeOptions(server.URL)
	opts.APIKey = ""

	p := NewScrapingBee(opts)
	products, err := p.Search(context.Background(), "algo", 20)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("got %d products, want 0", len(products))
	}
}

func TestScrapingBeeBlankQuerySkips(t *testing.T) {
	p := NewScrapingBee(beeOptions("http://unused.test"))
	products, err := p.Search(context.Background(), "   ", 20)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if products != nil {
		t.Errorf("got %v, want nil", products)
	}
}
