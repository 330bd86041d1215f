package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pricescout/config"
	"pricescout/models"
)

// extract rules sent to the extraction API: one list rule over the card
// selector, one output column per rawItem field.
var scrapingBeeRules = map[string]interface{}{
	"items": map[string]interface{}{
		"selector": "li.ui-search-layout__item",
		"type":     "list",
		"output": map[string]interface{}{
			"title":          map[string]string{"selector": ".poly-component__title", "output": "text"},
			"link":           map[string]string{"selector": "a.poly-component__title", "output": "@href"},
			"price":          map[string]string{"selector": ".andes-money-amount__fraction", "output": "text"},
			"price_currency": map[string]string{"selector": ".andes-money-amount__currency-symbol", "output": "text"},
			"original_price": map[string]string{"selector": ".andes-money-amount--previous .andes-money-amount__fraction", "output": "text"},
			"condition":      map[string]string{"selector": ".ui-search-item__condition", "output": "text"},
			"location":       map[string]string{"selector": ".ui-search-item__location", "output": "text"},
			"shipping":       map[string]string{"selector": ".poly-component__shipping", "output": "text"},
			"image":          map[string]string{"selector": "img", "output": "@src"},
		},
	},
}

// ScrapingBee searches MercadoLibre through the hosted ScrapingBee
// extraction API instead of a local browser.
type ScrapingBee struct {
	opts   config.ScrapingBeeOptions
	client *http.Client
}

func NewScrapingBee(opts config.ScrapingBeeOptions) *ScrapingBee {
	return &ScrapingBee{
		opts:   opts,
		client: &http.Client{Timeout: opts.HTTPTimeout},
	}
}

func (p *ScrapingBee) Name() string { return "mercadolibre-scrapingbee" }

func (p *ScrapingBee) Search(ctx context.Context, query string, take int) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if p.opts.APIKey == "" {
		log.Printf("[%s] missing API key, skipping", p.Name())
		return nil, nil
	}
	take = ClampTake(take)

	targetURL := "https://listado.mercadolibre.com.ar/" + mercadoLibreSlug(query)
	rulesJSON, err := json.Marshal(scrapingBeeRules)
	if err != nil {
		return nil, err
	}

	raw, err := p.fetch(ctx, targetURL, string(rulesJSON), p.opts.RenderJS)
	if err != nil {
		return nil, err
	}
	// Zero items without JS rendering usually means the page needed it.
	if len(raw) == 0 && p.opts.JSFallback && !p.opts.RenderJS {
		log.Printf("[%s] no items without JS rendering, retrying with render_js=true", p.Name())
		if raw, err = p.fetch(ctx, targetURL, string(rulesJSON), true); err != nil {
			return nil, err
		}
	}

	return mapRawItems(raw, take, mapMeta{
		Source:          "mercadolibre",
		SourceLabel:     "MercadoLibre (ScrapingBee)",
		ScrapeMethod:    "scrapingbee",
		SelectorVersion: "ml-list-1",
		DefaultCurrency: "ARS",
		FreeShipWord:    "gratis",
		Query:           query,
	}), nil
}

func (p *ScrapingBee) fetch(ctx context.Context, targetURL, rulesJSON string, renderJS bool) ([]rawItem, error) {
	params := url.Values{}
	params.Set("api_key", p.opts.APIKey)
	params.Set("url", targetURL)
	params.Set("render_js", strconv.FormatBool(renderJS))
	params.Set("extract_rules", rulesJSON)
	if p.opts.Wait > 0 {
		params.Set("wait", strconv.FormatInt(p.opts.Wait.Milliseconds(), 10))
	}
	if p.opts.PremiumProxy {
		params.Set("premium_proxy", "true")
	}
	if p.opts.CountryCode != "" {
		params.Set("country_code", p.opts.CountryCode)
	}

	requestURL := strings.TrimRight(p.opts.BaseURL, "/") + "/api/v1?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrapingbee status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var extracted struct {
		Items []rawItem `json:"items"`
	}
	if err := json.Unmarshal(body, &extracted); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}
	return extracted.Items, nil
}
