package providers

import (
	"context"
	"log"
	"strings"

	"pricescout/config"
	"pricescout/models"
)

// mercadoLibrePlan targets the "poly" card layout rolled out across the
// listado pages. Selector chains keep the older ui-search class names as
// fallbacks.
var mercadoLibrePlan = extractPlan{
	CardSelector: "li.ui-search-layout__item",
	Fields: []fieldSpec{
		{Name: "title", Chain: []selectorRef{
			{Selector: ".poly-component__title"},
			{Selector: "h2.ui-search-item__title"},
		}},
		{Name: "link", Chain: []selectorRef{
			{Selector: "a.poly-component__title", Attr: "href"},
			{Selector: "a.ui-search-link", Attr: "href"},
		}},
		{Name: "price", Chain: []selectorRef{
			{Selector: ".poly-price__current .andes-money-amount__fraction"},
			{Selector: ".andes-money-amount__fraction"},
		}},
		{Name: "price_currency", Chain: []selectorRef{
			{Selector: ".poly-price__current .andes-money-amount__currency-symbol"},
			{Selector: ".andes-money-amount__currency-symbol"},
		}},
		{Name: "original_price", Chain: []selectorRef{
			{Selector: ".andes-money-amount--previous .andes-money-amount__fraction"},
		}},
		{Name: "condition", Chain: []selectorRef{
			{Selector: ".poly-component__item-condition"},
			{Selector: ".ui-search-item__condition"},
		}},
		{Name: "location", Chain: []selectorRef{
			{Selector: ".poly-component__location"},
			{Selector: ".ui-search-item__location"},
		}},
		{Name: "shipping", Chain: []selectorRef{
			{Selector: ".poly-component__shipping"},
			{Selector: ".ui-search-item__shipping"},
		}},
		{Name: "image", Chain: []selectorRef{
			{Selector: "img.poly-component__picture", Attr: "data-src"},
			{Selector: "img.poly-component__picture", Attr: "src"},
			{Selector: "img", Attr: "data-src"},
			{Selector: "img", Attr: "src"},
		}},
	},
}

// MercadoLibre scrapes listado.mercadolibre.com.ar with a headless browser.
type MercadoLibre struct {
	opts config.BrowserOptions
}

func NewMercadoLibre(opts config.BrowserOptions) *MercadoLibre {
	return &MercadoLibre{opts: opts}
}

func (p *MercadoLibre) Name() string { return "mercadolibre-browser" }

func (p *MercadoLibre) Search(ctx context.Context, query string, take int) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" || !p.opts.Enabled {
		return nil, nil
	}
	take = ClampTake(take)

	url := "https://listado.mercadolibre.com.ar/" + mercadoLibreSlug(query)
	session, err := openSession(ctx, p.opts, url)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if err := session.waitForCards(mercadoLibrePlan, p.opts.WaitForSelector); err != nil {
		return nil, err
	}
	session.scroll(p.opts.ScrollCount, p.opts.ScrollWait)

	raw, err := session.extract(mercadoLibrePlan, p.Name())
	if err != nil {
		return nil, err
	}
	log.Printf("[%s] extracted %d cards for %q", p.Name(), len(raw), query)

	return mapRawItems(raw, take, mapMeta{
		Source:          "mercadolibre",
		SourceLabel:     "MercadoLibre",
		ScrapeMethod:    "browser",
		SelectorVersion: "poly-1",
		DefaultCurrency: "ARS",
		FreeShipWord:    "gratis",
		Query:           query,
	}), nil
}

// mercadoLibreSlug joins the query words with dashes the way the listado
// URLs expect.
func mercadoLibreSlug(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), "-")
}
