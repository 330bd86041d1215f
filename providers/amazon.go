package providers

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"pricescout/config"
	"pricescout/models"
)

var amazonPlan = extractPlan{
	CardSelector: "div[data-component-type='s-search-result']",
	Fields: []fieldSpec{
		{Name: "title", Chain: []selectorRef{
			{Selector: "h2 span"},
			{Selector: "h2"},
		}},
		{Name: "link", Chain: []selectorRef{
			{Selector: "h2 a", Attr: "href"},
			{Selector: "a.a-link-normal.s-no-outline", Attr: "href"},
		}},
		{Name: "price", Chain: []selectorRef{
			{Selector: "span.a-price > span.a-offscreen"},
			{Selector: "span.a-price-whole"},
		}},
		{Name: "price_currency", Chain: []selectorRef{
			{Selector: "span.a-price-symbol"},
		}},
		{Name: "original_price", Chain: []selectorRef{
			{Selector: "span.a-text-price > span.a-offscreen"},
		}},
		{Name: "shipping", Chain: []selectorRef{
			{Selector: "[data-cy='delivery-recipe'] span"},
			{Selector: "div.a-row.a-size-base.a-color-secondary span"},
		}},
		{Name: "image", Chain: []selectorRef{
			{Selector: "img.s-image", Attr: "src"},
		}},
	},
}

// Amazon scrapes amazon.com search results with a headless browser.
type Amazon struct {
	opts config.BrowserOptions
}

func NewAmazon(opts config.BrowserOptions) *Amazon {
	return &Amazon{opts: opts}
}

func (p *Amazon) Name() string { return "amazon-browser" }

func (p *Amazon) Search(ctx context.Context, query string, take int) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" || !p.opts.Enabled {
		return nil, nil
	}
	take = ClampTake(take)

	searchURL := "https://www.amazon.com/s?k=" + url.QueryEscape(query)
	session, err := openSession(ctx, p.opts, searchURL)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	p.acceptCookies(session)

	if err := session.waitForCards(amazonPlan, p.opts.WaitForSelector); err != nil {
		return nil, err
	}
	session.scroll(p.opts.ScrollCount, p.opts.ScrollWait)

	raw, err := session.extract(amazonPlan, p.Name())
	if err != nil {
		return nil, err
	}
	log.Printf("[%s] extracted %d cards for %q", p.Name(), len(raw), query)

	return mapRawItems(raw, take, mapMeta{
		Source:          "amazon",
		SourceLabel:     "Amazon",
		ScrapeMethod:    "browser",
		SelectorVersion: "s-search-1",
		DefaultCurrency: "USD",
		LinkPrefix:      "https://www.amazon.com",
		Query:           query,
	}), nil
}

// acceptCookies dismisses the consent banner when it shows up. Best effort,
// the banner is region dependent.
func (p *Amazon) acceptCookies(s *browserSession) {
	el, err := s.page.Timeout(2 * time.Second).Element("#sp-cc-accept")
	if err != nil {
		return
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		log.Printf("[%s] cookie banner click failed: %v", p.Name(), err)
	}
}
