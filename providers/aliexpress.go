package providers

import (
	"context"
	"log"
	"net/url"
	"regexp"
	"strings"

	"pricescout/config"
	"pricescout/models"
)

// itemLinkRegex keeps only real product links; gallery cards also carry ad
// and store links.
var itemLinkRegex = regexp.MustCompile(`(?i)/item/\d+`)

// aliExpressPlan works against the obfuscated class names of the current
// gallery layout, with generic fallbacks since those names rotate.
var aliExpressPlan = extractPlan{
	CardSelector: ".search-item-card-wrapper-gallery",
	Fields: []fieldSpec{
		{Name: "title", Chain: []selectorRef{
			{Selector: ".k7_af"},
			{Selector: ".k7_kf"},
			{Selector: ".k7_af", Attr: "title"},
			{Selector: ".k7_af", Attr: "aria-label"},
			{Selector: "img.nj_bm", Attr: "alt"},
			{Selector: "img", Attr: "alt"},
		}},
		{Name: "link", Chain: []selectorRef{
			{Selector: "a.search-card-item", Attr: "href"},
			{Selector: "a[href*='/item/']", Attr: "href"},
			{Selector: "a", Attr: "href"},
		}},
		{Name: "price", Chain: []selectorRef{
			{Selector: ".k7_c6 .k7_lw"},
			{Selector: ".k7_c6"},
		}},
		{Name: "original_price", Chain: []selectorRef{
			{Selector: ".k7_lx"},
			{Selector: ".k7_lx span"},
		}},
		{Name: "shipping", Chain: []selectorRef{
			{Selector: ".k7_l7"},
			{Selector: "[class*='shipping']"},
			{Selector: "[class*='delivery']"},
			{Selector: "[class*='logistics']"},
		}},
		{Name: "image", Chain: []selectorRef{
			{Selector: "img.nj_bm", Attr: "src"},
			{Selector: "img", Attr: "src"},
			{Selector: "img", Attr: "data-src"},
			{Selector: "img", Attr: "data-lazy-src"},
		}},
	},
}

// AliExpress scrapes the aliexpress.com wholesale gallery with a headless
// browser. Price strings carry their own currency marker ("US $1.23"), so
// the currency is inferred from the amount text.
type AliExpress struct {
	opts config.BrowserOptions
}

func NewAliExpress(opts config.BrowserOptions) *AliExpress {
	return &AliExpress{opts: opts}
}

func (p *AliExpress) Name() string { return "aliexpress-browser" }

func (p *AliExpress) Search(ctx context.Context, query string, take int) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" || !p.opts.Enabled {
		return nil, nil
	}
	take = ClampTake(take)

	searchURL := "https://www.aliexpress.com/wholesale?SearchText=" + url.QueryEscape(query)
	session, err := openSession(ctx, p.opts, searchURL)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if err := session.waitForCards(aliExpressPlan, p.opts.WaitForSelector); err != nil {
		return nil, err
	}
	session.scroll(p.opts.ScrollCount, p.opts.ScrollWait)

	raw, err := session.extract(aliExpressPlan, p.Name())
	if err != nil {
		return nil, err
	}
	log.Printf("[%s] extracted %d cards for %q", p.Name(), len(raw), query)

	filtered := raw[:0]
	for _, it := range raw {
		if itemLinkRegex.MatchString(it.Link) {
			filtered = append(filtered, it)
		}
	}

	return mapRawItems(filtered, take, mapMeta{
		Source:          "aliexpress",
		SourceLabel:     "AliExpress",
		ScrapeMethod:    "browser",
		SelectorVersion: "ae-search-1",
		DefaultCurrency: "USD",
		LinkPrefix:      "https://www.aliexpress.com",
		Query:           query,
	}), nil
}
